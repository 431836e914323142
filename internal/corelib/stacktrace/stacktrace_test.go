package stacktrace

import (
	"io"
	"strings"
	"testing"

	"github.com/clojurewasm/corelisp/internal/builtins"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func setup(t *testing.T) (*runtime.Env, *strings.Builder) {
	t.Helper()
	rt := runtime.NewEnv()
	builtins.Install(rt)
	Install(rt)

	core, ok := rt.FindNS("clojure.core")
	if !ok {
		t.Fatal("clojure.core not found")
	}
	errVar, ok := core.Own("*err*")
	if !ok {
		t.Fatal("*err* not found")
	}
	var buf strings.Builder
	errVar.BindRoot(&value.HostObject{Tag: "writer", Obj: io.Writer(&buf)})
	return rt, &buf
}

func call(t *testing.T, rt *runtime.Env, name string, args ...value.Value) value.Value {
	t.Helper()
	ns, ok := rt.FindNS("clojure.stacktrace")
	if !ok {
		t.Fatal("clojure.stacktrace not installed")
	}
	v, ok := ns.Own(name)
	if !ok {
		t.Fatalf("clojure.stacktrace/%s not found", name)
	}
	fn := v.MustDeref().(value.Fn)
	out, err := fn.Call(args)
	if err != nil {
		t.Fatalf("clojure.stacktrace/%s: %v", name, err)
	}
	return out
}

func TestRootCauseWalksCauseChain(t *testing.T) {
	rt, _ := setup(t)
	root := builtins.NewExInfo(value.String("root cause"), value.NilValue, value.NilValue)
	wrapped := builtins.NewExInfo(value.String("outer"), value.NilValue, root)

	got := call(t, rt, "root-cause", wrapped)
	m, ok := got.(value.Map)
	if !ok {
		t.Fatalf("root-cause returned %#v, not a map", got)
	}
	msg, _ := m.Get(value.Keyword{Name: "message"})
	if msg != value.String("root cause") {
		t.Errorf("root-cause message = %v, want \"root cause\"", msg)
	}
}

func TestRootCauseWithoutCauseReturnsSelf(t *testing.T) {
	rt, _ := setup(t)
	ex := builtins.NewExInfo(value.String("solo"), value.NilValue, value.NilValue)
	got := call(t, rt, "root-cause", ex)
	if got != ex {
		t.Errorf("root-cause(no cause) = %v, want the same map back", got)
	}
}

func TestPrintCauseTraceWritesChain(t *testing.T) {
	rt, buf := setup(t)
	root := builtins.NewExInfo(value.String("boom"), value.NilValue, value.NilValue)
	wrapped := builtins.NewExInfo(value.String("wrapper"), value.NilValue, root)

	call(t, rt, "print-cause-trace", wrapped)
	out := buf.String()
	if !strings.Contains(out, "wrapper") || !strings.Contains(out, "boom") || !strings.Contains(out, "Caused by") {
		t.Errorf("print-cause-trace output = %q, missing expected chain text", out)
	}
}
