package json

import (
	"testing"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func callFn(t *testing.T, rt *runtime.Env, name string, args ...value.Value) value.Value {
	t.Helper()
	ns, ok := rt.FindNS("clojure.data.json")
	if !ok {
		t.Fatal("clojure.data.json not installed")
	}
	v, ok := ns.Own(name)
	if !ok {
		t.Fatalf("clojure.data.json/%s not found", name)
	}
	fn := v.MustDeref().(value.Fn)
	out, err := fn.Call(args)
	if err != nil {
		t.Fatalf("clojure.data.json/%s: %v", name, err)
	}
	return out
}

func TestWriteStrReadStrRoundTrip(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)

	m := value.Map(value.EmptyArrayMap()).Assoc(value.Keyword{Name: "a"}, value.Int(1))
	written := callFn(t, rt, "write-str", m)
	s, ok := written.(value.String)
	if !ok {
		t.Fatalf("write-str returned %#v, want value.String", written)
	}

	got := callFn(t, rt, "read-str", s).(value.Map)
	v, ok := got.Get(value.Keyword{Name: "a"})
	if !ok {
		t.Fatalf("read-str result missing :a key, got %s", value.PrStr(got))
	}
	if f, ok := v.(value.Float); !ok || float64(f) != 1 {
		t.Errorf("read-str[:a] = %#v, want 1", v)
	}
}

func TestReadStrRejectsInvalidJSON(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	ns, _ := rt.FindNS("clojure.data.json")
	v, _ := ns.Own("read-str")
	fn := v.MustDeref().(value.Fn)
	if _, err := fn.Call([]value.Value{value.String("not json")}); err == nil {
		t.Fatal("expected an error reading invalid JSON")
	}
}
