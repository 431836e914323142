package yamldata

import (
	"testing"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func callFn(t *testing.T, rt *runtime.Env, name string, args ...value.Value) value.Value {
	t.Helper()
	ns, ok := rt.FindNS("clojure.data.yaml")
	if !ok {
		t.Fatal("clojure.data.yaml not installed")
	}
	v, ok := ns.Own(name)
	if !ok {
		t.Fatalf("clojure.data.yaml/%s not found", name)
	}
	fn := v.MustDeref().(value.Fn)
	out, err := fn.Call(args)
	if err != nil {
		t.Fatalf("clojure.data.yaml/%s: %v", name, err)
	}
	return out
}

func TestParseStringDecodesMapping(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	got := callFn(t, rt, "parse-string", value.String("a: 1\nb: two\n")).(value.Map)

	a, ok := got.Get(value.Keyword{Name: "a"})
	if !ok || a != value.Int(1) {
		t.Errorf("a = %#v, want 1", a)
	}
	b, ok := got.Get(value.Keyword{Name: "b"})
	if !ok || b != value.String("two") {
		t.Errorf("b = %#v, want \"two\"", b)
	}
}

func TestParseStringDecodesSequence(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	got := callFn(t, rt, "parse-string", value.String("- 1\n- 2\n- 3\n")).(*value.Vector)
	if got.Count() != 3 {
		t.Errorf("count = %d, want 3", got.Count())
	}
}

func TestGenerateStringRoundTrips(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	m := value.Map(value.EmptyArrayMap()).Assoc(value.Keyword{Name: "a"}, value.Int(1))
	generated := callFn(t, rt, "generate-string", m).(value.String)

	back := callFn(t, rt, "parse-string", generated).(value.Map)
	v, ok := back.Get(value.Keyword{Name: "a"})
	if !ok || v != value.Int(1) {
		t.Errorf("round-tripped :a = %#v, want 1", v)
	}
}
