package set

import (
	"testing"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func call(t *testing.T, rt *runtime.Env, name string, args ...value.Value) value.Value {
	t.Helper()
	ns, ok := rt.FindNS("clojure.set")
	if !ok {
		t.Fatal("clojure.set namespace not installed")
	}
	v, ok := ns.Own(name)
	if !ok {
		t.Fatalf("clojure.set/%s not found", name)
	}
	fn, ok := v.MustDeref().(value.Fn)
	if !ok {
		t.Fatalf("clojure.set/%s is not callable", name)
	}
	out, err := fn.Call(args)
	if err != nil {
		t.Fatalf("clojure.set/%s%v: %v", name, args, err)
	}
	return out
}

func setup(t *testing.T) *runtime.Env {
	t.Helper()
	rt := runtime.NewEnv()
	Install(rt)
	return rt
}

func TestUnion(t *testing.T) {
	rt := setup(t)
	a := value.NewSet([]value.Value{value.Int(1), value.Int(2)})
	b := value.NewSet([]value.Value{value.Int(2), value.Int(3)})
	got := call(t, rt, "union", a, b).(*value.HashSet)
	if got.Count() != 3 {
		t.Errorf("union count = %d, want 3", got.Count())
	}
	for _, want := range []value.Value{value.Int(1), value.Int(2), value.Int(3)} {
		if !got.Contains(want) {
			t.Errorf("union missing %v", want)
		}
	}
}

func TestIntersection(t *testing.T) {
	rt := setup(t)
	a := value.NewSet([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	b := value.NewSet([]value.Value{value.Int(2), value.Int(3), value.Int(4)})
	got := call(t, rt, "intersection", a, b).(*value.HashSet)
	if got.Count() != 2 || !got.Contains(value.Int(2)) || !got.Contains(value.Int(3)) {
		t.Errorf("intersection = %v, want {2 3}", got.Elements())
	}
}

func TestDifference(t *testing.T) {
	rt := setup(t)
	a := value.NewSet([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	b := value.NewSet([]value.Value{value.Int(2)})
	got := call(t, rt, "difference", a, b).(*value.HashSet)
	if got.Count() != 2 || !got.Contains(value.Int(1)) || !got.Contains(value.Int(3)) {
		t.Errorf("difference = %v, want {1 3}", got.Elements())
	}
}

func TestSubsetSuperset(t *testing.T) {
	rt := setup(t)
	small := value.NewSet([]value.Value{value.Int(1)})
	big := value.NewSet([]value.Value{value.Int(1), value.Int(2)})
	if got := call(t, rt, "subset?", small, big); got != value.Bool(true) {
		t.Errorf("subset? = %v, want true", got)
	}
	if got := call(t, rt, "superset?", big, small); got != value.Bool(true) {
		t.Errorf("superset? = %v, want true", got)
	}
	if got := call(t, rt, "subset?", big, small); got != value.Bool(false) {
		t.Errorf("subset? = %v, want false", got)
	}
}

func TestMapInvert(t *testing.T) {
	rt := setup(t)
	m := value.Map(value.EmptyArrayMap()).Assoc(value.Keyword{Name: "a"}, value.Int(1))
	got := call(t, rt, "map-invert", m).(value.Map)
	v, ok := got.Get(value.Int(1))
	if !ok || v != (value.Keyword{Name: "a"}) {
		t.Errorf("map-invert result missing 1 -> :a, got %v", got)
	}
}

func TestRenameKeys(t *testing.T) {
	rt := setup(t)
	m := value.Map(value.EmptyArrayMap()).Assoc(value.Keyword{Name: "a"}, value.Int(1))
	kmap := value.Map(value.EmptyArrayMap()).Assoc(value.Keyword{Name: "a"}, value.Keyword{Name: "b"})
	got := call(t, rt, "rename-keys", m, kmap).(value.Map)
	v, ok := got.Get(value.Keyword{Name: "b"})
	if !ok || v != value.Int(1) {
		t.Errorf("rename-keys result missing :b -> 1, got %v", got)
	}
}
