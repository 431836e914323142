package walk

import (
	"testing"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func call(t *testing.T, rt *runtime.Env, name string, args ...value.Value) value.Value {
	t.Helper()
	ns, ok := rt.FindNS("clojure.walk")
	if !ok {
		t.Fatal("clojure.walk namespace not installed")
	}
	v, ok := ns.Own(name)
	if !ok {
		t.Fatalf("clojure.walk/%s not found", name)
	}
	fn := v.MustDeref().(value.Fn)
	out, err := fn.Call(args)
	if err != nil {
		t.Fatalf("clojure.walk/%s%v: %v", name, args, err)
	}
	return out
}

func incFn() *value.Builtin {
	return &value.Builtin{Name: "inc", Ar: value.Arity{Fixed: []int{1}}, Fn: func(a []value.Value) (value.Value, error) {
		i, ok := a[0].(value.Int)
		if !ok {
			return a[0], nil
		}
		return i + 1, nil
	}}
}

func TestPostwalkIncrementsAllNumbers(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	in := value.NewVector([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	got := call(t, rt, "postwalk", incFn(), in).(*value.Vector)
	want := []value.Value{value.Int(2), value.Int(3), value.Int(4)}
	items := got.Items()
	if len(items) != len(want) {
		t.Fatalf("got %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d: got %v, want %v", i, items[i], want[i])
		}
	}
}

func TestPrewalkReplace(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	repl := value.Map(value.EmptyArrayMap()).Assoc(value.Int(1), value.Keyword{Name: "one"})
	in := value.NewListFrom([]value.Value{value.Int(1), value.Int(2)})
	got := call(t, rt, "prewalk-replace", repl, in).(*value.List)
	items := got.Seq()
	if items.First() != (value.Keyword{Name: "one"}) {
		t.Errorf("first item = %v, want :one", items.First())
	}
}

func TestKeywordizeKeys(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	m := value.Map(value.EmptyArrayMap()).Assoc(value.String("a"), value.Int(1))
	got := call(t, rt, "keywordize-keys", m).(value.Map)
	v, ok := got.Get(value.Keyword{Name: "a"})
	if !ok || v != value.Int(1) {
		t.Errorf("keywordize-keys result missing :a -> 1, got %v", got)
	}
}

func TestStringifyKeys(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	m := value.Map(value.EmptyArrayMap()).Assoc(value.Keyword{Name: "a"}, value.Int(1))
	got := call(t, rt, "stringify-keys", m).(value.Map)
	v, ok := got.Get(value.String("a"))
	if !ok || v != value.Int(1) {
		t.Errorf("stringify-keys result missing \"a\" -> 1, got %v", got)
	}
}
