package template

import (
	"testing"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func TestApplyTemplateSubstitutesArgv(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	ns, _ := rt.FindNS("clojure.template")
	v, ok := ns.Own("apply-template")
	if !ok {
		t.Fatal("apply-template not found")
	}
	fn := v.MustDeref().(value.Fn)

	argv := value.NewVector([]value.Value{value.Symbol{Name: "x"}, value.Symbol{Name: "y"}})
	expr := value.NewListFrom([]value.Value{value.Symbol{Name: "="}, value.Symbol{Name: "x"}, value.Symbol{Name: "y"}})
	values := value.NewVector([]value.Value{value.Int(1), value.Int(1)})

	got, err := fn.Call([]value.Value{argv, expr, values})
	if err != nil {
		t.Fatalf("apply-template: %v", err)
	}
	list, ok := got.(*value.List)
	if !ok {
		t.Fatalf("got %#v, want *value.List", got)
	}
	seq := list.Seq()
	if seq.First() != (value.Symbol{Name: "="}) {
		t.Errorf("first elem = %v, want =", seq.First())
	}
	second := seq.Rest().First()
	third := seq.Rest().Rest().First()
	if second != value.Int(1) || third != value.Int(1) {
		t.Errorf("substituted expr = %s, want (= 1 1)", value.PrStr(got))
	}
}

func TestApplyTemplateLeavesUnmatchedSymbolsAlone(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	ns, _ := rt.FindNS("clojure.template")
	v, _ := ns.Own("apply-template")
	fn := v.MustDeref().(value.Fn)

	argv := value.NewVector([]value.Value{value.Symbol{Name: "x"}})
	expr := value.NewListFrom([]value.Value{value.Symbol{Name: "foo"}, value.Symbol{Name: "x"}})
	values := value.NewVector([]value.Value{value.Int(42)})

	got, err := fn.Call([]value.Value{argv, expr, values})
	if err != nil {
		t.Fatalf("apply-template: %v", err)
	}
	seq := got.(*value.List).Seq()
	if seq.First() != (value.Symbol{Name: "foo"}) {
		t.Errorf("unmatched symbol was substituted: got %s", value.PrStr(got))
	}
	if seq.Rest().First() != value.Int(42) {
		t.Errorf("matched symbol was not substituted: got %s", value.PrStr(got))
	}
}
