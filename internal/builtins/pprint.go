package builtins

import (
	"strings"

	"github.com/clojurewasm/corelisp/internal/pprint"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

var codeDispatchMarker = value.Keyword{Name: "code-dispatch"}

func derefIntVar(core *runtime.Namespace, name string, def int) int {
	v, ok := core.Resolve(name)
	if !ok {
		return def
	}
	cur, err := v.Deref()
	if err != nil {
		return def
	}
	i, ok := cur.(value.Int)
	if !ok {
		return def
	}
	return int(i)
}

func installPPrint(core *runtime.Namespace) {
	outVar := core.Intern("*out*")
	dispatchVar := core.Intern("*print-pprint-dispatch*")

	render := func(v value.Value) string {
		var doc pprint.Doc
		cur, _ := dispatchVar.Deref()
		if kw, ok := cur.(value.Keyword); ok && kw == codeDispatchMarker {
			doc = pprint.CodeDispatch(v)
		} else {
			doc = pprint.SimpleDispatch(v)
		}
		margin := derefIntVar(core, "*print-right-margin*", 72)
		miser := derefIntVar(core, "*print-miser-width*", 40)
		var b strings.Builder
		w := pprint.NewWriter(&b, margin, miser)
		w.Render(doc)
		return b.String()
	}

	install(core, []entry{
		{"pprint", fixedRange(1, 2), func(a []value.Value) (value.Value, error) {
			out := value.Value(outVar)
			if len(a) == 2 {
				out = a[1]
			}
			target := out
			if v, ok := out.(*value.Var); ok {
				cur, err := v.Deref()
				if err != nil {
					return nil, err
				}
				target = cur
			}
			return value.NilValue, writeTo(target, render(a[0])+"\n")
		}},
		// with-pprint-dispatch* backs the with-pprint-dispatch macro
		// (internal/macro/extra.go), which wraps its body in a zero-arg
		// fn* the same way lazy-seq/time do, so the binding is scoped to
		// the call rather than leaking past it.
		{"with-pprint-dispatch*", fixed(2), func(a []value.Value) (value.Value, error) {
			thunk, ok := a[1].(value.Fn)
			if !ok {
				return nil, wrongType("with-pprint-dispatch*", a[1])
			}
			dispatchVar.PushBinding(a[0])
			defer dispatchVar.PopBinding()
			return thunk.Call(nil)
		}},
	})

	core.Intern("simple-dispatch").BindRoot(value.NilValue)
	core.Intern("code-dispatch").BindRoot(codeDispatchMarker)
}
