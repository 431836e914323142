// Package template implements the runtime-callable half of clojure.template:
// apply-template substitutes argv symbols for values inside a quoted data
// form, the same substitution do-template's macro (internal/macro/extra.go)
// runs over reader forms at expansion time, except here it walks ordinary
// Values so code-generation helpers can call it directly.
package template

import (
	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func substitute(v value.Value, subst map[string]value.Value) value.Value {
	switch x := v.(type) {
	case value.Symbol:
		if x.NS == "" {
			if r, ok := subst[x.Name]; ok {
				return r
			}
		}
		return v
	case *value.List, value.Seq:
		items := corelib.ToSlice(x)
		out := make([]value.Value, len(items))
		for i, it := range items {
			out[i] = substitute(it, subst)
		}
		return value.NewListFrom(out)
	case *value.Vector:
		items := x.Items()
		out := make([]value.Value, len(items))
		for i, it := range items {
			out[i] = substitute(it, subst)
		}
		return value.NewVector(out)
	case *value.HashSet:
		els := x.Elements()
		out := make([]value.Value, len(els))
		for i, it := range els {
			out[i] = substitute(it, subst)
		}
		return value.NewSet(out)
	case value.Map:
		out := value.Map(value.EmptyArrayMap())
		for _, p := range x.Items() {
			out = out.Assoc(substitute(p[0], subst), substitute(p[1], subst))
		}
		return out
	default:
		return v
	}
}

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.template")
	corelib.Install(ns, []corelib.Entry{
		{Name: "apply-template", Ar: corelib.Fixed(3), Fn: func(a []value.Value) (value.Value, error) {
			vec, ok := a[0].(*value.Vector)
			if !ok {
				return a[1], nil
			}
			valItems := corelib.ToSlice(a[2])
			subst := map[string]value.Value{}
			for i, arg := range vec.Items() {
				sym, ok := arg.(value.Symbol)
				if !ok || i >= len(valItems) {
					continue
				}
				subst[sym.Name] = valItems[i]
			}
			return substitute(a[1], subst), nil
		}},
	})
}
