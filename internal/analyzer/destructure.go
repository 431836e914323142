package analyzer

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/form"
)

// destructureBinding implements spec.md section 4.6.1: lowers one binding
// pattern (a plain symbol, a vector pattern, or a map pattern) against a
// value-producing form into a flat, left-to-right list of (symbol, expr)
// pairs fit for a plain let*. Nested patterns recurse.
func destructureBinding(pattern form.Form, valueExpr form.Form, gensym func(string) string) ([][2]form.Form, error) {
	switch p := pattern.(type) {
	case *form.SymbolForm:
		return [][2]form.Form{{p, valueExpr}}, nil
	case *form.VectorForm:
		return destructureVector(p, valueExpr, gensym)
	case *form.MapForm:
		return destructureMap(p, valueExpr, gensym)
	default:
		return nil, clerr.Syntax("binding pattern must be a symbol, vector, or map")
	}
}

func destructureVector(pat *form.VectorForm, valueExpr form.Form, gensym func(string) string) ([][2]form.Form, error) {
	tmp := form.Sym(gensym("destr_vec"))
	out := [][2]form.Form{{tmp, valueExpr}}

	items := pat.Items
	idx := 0
	pos := 0
	for idx < len(items) {
		el := items[idx]
		if kw, ok := el.(*form.KeywordForm); ok && kw.Name == "as" {
			idx++
			if idx >= len(items) {
				return nil, clerr.Syntax("vector destructuring :as requires a symbol")
			}
			asSym, ok := items[idx].(*form.SymbolForm)
			if !ok {
				return nil, clerr.Syntax(":as target must be a symbol")
			}
			out = append(out, [2]form.Form{asSym, tmp})
			idx++
			continue
		}
		if sym, ok := el.(*form.SymbolForm); ok && sym.Is("&") {
			idx++
			if idx >= len(items) {
				return nil, clerr.Syntax("vector destructuring & requires a pattern")
			}
			restExpr := form.List(form.Sym("nthrest"), tmp, form.Int(int64(pos)))
			sub, err := destructureBinding(items[idx], restExpr, gensym)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			idx++
			continue
		}
		nthExpr := form.List(form.Sym("nth"), tmp, form.Int(int64(pos)), form.Nil())
		sub, err := destructureBinding(el, nthExpr, gensym)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
		idx++
		pos++
	}
	return out, nil
}

func destructureMap(pat *form.MapForm, valueExpr form.Form, gensym func(string) string) ([][2]form.Form, error) {
	tmp := form.Sym(gensym("destr_map"))
	out := [][2]form.Form{{tmp, valueExpr}}

	orDefaults := map[string]form.Form{}
	var keysVec, strsVec, symsVec *form.VectorForm
	var asSym *form.SymbolForm
	var direct []([2]form.Form) // pattern, lookup-key-form

	for i := 0; i+1 < len(pat.Pairs); i += 2 {
		k, v := pat.Pairs[i], pat.Pairs[i+1]
		if kw, ok := k.(*form.KeywordForm); ok {
			switch kw.Name {
			case "keys":
				if vec, ok := v.(*form.VectorForm); ok {
					keysVec = vec
				}
				continue
			case "strs":
				if vec, ok := v.(*form.VectorForm); ok {
					strsVec = vec
				}
				continue
			case "syms":
				if vec, ok := v.(*form.VectorForm); ok {
					symsVec = vec
				}
				continue
			case "or":
				if m, ok := v.(*form.MapForm); ok {
					for j := 0; j+1 < len(m.Pairs); j += 2 {
						if sym, ok := m.Pairs[j].(*form.SymbolForm); ok {
							orDefaults[sym.Name] = m.Pairs[j+1]
						}
					}
				}
				continue
			case "as":
				if sym, ok := v.(*form.SymbolForm); ok {
					asSym = sym
				}
				continue
			}
		}
		// k is the binding pattern, v is the lookup key form (e.g. {a :a}).
		direct = append(direct, [2]form.Form{k, v})
	}

	defaultFor := func(name string) form.Form {
		if d, ok := orDefaults[name]; ok {
			return d
		}
		return form.Nil()
	}

	for _, pair := range direct {
		lookup := form.List(form.Sym("get"), tmp, pair[1], form.Nil())
		if sym, ok := pair[0].(*form.SymbolForm); ok {
			lookup = form.List(form.Sym("get"), tmp, pair[1], defaultFor(sym.Name))
		}
		sub, err := destructureBinding(pair[0], lookup, gensym)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	if keysVec != nil {
		for _, item := range keysVec.Items {
			sym, ok := item.(*form.SymbolForm)
			if !ok {
				return nil, clerr.Syntax(":keys entries must be symbols")
			}
			lookup := form.List(form.Sym("get"), tmp, form.Kw(sym.Name), defaultFor(sym.Name))
			out = append(out, [2]form.Form{sym, lookup})
		}
	}
	if strsVec != nil {
		for _, item := range strsVec.Items {
			sym, ok := item.(*form.SymbolForm)
			if !ok {
				return nil, clerr.Syntax(":strs entries must be symbols")
			}
			lookup := form.List(form.Sym("get"), tmp, form.Str(sym.Name), defaultFor(sym.Name))
			out = append(out, [2]form.Form{sym, lookup})
		}
	}
	if symsVec != nil {
		for _, item := range symsVec.Items {
			sym, ok := item.(*form.SymbolForm)
			if !ok {
				return nil, clerr.Syntax(":syms entries must be symbols")
			}
			lookup := form.List(form.Sym("get"), tmp, form.List(form.Sym("quote"), sym), defaultFor(sym.Name))
			out = append(out, [2]form.Form{sym, lookup})
		}
	}
	if asSym != nil {
		out = append(out, [2]form.Form{asSym, tmp})
	}
	return out, nil
}

// lowerBindingVector expands every possibly-destructured binding pair in a
// let*/loop* vector into plain-symbol pairs, left to right, each RHS
// visible to the next (spec.md section 4.6: "visible in subsequent RHS").
func lowerBindingVector(vec *form.VectorForm, gensym func(string) string) (*form.VectorForm, error) {
	out := []form.Form{}
	for i := 0; i+1 < len(vec.Items); i += 2 {
		pairs, err := destructureBinding(vec.Items[i], vec.Items[i+1], gensym)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			out = append(out, p[0], p[1])
		}
	}
	return form.Vec(out...), nil
}

// lowerParamVector replaces destructured parameters with gensym'd plain
// symbols and returns the let* bindings needed to reconstruct the original
// patterns at the top of the arity body.
func lowerParamVector(items []form.Form, gensym func(string) string) ([]form.Form, [][2]form.Form, error) {
	var plain []form.Form
	var pre [][2]form.Form
	for i := 0; i < len(items); i++ {
		if sym, ok := items[i].(*form.SymbolForm); ok {
			plain = append(plain, sym)
			if sym.Is("&") {
				continue
			}
			continue
		}
		tmp := form.Sym(gensym("destr_param"))
		plain = append(plain, tmp)
		pairs, err := destructureBinding(items[i], tmp, gensym)
		if err != nil {
			return nil, nil, err
		}
		pre = append(pre, pairs...)
	}
	return plain, pre, nil
}
