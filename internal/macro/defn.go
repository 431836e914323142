package macro

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/form"
)

// expandDefn implements spec.md section 4.5.3: strip docstring/attr-map,
// normalize single-arity [args] body into multi-arity ([args] body...),
// attach collected metadata to the name symbol, expand to
// (def name-with-meta (fn name arities...)).
func expandDefn(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	return expandDefnNamed(call, gensym, nil)
}

func expandDefnPrivate(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	privateMeta := form.Mp(form.Kw("private"), form.Bool(true))
	return expandDefnNamed(call, gensym, privateMeta)
}

func expandDefnNamed(call *form.ListForm, _ func(string) string, extraMeta *form.MapForm) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("defn")
	}
	nameForm, ok := a[0].(*form.SymbolForm)
	if !ok {
		return nil, clerrSyntax("defn requires a symbol name")
	}
	rest := a[1:]

	var doc *form.StringForm
	if len(rest) > 0 {
		if s, ok := rest[0].(*form.StringForm); ok && len(rest) > 1 {
			doc = s
			rest = rest[1:]
		}
	}

	var attrMap *form.MapForm
	if len(rest) > 1 {
		if m, ok := rest[0].(*form.MapForm); ok {
			attrMap = m
			rest = rest[1:]
		}
	}

	// Normalize to a list of ([params] body...) arities.
	var arities []*form.ListForm
	if _, ok := rest[0].(*form.VectorForm); ok {
		arities = []*form.ListForm{form.List(rest...)}
	} else {
		for _, r := range rest {
			lst, ok := r.(*form.ListForm)
			if !ok {
				return nil, clerrSyntax("defn arity clause must be a list")
			}
			arities = append(arities, lst)
		}
	}

	// Trailing legacy attr-map after the arities.
	if len(arities) > 0 {
		last := arities[len(arities)-1]
		if len(last.Items) > 0 {
			if m, ok := last.Items[len(last.Items)-1].(*form.MapForm); ok && attrMap == nil {
				attrMap = m
				arities[len(arities)-1] = form.List(last.Items[:len(last.Items)-1]...)
			}
		}
	}

	meta := []form.Form{}
	if doc != nil {
		meta = append(meta, form.Kw("doc"), doc)
	}
	if attrMap != nil {
		meta = append(meta, attrMap.Pairs...)
	}
	if extraMeta != nil {
		meta = append(meta, extraMeta.Pairs...)
	}

	fnItems := []form.Form{form.Sym("fn*"), form.Sym(nameForm.Name)}
	for _, ar := range arities {
		fnItems = append(fnItems, ar)
	}
	fnForm := form.Form(form.List(fnItems...))

	// `def` reads metadata straight off the name form, so attaching it here
	// is enough -- no separate with-meta wrapper needed at expansion time.
	nameFormOut := form.Form(nameForm)
	if len(meta) > 0 {
		nameFormOut = nameForm.WithMeta(form.Mp(meta...))
	}

	return form.List(form.Sym("def"), nameFormOut, fnForm), nil
}

func clerrSyntax(msg string) error {
	return clerr.Syntax(msg)
}

func expandDeclare(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	decls := []form.Form{form.Sym("do")}
	for _, sym := range a {
		decls = append(decls, form.List(form.Sym("def"), sym))
	}
	return form.List(decls...), nil
}

func expandDefonce(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) != 2 {
		return nil, errArity("defonce")
	}
	name := a[0]
	return form.List(form.Sym("when-not"),
		form.List(form.Sym("resolved?"), form.List(form.Sym("quote"), name)),
		form.List(form.Sym("def"), name, a[1])), nil
}

func expandLetfn(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("letfn")
	}
	vec, ok := a[0].(*form.VectorForm)
	if !ok {
		return nil, clerrSyntax("letfn requires a binding vector of fn specs")
	}
	bindings := []form.Form{}
	for _, spec := range vec.Items {
		lst, ok := spec.(*form.ListForm)
		if !ok || len(lst.Items) < 1 {
			return nil, clerrSyntax("letfn binding must be a (name [params] body...) spec")
		}
		name := lst.Items[0]
		fnForm := append([]form.Form{form.Sym("fn*")}, lst.Items...)
		bindings = append(bindings, name, form.List(fnForm...))
	}
	body := append([]form.Form{form.Sym("let*"), form.Vec(bindings...)}, a[1:]...)
	return form.List(body...), nil
}

func expandBinding(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("binding")
	}
	vec, ok := a[0].(*form.VectorForm)
	if !ok || len(vec.Items)%2 != 0 {
		return nil, clerrSyntax("binding requires an even-length binding vector")
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("push-bindings-try"), vec, form.List(body...)), nil
}

func expandWithRedefs(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("with-redefs")
	}
	vec, ok := a[0].(*form.VectorForm)
	if !ok || len(vec.Items)%2 != 0 {
		return nil, clerrSyntax("with-redefs requires an even-length binding vector")
	}
	body := append([]form.Form{form.Sym("fn*"), form.Vec()}, a[1:]...)
	return form.List(form.Sym("with-redefs-fn"), buildRedefMap(vec.Items), form.List(body...)), nil
}

func buildRedefMap(items []form.Form) form.Form {
	pairs := []form.Form{}
	for i := 0; i < len(items); i += 2 {
		pairs = append(pairs, form.List(form.Sym("var"), items[i]), items[i+1])
	}
	return form.List(append([]form.Form{form.Sym("hash-map")}, pairs...)...)
}
