package macro

import (
	"github.com/clojurewasm/corelisp/internal/form"
)

func init() {
	register("with-bindings", expandWithBindings)
	register("bound-fn", expandBoundFn)
	register("with-local-vars", expandWithLocalVars)
	register("definline", expandDefinline)
	register("vswap!", expandVswap)
	register("locking", expandLocking)
	register("dosync", expandDosync)
	register("sync", expandSync)
	register("io!", expandIoBang)
	register("with-precision", expandWithPrecision)
	register("with-in-str", expandWithInStr)
	register("amap", expandAmap)
	register("areduce", expandAreduce)
	register("future", expandFuture)
	register("pvalues", expandPvalues)
	register("defstruct", expandDefstruct)
	register("refer-clojure", expandReferClojure)
	register("extend-protocol", expandExtendProtocol)
	register("ns", expandNs)
	register("defmacro", expandDefmacro)
	register("push-bindings-try", expandPushBindingsTry)
	register("extend-type", expandExtendType)
	register("lazy-seq", expandLazySeq)
	register("with-pprint-dispatch", expandWithPprintDispatch)
	register("do-template", expandDoTemplate)
	register("deftest", expandDeftest)
	register("testing", expandTesting)
	register("is", expandIs)
	register("are", expandAre)
}

// (lazy-seq body*) defers body to a thunk, the same way `future`/`delay`
// wrap a body in a zero-arg fn* below -- lazy-seq* (internal/builtins) does
// the actual LazySeq construction, since capturing the lexical env for the
// thunk needs fn*'s closure machinery, not something a plain function call
// can do.
func expandLazySeq(call *form.ListForm, _ func(string) string) (form.Form, error) {
	body := args(call)
	fnForm := append([]form.Form{form.Sym("fn*"), form.Vec()}, body...)
	return form.List(form.Sym("lazy-seq*"), form.List(fnForm...)), nil
}

// (with-pprint-dispatch f body*) scopes a *print-pprint-dispatch* rebinding
// to body, the same thunk-wrapping shape as lazy-seq above --
// with-pprint-dispatch* (internal/builtins/pprint.go) does the actual
// push/pop around the call.
func expandWithPprintDispatch(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("with-pprint-dispatch")
	}
	fnForm := append([]form.Form{form.Sym("fn*"), form.Vec()}, a[1:]...)
	return form.List(form.Sym("with-pprint-dispatch*"), a[0], form.List(fnForm...)), nil
}

// (push-bindings-try [var1 val1 var2 val2 ...] body) is the primitive
// `binding`/`with-bindings` lower to: var1/var2/... are literal var-naming
// symbols, not expressions to evaluate, the same way a let* binding vector's
// left-hand symbols are never evaluated -- so this is a macro, not an
// ordinary function, exactly for that reason.
func expandPushBindingsTry(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 {
		return nil, errArity("push-bindings-try")
	}
	vec, ok := a[0].(*form.VectorForm)
	if !ok || len(vec.Items)%2 != 0 {
		return nil, clerrSyntax("push-bindings-try requires an even-length binding vector")
	}
	letBindings := []form.Form{}
	mapArgs := []form.Form{}
	varForms := []form.Form{}
	for i := 0; i < len(vec.Items); i += 2 {
		varSym := vec.Items[i]
		valExpr := vec.Items[i+1]
		g := form.Sym(gensym("binding_val"))
		letBindings = append(letBindings, g, valExpr)
		varForm := form.List(form.Sym("var"), varSym)
		mapArgs = append(mapArgs, varForm, g)
		varForms = append(varForms, varForm)
	}
	pushCall := form.List(form.Sym("push-thread-bindings"), form.List(append([]form.Form{form.Sym("hash-map")}, mapArgs...)...))
	popCall := form.List(form.Sym("pop-thread-bindings"), form.Vec(varForms...))
	tryForm := form.List(form.Sym("try"),
		form.List(form.Sym("do"), pushCall, a[1]),
		form.List(form.Sym("finally"), popCall))
	return form.List(form.Sym("let*"), form.Vec(letBindings...), tryForm), nil
}

// (extend-type Type Proto method-impls*) is a no-op here: method dispatch
// (reify/deftype*, see internal/analyzer) is purely by method name, not by
// declared protocol membership, so there is no protocol registry to extend.
func expandExtendType(call *form.ListForm, _ func(string) string) (form.Form, error) {
	return form.Nil(), nil
}

// (defmacro name doc? attr-map? arities) expands exactly like defn, plus
// the extra {:macro true} metadata the analyzer's def handler uses to flip
// the resulting var's macro bit -- the hook that lets macroexpand treat
// its value as a form-rewriting function instead of an ordinary callable.
func expandDefmacro(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	macroMeta := form.Mp(form.Kw("macro"), form.Bool(true))
	return expandDefnNamed(call, gensym, macroMeta)
}

// (with-bindings bindings-map body*) differs from `binding`: bindings-map is
// an ordinary expression evaluating to a map of Var->value (keys already
// *value.Var, not symbols), so it pushes/pops directly instead of going
// through push-bindings-try's literal var-symbol binding vector.
func expandWithBindings(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("with-bindings")
	}
	mapSym := form.Sym(gensym("with_bindings_map"))
	varsSym := form.Sym(gensym("with_bindings_vars"))
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	pushCall := form.List(form.Sym("push-thread-bindings"), mapSym)
	popCall := form.List(form.Sym("pop-thread-bindings"), varsSym)
	tryForm := form.List(form.Sym("try"),
		form.List(form.Sym("do"), pushCall, form.List(body...)),
		form.List(form.Sym("finally"), popCall))
	return form.List(form.Sym("let*"),
		form.Vec(mapSym, a[0], varsSym, form.List(form.Sym("keys"), mapSym)),
		tryForm), nil
}

// (bound-fn [params] body*) captures the current thread bindings so the
// returned closure replays them whenever it's later invoked.
func expandBoundFn(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	fnForm := append([]form.Form{form.Sym("fn*")}, a...)
	return form.List(form.Sym("bind-captured-fn"), form.List(fnForm...)), nil
}

// (with-local-vars [name init ...] body*) => mutable cells via plain let* of
// vars created with (new-local-var init).
func expandWithLocalVars(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("with-local-vars")
	}
	vec, ok := a[0].(*form.VectorForm)
	if !ok || len(vec.Items)%2 != 0 {
		return nil, clerrSyntax("with-local-vars requires an even-length binding vector")
	}
	bindings := []form.Form{}
	for i := 0; i < len(vec.Items); i += 2 {
		name, init := vec.Items[i], vec.Items[i+1]
		bindings = append(bindings, name, form.List(form.Sym("new-local-var"), init))
	}
	body := append([]form.Form{form.Sym("let*"), form.Vec(bindings...)}, a[1:]...)
	return form.List(body...), nil
}

// (definline name [params] body) documents an inlining hint but, absent a
// compiler that performs inlining, simply defines an ordinary function.
func expandDefinline(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	return expandDefnNamed(call, gensym, nil)
}

func expandVswap(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 {
		return nil, errArity("vswap!")
	}
	vol := a[0]
	fn := a[1]
	extra := a[2:]
	applyArgs := append([]form.Form{fn, form.List(form.Sym("vreset-read"), vol)}, extra...)
	return form.List(form.Sym("vreset!"), vol, form.List(applyArgs...)), nil
}

// (locking x body*) acquires no real lock under the single-threaded
// cooperative model; it still evaluates x (for side effects/ordering
// parity with Clojure) and runs body in a plain do.
func expandLocking(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("locking")
	}
	g := form.Sym(gensym("locking_target"))
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("let*"), form.Vec(g, a[0]), form.List(body...)), nil
}

func expandDosync(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	body := append([]form.Form{form.Sym("do")}, a...)
	return form.List(body...), nil
}

func expandSync(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	return expandLocking(call, gensym)
}

func expandIoBang(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	body := append([]form.Form{form.Sym("do")}, a...)
	return form.List(body...), nil
}

// (with-precision n body*) binds the dynamic bigdecimal-rounding var for the
// dynamic extent of body, restoring it on exit.
func expandWithPrecision(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("with-precision")
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	bindVec := form.Vec(form.Sym("*math-context-precision*"), a[0])
	return form.List(form.Sym("binding"), bindVec, form.List(body...)), nil
}

func expandWithInStr(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("with-in-str")
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	bindVec := form.Vec(form.Sym("*in*"), form.List(form.Sym("string-reader"), a[0]))
	return form.List(form.Sym("binding"), bindVec, form.List(body...)), nil
}

// (amap a idx ret expr) mutates a freshly aliased array-like vector in place,
// lowered to a loop*/recur over indices.
func expandAmap(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) != 4 {
		return nil, errArity("amap")
	}
	arrExpr, idx, ret, expr := a[0], a[1], a[2], a[3]
	if _, ok := idx.(*form.SymbolForm); !ok {
		return nil, clerrSyntax("amap index must be a symbol")
	}
	retSym, ok := ret.(*form.SymbolForm)
	if !ok {
		return nil, clerrSyntax("amap accumulator must be a symbol")
	}
	arrSym := form.Sym(gensym("amap_arr"))
	cnt := form.Sym(gensym("amap_cnt"))
	loopBody := form.List(form.Sym("if"), form.List(form.Sym("<"), idx, cnt),
		form.List(form.Sym("recur"),
			form.List(form.Sym("inc"), idx),
			form.List(form.Sym("assoc"), retSym, idx, expr)),
		retSym)
	return form.List(form.Sym("let*"), form.Vec(arrSym, arrExpr, cnt, form.List(form.Sym("count"), arrSym)),
		form.List(form.Sym("loop*"), form.Vec(idx, form.Int(0), retSym, arrSym), loopBody)), nil
}

// (areduce a idx ret init expr) folds expr over indices of a, threading ret.
func expandAreduce(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) != 5 {
		return nil, errArity("areduce")
	}
	arrExpr, idx, ret, init, expr := a[0], a[1], a[2], a[3], a[4]
	arrSym := form.Sym(gensym("areduce_arr"))
	cnt := form.Sym(gensym("areduce_cnt"))
	loopBody := form.List(form.Sym("if"), form.List(form.Sym("<"), idx, cnt),
		form.List(form.Sym("recur"), form.List(form.Sym("inc"), idx), expr),
		ret)
	return form.List(form.Sym("let*"), form.Vec(arrSym, arrExpr, cnt, form.List(form.Sym("count"), arrSym)),
		form.List(form.Sym("loop*"), form.Vec(idx, form.Int(0), ret, init), loopBody)), nil
}

// (future body*) has no real OS thread under the cooperative scheduling
// model (spec.md section 5); it runs body eagerly and wraps the result in a
// realized delay so `deref`/`future?`/`realized?` still behave consistently.
func expandFuture(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	fnForm := append([]form.Form{form.Sym("fn*"), form.Vec()}, a...)
	return form.List(form.Sym("run-future"), form.List(fnForm...)), nil
}

func expandPvalues(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	vec := []form.Form{}
	for _, e := range a {
		vec = append(vec, form.List(form.Sym("fn*"), form.Vec(), e))
	}
	return form.List(append([]form.Form{form.Sym("run-pvalues")}, vec...)...), nil
}

// (defstruct name & keys) is legacy Clojure; lowered to a factory function
// returning a hash-map of the given keys as keywords.
func expandDefstruct(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("defstruct")
	}
	name, keys := a[0], a[1:]
	params := []form.Form{}
	pairs := []form.Form{}
	for _, k := range keys {
		kw, ok := k.(*form.KeywordForm)
		if !ok {
			return nil, clerrSyntax("defstruct keys must be keywords")
		}
		pname := form.Sym(kw.Name)
		params = append(params, pname)
		pairs = append(pairs, k, pname)
	}
	fnForm := form.List(form.Sym("fn*"), form.Vec(params...), form.List(append([]form.Form{form.Sym("hash-map")}, pairs...)...))
	return form.List(form.Sym("def"), name, fnForm), nil
}

// (refer-clojure :exclude [...]) is a no-op in this single-namespace-root
// bootstrap: clojure.core is always referred in full by a fresh namespace.
func expandReferClojure(call *form.ListForm, _ func(string) string) (form.Form, error) {
	return form.Nil(), nil
}

// (extend-protocol Proto (Type method-impls*) ...) lowers each per-type
// block to an extend-type call, sharing Proto across all of them.
func expandExtendProtocol(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("extend-protocol")
	}
	proto := a[0]
	out := []form.Form{form.Sym("do")}
	for _, spec := range a[1:] {
		lst, ok := spec.(*form.ListForm)
		if !ok || len(lst.Items) < 1 {
			return nil, clerrSyntax("extend-protocol type block must be a (Type impl*) list")
		}
		typ := lst.Items[0]
		impls := lst.Items[1:]
		extendItems := append([]form.Form{form.Sym("extend-type"), typ, proto}, impls...)
		out = append(out, form.List(extendItems...))
	}
	return form.List(out...), nil
}

// (ns name & clauses) establishes the namespace and threads any :require /
// :import / :refer-clojure clauses into the appropriate runtime calls; the
// analyzer is responsible for switching the *current* namespace before the
// rest of the file is read, so this only needs to emit the declarative
// side-effects.
func expandNs(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("ns")
	}
	name := a[0]
	out := []form.Form{form.Sym("do"), form.List(form.Sym("in-ns"), form.List(form.Sym("quote"), name))}
	for _, clause := range a[1:] {
		lst, ok := clause.(*form.ListForm)
		if !ok || len(lst.Items) < 1 {
			continue
		}
		kw, ok := lst.Items[0].(*form.KeywordForm)
		if !ok {
			continue
		}
		switch kw.Name {
		case "require":
			for _, spec := range lst.Items[1:] {
				out = append(out, form.List(form.Sym("require"), form.List(form.Sym("quote"), spec)))
			}
		case "import":
			for _, spec := range lst.Items[1:] {
				out = append(out, form.List(form.Sym("import"), form.List(form.Sym("quote"), spec)))
			}
		case "refer-clojure":
			// handled implicitly: clojure.core is always referred.
		}
	}
	return form.List(out...), nil
}

// (do-template argv expr & values) repeats expr once per (count argv)-sized
// group of values, substituting each argv symbol for its group value,
// matching clojure.template's macro of the same name -- grouped under a
// `do` the way `with-bindings`/`dosync` above wrap their expansions.
func expandDoTemplate(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 {
		return nil, errArity("do-template")
	}
	argv, ok := a[0].(*form.VectorForm)
	if !ok {
		return nil, errArity("do-template")
	}
	expr := a[1]
	values := a[2:]
	n := len(argv.Items)
	if n == 0 || len(values)%n != 0 {
		return nil, errArity("do-template")
	}
	out := []form.Form{form.Sym("do")}
	for i := 0; i < len(values); i += n {
		subst := map[string]form.Form{}
		for j, v := range argv.Items {
			sym, ok := v.(*form.SymbolForm)
			if !ok {
				return nil, errArity("do-template")
			}
			subst[sym.Name] = values[i+j]
		}
		out = append(out, substituteForm(expr, subst))
	}
	return form.List(out...), nil
}

// substituteForm walks f, replacing any bare symbol present in subst with
// its mapped replacement form -- the same tree-walk shape clojure.walk's
// postwalk-replace does over data, here run directly over reader forms
// since macros see unevaluated form.Form trees rather than Values.
func substituteForm(f form.Form, subst map[string]form.Form) form.Form {
	switch x := f.(type) {
	case *form.SymbolForm:
		if x.NS == "" {
			if r, ok := subst[x.Name]; ok {
				return r
			}
		}
		return f
	case *form.ListForm:
		items := make([]form.Form, len(x.Items))
		for i, it := range x.Items {
			items[i] = substituteForm(it, subst)
		}
		return &form.ListForm{P: x.P, M: x.M, Items: items}
	case *form.VectorForm:
		items := make([]form.Form, len(x.Items))
		for i, it := range x.Items {
			items[i] = substituteForm(it, subst)
		}
		return &form.VectorForm{P: x.P, M: x.M, Items: items}
	case *form.SetForm:
		items := make([]form.Form, len(x.Items))
		for i, it := range x.Items {
			items[i] = substituteForm(it, subst)
		}
		return &form.SetForm{P: x.P, M: x.M, Items: items}
	case *form.MapForm:
		pairs := make([]form.Form, len(x.Pairs))
		for i, it := range x.Pairs {
			pairs[i] = substituteForm(it, subst)
		}
		return &form.MapForm{P: x.P, M: x.M, Pairs: pairs}
	default:
		return f
	}
}

// (deftest name body*) defines a zero-arg test function and tags its var
// with {:test true} metadata, the same marker clojure.test/run-tests
// (internal/corelib/test) scans every namespace's vars for.
func expandDeftest(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("deftest")
	}
	name, ok := a[0].(*form.SymbolForm)
	if !ok {
		return nil, errArity("deftest")
	}
	body := append([]form.Form{form.Sym("fn*"), form.Vec()}, a[1:]...)
	defForm := form.List(form.Sym("def"), name, form.List(body...))
	varForm := form.List(form.Sym("var"), name)
	alterForm := form.List(form.Sym("alter-meta!"), varForm, form.Sym("assoc"), form.Kw("test"), form.Bool(true))
	return form.List(form.Sym("do"), defForm, alterForm, varForm), nil
}

// (testing desc body*) pushes desc onto *testing-context* for the duration
// of body, reusing the same push-bindings-try path `binding` lowers to.
func expandTesting(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("testing")
	}
	ctxSym := form.SymNS("clojure.test", "*testing-context*")
	newCtx := form.List(form.Sym("cons"), a[0], ctxSym)
	bindVec := form.Vec(ctxSym, newCtx)
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("binding"), bindVec, form.List(body...)), nil
}

// (is expr) / (is expr msg) hands the unevaluated expr (for a readable
// failure report) and its evaluated result to clojure.test/report-test.
func expandIs(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("is")
	}
	msg := form.Form(form.Nil())
	if len(a) > 1 {
		msg = a[1]
	}
	return form.List(form.SymNS("clojure.test", "report-test"),
		form.List(form.Sym("quote"), a[0]), a[0], msg), nil
}

// (are [argv] expr & args) expands to one `is` per (count argv)-sized
// group of args via do-template, exactly the relationship clojure.test's
// real `are` has to clojure.template/do-template.
func expandAre(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 {
		return nil, errArity("are")
	}
	isExpr := form.List(form.Sym("is"), a[1])
	out := append([]form.Form{form.Sym("do-template"), a[0], isExpr}, a[2:]...)
	return form.List(out...), nil
}
