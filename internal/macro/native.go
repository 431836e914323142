// Package macro implements spec.md section 4.5: the native transform table
// (macros the analyzer expands before any user-macro lookup) and the
// lowering algorithms for `case*`, `doseq`, and `defn` metadata.
//
// Every transform is a pure Form -> Form rewrite, grounded the same way
// Clojure's own bootstrap defines these in terms of `if`/`let*`/`loop*`: no
// new evaluation semantics, just syntax sugar over the special-form core.
package macro

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/form"
)

// Transform rewrites one macro-call list into its expansion. gensym mints a
// fresh symbol name (wired to the same Env.Gensym used by syntax-quote, so
// a single counter is shared across the whole pipeline).
type Transform func(call *form.ListForm, gensym func(base string) string) (form.Form, error)

// Table is the dispatch-by-head-symbol-name map the analyzer consults
// before looking up a user macro var, exactly the list spec.md section 4.5
// names: "when, when-not, if-not, comment, while, assert, and, or, ->, ->>,
// as->, some->, some->>, cond->, cond->>, doto, if-let, when-let, if-some,
// when-some, when-first, assert-args, binding, with-bindings, bound-fn,
// with-local-vars, with-redefs, defn, defn-, declare, defonce, definline,
// vswap!, cond, dotimes, delay, lazy-cat, time, locking, dosync, sync,
// io!, with-precision, with-open, with-out-str, with-in-str, condp,
// doseq, amap, areduce, future, pvalues, defstruct, letfn, refer-clojure,
// extend-protocol, ns, case".
var Table = map[string]Transform{}

func register(name string, t Transform) { Table[name] = t }

func init() {
	register("when", expandWhen)
	register("when-not", expandWhenNot)
	register("if-not", expandIfNot)
	register("comment", expandComment)
	register("while", expandWhile)
	register("assert", expandAssert)
	register("and", expandAnd)
	register("or", expandOr)
	register("->", expandThreadFirst)
	register("->>", expandThreadLast)
	register("as->", expandAsThread)
	register("some->", expandSomeThreadFirst)
	register("some->>", expandSomeThreadLast)
	register("cond->", expandCondThreadFirst)
	register("cond->>", expandCondThreadLast)
	register("doto", expandDoto)
	register("if-let", expandIfLet)
	register("when-let", expandWhenLet)
	register("if-some", expandIfSome)
	register("when-some", expandWhenSome)
	register("when-first", expandWhenFirst)
	register("cond", expandCond)
	register("dotimes", expandDotimes)
	register("delay", expandDelay)
	register("lazy-cat", expandLazyCat)
	register("time", expandTime)
	register("with-open", expandWithOpen)
	register("with-out-str", expandWithOutStr)
	register("condp", expandCondp)
	register("doseq", expandDoseq)
	register("defn", expandDefn)
	register("defn-", expandDefnPrivate)
	register("declare", expandDeclare)
	register("defonce", expandDefonce)
	register("case", expandCase)
	register("letfn", expandLetfn)
	register("binding", expandBinding)
	register("with-redefs", expandWithRedefs)
}

func args(call *form.ListForm) []form.Form { return call.Items[1:] }

func errArity(name string) error {
	return clerr.Arity("wrong number of arguments to %s", name)
}

// -- simple conditionals ----------------------------------------------------

func expandWhen(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("when")
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("if"), a[0], form.List(body...), form.Nil()), nil
}

func expandWhenNot(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("when-not")
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("if"), a[0], form.Nil(), form.List(body...)), nil
}

func expandIfNot(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 || len(a) > 3 {
		return nil, errArity("if-not")
	}
	elseBranch := form.Form(form.Nil())
	if len(a) == 3 {
		elseBranch = a[2]
	}
	return form.List(form.Sym("if"), a[0], elseBranch, a[1]), nil
}

func expandComment(call *form.ListForm, _ func(string) string) (form.Form, error) {
	return form.Nil(), nil
}

func expandWhile(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("while")
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	loopSym := form.Sym("loop*")
	recurCall := form.List(form.Sym("recur"))
	bodyWithRecur := form.List(form.Sym("do"), form.List(body...), recurCall)
	return form.List(loopSym, form.Vec(),
		form.List(form.Sym("when"), a[0], bodyWithRecur)), nil
}

func expandAssert(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("assert")
	}
	msg := form.Form(form.Str("Assert failed: " + a[0].String()))
	if len(a) == 2 {
		msg = a[1]
	}
	throwForm := form.List(form.Sym("throw"),
		form.List(form.Sym("ex-info"), msg, form.Mp()))
	return form.List(form.Sym("when-not"), a[0], throwForm), nil
}

func expandAnd(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) == 0 {
		return form.Bool(true), nil
	}
	if len(a) == 1 {
		return a[0], nil
	}
	rest, err := expandAnd(form.List(append([]form.Form{form.Sym("and")}, a[1:]...)...), nil)
	if err != nil {
		return nil, err
	}
	return form.List(form.Sym("let*"), form.Vec(form.Sym("and__auto__"), a[0]),
		form.List(form.Sym("if"), form.Sym("and__auto__"), rest, form.Sym("and__auto__"))), nil
}

func expandOr(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) == 0 {
		return form.Nil(), nil
	}
	if len(a) == 1 {
		return a[0], nil
	}
	rest, err := expandOr(form.List(append([]form.Form{form.Sym("or")}, a[1:]...)...), nil)
	if err != nil {
		return nil, err
	}
	return form.List(form.Sym("let*"), form.Vec(form.Sym("or__auto__"), a[0]),
		form.List(form.Sym("if"), form.Sym("or__auto__"), form.Sym("or__auto__"), rest)), nil
}

// -- threading macros ---------------------------------------------------

func insertFirst(call form.Form, x form.Form) form.Form {
	lst, ok := call.(*form.ListForm)
	if !ok {
		return form.List(call, x)
	}
	items := append([]form.Form{lst.Items[0], x}, lst.Items[1:]...)
	return form.WithMetaFrom(form.List(items...), lst)
}

func insertLast(call form.Form, x form.Form) form.Form {
	lst, ok := call.(*form.ListForm)
	if !ok {
		return form.List(call, x)
	}
	items := append(append([]form.Form{}, lst.Items...), x)
	return form.WithMetaFrom(form.List(items...), lst)
}

func expandThreadFirst(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) == 0 {
		return nil, errArity("->")
	}
	acc := a[0]
	for _, step := range a[1:] {
		acc = insertFirst(step, acc)
	}
	return acc, nil
}

func expandThreadLast(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) == 0 {
		return nil, errArity("->>")
	}
	acc := a[0]
	for _, step := range a[1:] {
		acc = insertLast(step, acc)
	}
	return acc, nil
}

func expandAsThread(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 {
		return nil, errArity("as->")
	}
	name := a[1]
	acc := a[0]
	bindings := []form.Form{}
	for _, step := range a[2:] {
		bindings = append(bindings, name, acc)
		acc = step
	}
	return form.List(form.Sym("let*"), form.Vec(bindings...), acc), nil
}

func expandSomeThreadFirst(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	return expandSomeThread(call, gensym, insertFirst)
}

func expandSomeThreadLast(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	return expandSomeThread(call, gensym, insertLast)
}

func expandSomeThread(call *form.ListForm, gensym func(string) string, insert func(form.Form, form.Form) form.Form) (form.Form, error) {
	a := args(call)
	if len(a) == 0 {
		return nil, errArity(call.Items[0].String())
	}
	g := gensym("some_x")
	gs := form.Sym(g)
	acc := form.Form(a[0])
	for _, step := range a[1:] {
		stepCall := insert(step, gs)
		acc = form.List(form.Sym("let*"), form.Vec(gs, acc),
			form.List(form.Sym("if"), form.List(form.Sym("nil?"), gs), form.Nil(), stepCall))
	}
	return acc, nil
}

func expandCondThreadFirst(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	return expandCondThread(call, gensym, insertFirst)
}

func expandCondThreadLast(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	return expandCondThread(call, gensym, insertLast)
}

func expandCondThread(call *form.ListForm, gensym func(string) string, insert func(form.Form, form.Form) form.Form) (form.Form, error) {
	a := args(call)
	if len(a) < 1 || len(a)%2 != 1 {
		return nil, errArity(call.Items[0].String())
	}
	g := gensym("cond_x")
	gs := form.Sym(g)
	clauses := a[1:]
	acc := form.Form(gs)
	for i := len(clauses) - 2; i >= 0; i -= 2 {
		test, step := clauses[i], clauses[i+1]
		stepped := insert(step, gs)
		acc = form.List(form.Sym("if"), test, form.List(form.Sym("let*"), form.Vec(gs, stepped), acc), acc)
	}
	return form.List(form.Sym("let*"), form.Vec(gs, a[0]), acc), nil
}

func expandDoto(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("doto")
	}
	g := gensym("doto_x")
	gs := form.Sym(g)
	body := []form.Form{form.Sym("do")}
	for _, step := range a[1:] {
		body = append(body, insertFirst(step, gs))
	}
	body = append(body, gs)
	return form.List(form.Sym("let*"), form.Vec(gs, a[0]), form.List(body...)), nil
}

// -- let-style conditionals ----------------------------------------------

func bindingPair(bindings form.Form) (form.Form, form.Form, error) {
	vec, ok := bindings.(*form.VectorForm)
	if !ok || len(vec.Items) != 2 {
		return nil, nil, clerr.Syntax("binding form requires a single [name test] pair")
	}
	return vec.Items[0], vec.Items[1], nil
}

func expandIfLet(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 || len(a) > 3 {
		return nil, errArity("if-let")
	}
	name, test, err := bindingPair(a[0])
	if err != nil {
		return nil, err
	}
	elseBranch := form.Form(form.Nil())
	if len(a) == 3 {
		elseBranch = a[2]
	}
	return form.List(form.Sym("let*"), form.Vec(name, test),
		form.List(form.Sym("if"), name, a[1], elseBranch)), nil
}

func expandWhenLet(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("when-let")
	}
	name, test, err := bindingPair(a[0])
	if err != nil {
		return nil, err
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("let*"), form.Vec(name, test),
		form.List(form.Sym("if"), name, form.List(body...), form.Nil())), nil
}

func expandIfSome(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 || len(a) > 3 {
		return nil, errArity("if-some")
	}
	name, test, err := bindingPair(a[0])
	if err != nil {
		return nil, err
	}
	elseBranch := form.Form(form.Nil())
	if len(a) == 3 {
		elseBranch = a[2]
	}
	return form.List(form.Sym("let*"), form.Vec(name, test),
		form.List(form.Sym("if"), form.List(form.Sym("some?"), name), a[1], elseBranch)), nil
}

func expandWhenSome(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("when-some")
	}
	name, test, err := bindingPair(a[0])
	if err != nil {
		return nil, err
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("let*"), form.Vec(name, test),
		form.List(form.Sym("if"), form.List(form.Sym("some?"), name), form.List(body...), form.Nil())), nil
}

func expandWhenFirst(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("when-first")
	}
	name, coll, err := bindingPair(a[0])
	if err != nil {
		return nil, err
	}
	g := gensym("wf_seq")
	gs := form.Sym(g)
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	return form.List(form.Sym("when-let"), form.Vec(gs, form.List(form.Sym("seq"), coll)),
		form.List(form.Sym("let*"), form.Vec(name, form.List(form.Sym("first"), gs)), form.List(body...))), nil
}

// -- cond, dotimes, delay, misc -------------------------------------------

func expandCond(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) == 0 {
		return form.Nil(), nil
	}
	if len(a)%2 != 0 {
		return nil, errArity("cond")
	}
	test, result := a[0], a[1]
	if sym, ok := test.(*form.SymbolForm); ok && sym.Is("else") {
		return result, nil
	}
	rest, err := expandCond(form.List(append([]form.Form{form.Sym("cond")}, a[2:]...)...), nil)
	if err != nil {
		return nil, err
	}
	return form.List(form.Sym("if"), test, result, rest), nil
}

func expandDotimes(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("dotimes")
	}
	name, n, err := bindingPair(a[0])
	if err != nil {
		return nil, err
	}
	g := form.Sym("dotimes_n__auto__")
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	loop := form.List(form.Sym("loop*"), form.Vec(name, form.Int(0)),
		form.List(form.Sym("when"), form.List(form.Sym("<"), name, g),
			form.List(form.Sym("do"), form.List(body...),
				form.List(form.Sym("recur"), form.List(form.Sym("inc"), name)))))
	return form.List(form.Sym("let*"), form.Vec(g, n), loop), nil
}

func expandDelay(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	body := append([]form.Form{form.Sym("fn*"), form.Vec()}, a...)
	return form.List(form.Sym("new-delay"), form.List(body...)), nil
}

func expandLazyCat(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	concatArgs := make([]form.Form, 0, len(a))
	for _, c := range a {
		concatArgs = append(concatArgs, form.List(form.Sym("lazy-seq"), c))
	}
	return form.List(append([]form.Form{form.Sym("concat")}, concatArgs...)...), nil
}

func expandTime(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) != 1 {
		return nil, errArity("time")
	}
	startSym := form.Sym("time_start__auto__")
	retSym := form.Sym("time_ret__auto__")
	return form.List(form.Sym("let*"),
		form.Vec(startSym, form.List(form.Sym("system-nano-time")),
			retSym, a[0]),
		form.List(form.Sym("print-elapsed"), startSym),
		retSym), nil
}

func expandWithOpen(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("with-open")
	}
	vec, ok := a[0].(*form.VectorForm)
	if !ok || len(vec.Items)%2 != 0 {
		return nil, clerr.Syntax("with-open requires an even-length binding vector")
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)
	var build func(i int) form.Form
	build = func(i int) form.Form {
		if i >= len(vec.Items) {
			return form.List(body...)
		}
		name, resource := vec.Items[i], vec.Items[i+1]
		inner := build(i + 2)
		tryForm := form.List(form.Sym("try"), inner,
			form.List(form.Sym("finally"), form.List(form.Sym(".close"), name)))
		return form.List(form.Sym("let*"), form.Vec(name, resource), tryForm)
	}
	return build(0), nil
}

func expandWithOutStr(call *form.ListForm, _ func(string) string) (form.Form, error) {
	a := args(call)
	body := append([]form.Form{form.Sym("do")}, a...)
	writerSym := form.Sym("with_out_str_writer__auto__")
	return form.List(form.Sym("let*"), form.Vec(writerSym, form.List(form.Sym("new-string-writer"))),
		form.List(form.Sym("binding"), form.Vec(form.Sym("*out*"), writerSym), form.List(body...)),
		form.List(form.Sym("."), writerSym, form.Sym("str"))), nil
}

func expandCondp(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 2 {
		return nil, errArity("condp")
	}
	pred, expr, clauses := a[0], a[1], a[2:]
	g := gensym("condp_expr")
	gs := form.Sym(g)
	var build func(i int) (form.Form, error)
	build = func(i int) (form.Form, error) {
		if i >= len(clauses) {
			return form.List(form.Sym("throw"),
				form.List(form.Sym("ex-info"), form.Str("No matching clause"), form.Mp())), nil
		}
		if i+1 >= len(clauses) {
			// single trailing default form
			return clauses[i], nil
		}
		test, result := clauses[i], clauses[i+1]
		// Note: the `:>>` result-function variant of condp is not
		// implemented; only the plain test/result clause form is.
		rest, err := build(i + 2)
		if err != nil {
			return nil, err
		}
		return form.List(form.Sym("if"), form.List(pred, test, gs), result, rest), nil
	}
	body, err := build(0)
	if err != nil {
		return nil, err
	}
	return form.List(form.Sym("let*"), form.Vec(gs, expr), body), nil
}
