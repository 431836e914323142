package analyzer

import (
	"regexp"
	"strings"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/form"
	"github.com/clojurewasm/corelisp/internal/macro"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// Ctx carries what Analyze needs beyond the Form itself: the namespace
// registry (to resolve macro vars and record def/ns side effects) and a
// gensym source shared with syntax-quote.
type Ctx struct {
	RtEnv  *runtime.Env
	Gensym func(string) string
}

const maxMacroExpansions = 10000

// Macroexpand1 tries one layer of expansion: a native transform first
// (spec.md section 4.5 table), then a user var whose macro bit is set.
// The bool result reports whether any expansion happened.
func Macroexpand1(f form.Form, ctx *Ctx) (form.Form, bool, error) {
	lst, ok := f.(*form.ListForm)
	if !ok || len(lst.Items) == 0 {
		return f, false, nil
	}
	head, ok := lst.Head()
	if !ok || head.NS != "" {
		return f, false, nil
	}
	if t, ok := macro.Table[head.Name]; ok {
		out, err := t(lst, ctx.Gensym)
		if err != nil {
			return nil, false, err
		}
		if out == nil {
			out = form.Nil()
		}
		return out, true, nil
	}
	v, err := ctx.RtEnv.Resolve(ctx.RtEnv.Current(), "", head.Name)
	if err != nil || v == nil || !v.IsMacro() || !v.IsBound() {
		return f, false, nil
	}
	root, err := v.Deref()
	if err != nil {
		return f, false, nil
	}
	fn, ok := root.(value.Fn)
	if !ok {
		return nil, false, clerr.Type("macro var %s does not hold a function", head.Name)
	}
	argVals := make([]value.Value, len(lst.Items)-1)
	for i, a := range lst.Items[1:] {
		argVals[i] = formToValue(a)
	}
	result, err := fn.Call(argVals)
	if err != nil {
		return nil, false, err
	}
	return valueToForm(result), true, nil
}

// Macroexpand runs Macroexpand1 to a fixed point.
func Macroexpand(f form.Form, ctx *Ctx) (form.Form, error) {
	for i := 0; i < maxMacroExpansions; i++ {
		next, expanded, err := Macroexpand1(f, ctx)
		if err != nil {
			return nil, err
		}
		if !expanded {
			return f, nil
		}
		f = next
	}
	return nil, clerr.Syntax("macroexpansion did not converge after %d steps", maxMacroExpansions)
}

// Analyze reduces f to a Node, expanding macros first.
func Analyze(f form.Form, ctx *Ctx) (Node, error) {
	expanded, err := Macroexpand(f, ctx)
	if err != nil {
		return nil, err
	}
	return analyzeExpanded(expanded, ctx)
}

func analyzeExpanded(f form.Form, ctx *Ctx) (Node, error) {
	switch x := f.(type) {
	case nil, *form.NilForm:
		return &LiteralNode{Val: value.NilValue}, nil
	case *form.BoolForm:
		return &LiteralNode{base: base{x.Pos()}, Val: value.Bool(x.Value)}, nil
	case *form.IntForm:
		return &LiteralNode{base: base{x.Pos()}, Val: value.Int(x.Value)}, nil
	case *form.FloatForm:
		return &LiteralNode{base: base{x.Pos()}, Val: value.Float(x.Value)}, nil
	case *form.BigIntForm:
		return &LiteralNode{base: base{x.Pos()}, Val: &value.BigInt{V: x.Value}}, nil
	case *form.BigDecForm:
		return &LiteralNode{base: base{x.Pos()}, Val: &value.BigDecimal{Unscaled: x.Unscaled, Scale: x.Scale}}, nil
	case *form.RatioForm:
		return &LiteralNode{base: base{x.Pos()}, Val: value.NewRatio(x.Num, x.Den)}, nil
	case *form.CharForm:
		return &LiteralNode{base: base{x.Pos()}, Val: value.Char(x.Value)}, nil
	case *form.StringForm:
		return &LiteralNode{base: base{x.Pos()}, Val: value.String(x.Value)}, nil
	case *form.KeywordForm:
		return &LiteralNode{base: base{x.Pos()}, Val: value.Keyword{NS: x.NS, Name: x.Name}}, nil
	case *form.RegexForm:
		re, err := regexp.Compile(x.Pattern)
		if err != nil {
			return nil, clerr.Syntax("invalid regex %q: %v", x.Pattern, err)
		}
		return &LiteralNode{base: base{x.Pos()}, Val: &value.Regex{Source: x.Pattern, Re: re}}, nil
	case *form.SymbolForm:
		return &SymbolNode{base: base{x.Pos()}, NS: x.NS, Name: x.Name}, nil
	case *form.VectorForm:
		items, err := analyzeAll(x.Items, ctx)
		if err != nil {
			return nil, err
		}
		return &VectorNode{base: base{x.Pos()}, Items: items}, nil
	case *form.SetForm:
		items, err := analyzeAll(x.Items, ctx)
		if err != nil {
			return nil, err
		}
		return &SetNode{base: base{x.Pos()}, Items: items}, nil
	case *form.MapForm:
		pairs, err := analyzeAll(x.Pairs, ctx)
		if err != nil {
			return nil, err
		}
		return &MapNode{base: base{x.Pos()}, Pairs: pairs}, nil
	case *form.ListForm:
		return analyzeList(x, ctx)
	default:
		return nil, clerr.Syntax("cannot analyze form %T", f)
	}
}

func analyzeAll(items []form.Form, ctx *Ctx) ([]Node, error) {
	out := make([]Node, len(items))
	for i, it := range items {
		n, err := Analyze(it, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func analyzeList(lst *form.ListForm, ctx *Ctx) (Node, error) {
	if len(lst.Items) == 0 {
		return &LiteralNode{base: base{lst.Pos()}, Val: value.EmptyList()}, nil
	}
	head, isSym := lst.Head()
	if isSym && head.NS == "" {
		switch head.Name {
		case "def":
			return analyzeDef(lst, ctx)
		case "if":
			return analyzeIf(lst, ctx)
		case "do":
			return analyzeDo(lst, ctx)
		case "let*":
			return analyzeLet(lst, ctx, false)
		case "loop*":
			return analyzeLet(lst, ctx, true)
		case "recur":
			return analyzeRecur(lst, ctx)
		case "fn*":
			return analyzeFn(lst, ctx)
		case "quote":
			return analyzeQuote(lst)
		case "var":
			return analyzeVarRef(lst)
		case "try":
			return analyzeTry(lst, ctx)
		case "throw":
			return analyzeThrow(lst, ctx)
		case "set!":
			return analyzeSetBang(lst, ctx)
		case "new":
			return analyzeNew(lst, ctx)
		case ".":
			return analyzeDotForm(lst, ctx)
		case "case*":
			return analyzeCaseStar(lst, ctx)
		case "reify":
			return analyzeReify(lst, ctx)
		case "letfn*":
			return analyzeLetfn(lst, ctx)
		case "deftype*":
			return analyzeDeftype(lst, ctx)
		}
		if head.Name != "." && strings.HasPrefix(head.Name, ".") {
			return analyzeDotSugar(lst, ctx)
		}
	}
	fnNode, err := Analyze(lst.Items[0], ctx)
	if err != nil {
		return nil, err
	}
	args, err := analyzeAll(lst.Items[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &InvokeNode{base: base{lst.Pos()}, Fn: fnNode, Args: args}, nil
}

func analyzeDef(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) < 1 {
		return nil, clerr.Arity("def requires a symbol")
	}
	sym, ok := rest[0].(*form.SymbolForm)
	if !ok {
		return nil, clerr.Syntax("def requires a symbol name")
	}
	n := &DefNode{base: base{lst.Pos()}, Name: sym.Name, Meta: map[string]value.Value{}}
	if sym.Meta() != nil {
		for i := 0; i+1 < len(sym.Meta().Pairs); i += 2 {
			k := sym.Meta().Pairs[i]
			kw, ok := k.(*form.KeywordForm)
			if !ok {
				continue
			}
			n.Meta[kw.Name] = formToValue(sym.Meta().Pairs[i+1])
		}
	}
	if len(rest) > 1 {
		init, err := Analyze(rest[1], ctx)
		if err != nil {
			return nil, err
		}
		n.Init = init
		n.HasInit = true
	}
	return n, nil
}

func analyzeIf(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) < 2 || len(rest) > 3 {
		return nil, clerr.Arity("if requires 2 or 3 forms")
	}
	test, err := Analyze(rest[0], ctx)
	if err != nil {
		return nil, err
	}
	then, err := Analyze(rest[1], ctx)
	if err != nil {
		return nil, err
	}
	var elseNode Node = &LiteralNode{Val: value.NilValue}
	if len(rest) == 3 {
		elseNode, err = Analyze(rest[2], ctx)
		if err != nil {
			return nil, err
		}
	}
	return &IfNode{base: base{lst.Pos()}, Test: test, Then: then, Else: elseNode}, nil
}

func analyzeDo(lst *form.ListForm, ctx *Ctx) (Node, error) {
	body, err := analyzeAll(lst.Items[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &DoNode{base: base{lst.Pos()}, Body: body}, nil
}

func analyzeLet(lst *form.ListForm, ctx *Ctx, isLoop bool) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) < 1 {
		return nil, clerr.Arity("let*/loop* requires a binding vector")
	}
	rawVec, ok := rest[0].(*form.VectorForm)
	if !ok || len(rawVec.Items)%2 != 0 {
		return nil, clerr.Syntax("let*/loop* requires an even-length binding vector")
	}
	vec, err := lowerBindingVector(rawVec, ctx.Gensym)
	if err != nil {
		return nil, err
	}
	n := &LetNode{base: base{lst.Pos()}, IsLoop: isLoop}
	for i := 0; i < len(vec.Items); i += 2 {
		sym, ok := vec.Items[i].(*form.SymbolForm)
		if !ok {
			return nil, clerr.Syntax("let*/loop* bindings must already be destructured to plain symbols by the analyzer's caller")
		}
		init, err := Analyze(vec.Items[i+1], ctx)
		if err != nil {
			return nil, err
		}
		n.Names = append(n.Names, sym.Name)
		n.Inits = append(n.Inits, init)
	}
	body, err := analyzeAll(rest[1:], ctx)
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

func analyzeRecur(lst *form.ListForm, ctx *Ctx) (Node, error) {
	args, err := analyzeAll(lst.Items[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &RecurNode{base: base{lst.Pos()}, Args: args}, nil
}

func analyzeFn(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	n := &FnNode{base: base{lst.Pos()}}
	if len(rest) > 0 {
		if sym, ok := rest[0].(*form.SymbolForm); ok {
			n.Name = sym.Name
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		if _, ok := rest[0].(*form.VectorForm); ok {
			ar, err := analyzeFnArity(form.List(rest...), ctx)
			if err != nil {
				return nil, err
			}
			n.Arities = append(n.Arities, ar)
			return n, nil
		}
	}
	for _, r := range rest {
		clauseLst, ok := r.(*form.ListForm)
		if !ok {
			return nil, clerr.Syntax("fn* arity clause must be a list")
		}
		ar, err := analyzeFnArity(clauseLst, ctx)
		if err != nil {
			return nil, err
		}
		n.Arities = append(n.Arities, ar)
	}
	return n, nil
}

func analyzeFnArity(clause *form.ListForm, ctx *Ctx) (*FnArity, error) {
	if len(clause.Items) < 1 {
		return nil, clerr.Syntax("fn* arity clause requires a parameter vector")
	}
	paramVec, ok := clause.Items[0].(*form.VectorForm)
	if !ok {
		return nil, clerr.Syntax("fn* arity clause requires a parameter vector")
	}
	plainItems, preBindings, err := lowerParamVector(paramVec.Items, ctx.Gensym)
	if err != nil {
		return nil, err
	}
	ar := &FnArity{}
	for i := 0; i < len(plainItems); i++ {
		sym := plainItems[i].(*form.SymbolForm)
		if sym.Name == "&" {
			ar.Variadic = true
			i++
			if i >= len(plainItems) {
				return nil, clerr.Syntax("missing rest parameter name after &")
			}
			restSym := plainItems[i].(*form.SymbolForm)
			ar.Params = append(ar.Params, restSym.Name)
			continue
		}
		ar.Params = append(ar.Params, sym.Name)
	}
	bodyForms := clause.Items[1:]
	if len(preBindings) > 0 {
		bindVecItems := []form.Form{}
		for _, p := range preBindings {
			bindVecItems = append(bindVecItems, p[0], p[1])
		}
		wrapped := append([]form.Form{form.Sym("let*"), form.Vec(bindVecItems...)}, bodyForms...)
		bodyForms = []form.Form{form.List(wrapped...)}
	}
	body, err := analyzeAll(bodyForms, ctx)
	if err != nil {
		return nil, err
	}
	ar.Body = body
	return ar, nil
}

func analyzeQuote(lst *form.ListForm) (Node, error) {
	if len(lst.Items) != 2 {
		return nil, clerr.Arity("quote requires exactly one form")
	}
	return &QuoteNode{base: base{lst.Pos()}, Val: formToValue(lst.Items[1])}, nil
}

func analyzeVarRef(lst *form.ListForm) (Node, error) {
	if len(lst.Items) != 2 {
		return nil, clerr.Arity("var requires exactly one symbol")
	}
	sym, ok := lst.Items[1].(*form.SymbolForm)
	if !ok {
		return nil, clerr.Syntax("var requires a symbol")
	}
	return &VarRefNode{base: base{lst.Pos()}, NS: sym.NS, Name: sym.Name}, nil
}

func analyzeTry(lst *form.ListForm, ctx *Ctx) (Node, error) {
	n := &TryNode{base: base{lst.Pos()}}
	var bodyForms []form.Form
	for _, item := range lst.Items[1:] {
		if clauseLst, ok := item.(*form.ListForm); ok && len(clauseLst.Items) > 0 {
			if headSym, ok := clauseLst.Items[0].(*form.SymbolForm); ok {
				if headSym.Name == "catch" {
					c, err := analyzeCatch(clauseLst, ctx)
					if err != nil {
						return nil, err
					}
					n.Catches = append(n.Catches, c)
					continue
				}
				if headSym.Name == "finally" {
					fin, err := analyzeAll(clauseLst.Items[1:], ctx)
					if err != nil {
						return nil, err
					}
					n.Finally = fin
					continue
				}
			}
		}
		bodyForms = append(bodyForms, item)
	}
	body, err := analyzeAll(bodyForms, ctx)
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

func analyzeCatch(clause *form.ListForm, ctx *Ctx) (*CatchClause, error) {
	if len(clause.Items) < 3 {
		return nil, clerr.Arity("catch requires a class symbol and a binding symbol")
	}
	classSym, ok := clause.Items[1].(*form.SymbolForm)
	if !ok {
		return nil, clerr.Syntax("catch requires a class symbol")
	}
	bindSym, ok := clause.Items[2].(*form.SymbolForm)
	if !ok {
		return nil, clerr.Syntax("catch requires a binding symbol")
	}
	body, err := analyzeAll(clause.Items[3:], ctx)
	if err != nil {
		return nil, err
	}
	return &CatchClause{ClassName: classSym.Name, Binding: bindSym.Name, Body: body}, nil
}

func analyzeThrow(lst *form.ListForm, ctx *Ctx) (Node, error) {
	if len(lst.Items) != 2 {
		return nil, clerr.Arity("throw requires exactly one form")
	}
	expr, err := Analyze(lst.Items[1], ctx)
	if err != nil {
		return nil, err
	}
	return &ThrowNode{base: base{lst.Pos()}, Expr: expr}, nil
}

func analyzeSetBang(lst *form.ListForm, ctx *Ctx) (Node, error) {
	if len(lst.Items) != 3 {
		return nil, clerr.Arity("set! requires a target and a value")
	}
	target, err := Analyze(lst.Items[1], ctx)
	if err != nil {
		return nil, err
	}
	val, err := Analyze(lst.Items[2], ctx)
	if err != nil {
		return nil, err
	}
	return &SetBangNode{base: base{lst.Pos()}, Target: target, Value: val}, nil
}

func analyzeNew(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) < 1 {
		return nil, clerr.Arity("new requires a class symbol")
	}
	classSym, ok := rest[0].(*form.SymbolForm)
	if !ok {
		return nil, clerr.Syntax("new requires a class symbol")
	}
	args, err := analyzeAll(rest[1:], ctx)
	if err != nil {
		return nil, err
	}
	name := classSym.Name
	if classSym.NS != "" {
		name = classSym.NS + "." + classSym.Name
	}
	return &NewNode{base: base{lst.Pos()}, ClassName: name, Args: args}, nil
}

// analyzeDotForm handles the canonical `(. target member arg*)` and
// `(. target (member arg*))` interop shapes.
func analyzeDotForm(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) < 2 {
		return nil, clerr.Arity(". requires a target and a member")
	}
	target, err := Analyze(rest[0], ctx)
	if err != nil {
		return nil, err
	}
	memberForm := rest[1]
	var memberName string
	var argForms []form.Form
	if memberLst, ok := memberForm.(*form.ListForm); ok && len(memberLst.Items) > 0 {
		sym, ok := memberLst.Items[0].(*form.SymbolForm)
		if !ok {
			return nil, clerr.Syntax(". member must be a symbol")
		}
		memberName = sym.Name
		argForms = memberLst.Items[1:]
	} else if sym, ok := memberForm.(*form.SymbolForm); ok {
		memberName = sym.Name
		argForms = rest[2:]
	} else {
		return nil, clerr.Syntax(". requires a symbol or (member arg*) member form")
	}
	isField := strings.HasPrefix(memberName, "-")
	if isField {
		memberName = memberName[1:]
	}
	args, err := analyzeAll(argForms, ctx)
	if err != nil {
		return nil, err
	}
	return &DotNode{base: base{lst.Pos()}, Target: target, Member: memberName, Args: args, IsField: isField}, nil
}

// analyzeDotSugar handles `(.method obj arg*)` / `(.-field obj)`.
func analyzeDotSugar(lst *form.ListForm, ctx *Ctx) (Node, error) {
	head, _ := lst.Head()
	rest := lst.Items[1:]
	if len(rest) < 1 {
		return nil, clerr.Arity("%s requires a target", head.Name)
	}
	target, err := Analyze(rest[0], ctx)
	if err != nil {
		return nil, err
	}
	isField := strings.HasPrefix(head.Name, ".-")
	member := head.Name[1:]
	if isField {
		member = head.Name[2:]
	}
	args, err := analyzeAll(rest[1:], ctx)
	if err != nil {
		return nil, err
	}
	return &DotNode{base: base{lst.Pos()}, Target: target, Member: member, Args: args, IsField: isField}, nil
}

func analyzeCaseStar(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) != 7 {
		return nil, clerr.Arity("case* requires 7 forms")
	}
	exprNode, err := Analyze(rest[0], ctx)
	if err != nil {
		return nil, err
	}
	shift, ok := rest[1].(*form.IntForm)
	if !ok {
		return nil, clerr.Syntax("case* shift must be an int")
	}
	mask, ok := rest[2].(*form.IntForm)
	if !ok {
		return nil, clerr.Syntax("case* mask must be an int")
	}
	defaultNode, err := Analyze(rest[3], ctx)
	if err != nil {
		return nil, err
	}
	mapForm, ok := rest[4].(*form.MapForm)
	if !ok {
		return nil, clerr.Syntax("case* dispatch table must be a map")
	}
	switchType, ok := rest[5].(*form.KeywordForm)
	if !ok {
		return nil, clerr.Syntax("case* switch-type must be a keyword")
	}
	testType, ok := rest[6].(*form.KeywordForm)
	if !ok {
		return nil, clerr.Syntax("case* test-type must be a keyword")
	}
	table := map[int64]*CaseBranch{}
	for i := 0; i+1 < len(mapForm.Pairs); i += 2 {
		keyForm, ok := mapForm.Pairs[i].(*form.IntForm)
		if !ok {
			return nil, clerr.Syntax("case* dispatch table keys must be ints")
		}
		branchVec, ok := mapForm.Pairs[i+1].(*form.VectorForm)
		if !ok || len(branchVec.Items) != 2 {
			return nil, clerr.Syntax("case* dispatch table values must be [test then] pairs")
		}
		testNode, err := Analyze(branchVec.Items[0], ctx)
		if err != nil {
			return nil, err
		}
		thenNode, err := Analyze(branchVec.Items[1], ctx)
		if err != nil {
			return nil, err
		}
		table[keyForm.Value] = &CaseBranch{Test: testNode, Then: thenNode}
	}
	return &CaseStarNode{
		base:       base{lst.Pos()},
		Expr:       exprNode,
		Shift:      shift.Value,
		Mask:       mask.Value,
		Default:    defaultNode,
		Table:      table,
		SwitchType: switchType.Name,
		TestEquiv:  testType.Name == "equiv",
	}, nil
}

// analyzeReify parses `(reify Proto* (method [params] body*)*)`, ignoring
// protocol-name forms (dispatch here is purely by method name, not by
// declared protocol membership -- sufficient for the single-namespace
// bootstrap this core targets).
func analyzeReify(lst *form.ListForm, ctx *Ctx) (Node, error) {
	n := &ReifyNode{base: base{lst.Pos()}, Methods: map[string]*FnNode{}}
	for _, item := range lst.Items[1:] {
		methodLst, ok := item.(*form.ListForm)
		if !ok || len(methodLst.Items) < 2 {
			continue
		}
		nameSym, ok := methodLst.Items[0].(*form.SymbolForm)
		if !ok {
			continue
		}
		fnForm := form.List(append([]form.Form{form.Sym("fn*")}, methodLst.Items[1:]...)...)
		fnNode, err := Analyze(fnForm, ctx)
		if err != nil {
			return nil, err
		}
		asFn, ok := fnNode.(*FnNode)
		if !ok {
			return nil, clerr.Syntax("reify method body did not analyze to a function")
		}
		n.Methods[nameSym.Name] = asFn
	}
	return n, nil
}

func analyzeLetfn(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) < 1 {
		return nil, clerr.Arity("letfn* requires a binding vector")
	}
	vec, ok := rest[0].(*form.VectorForm)
	if !ok {
		return nil, clerr.Syntax("letfn* requires a binding vector of name/fn pairs")
	}
	n := &LetfnNode{base: base{lst.Pos()}}
	for i := 0; i+1 < len(vec.Items); i += 2 {
		sym, ok := vec.Items[i].(*form.SymbolForm)
		if !ok {
			return nil, clerr.Syntax("letfn* bindings must be name/fn* pairs")
		}
		fnNode, err := Analyze(vec.Items[i+1], ctx)
		if err != nil {
			return nil, err
		}
		asFn, ok := fnNode.(*FnNode)
		if !ok {
			return nil, clerr.Syntax("letfn* binding value must be a fn*")
		}
		n.Names = append(n.Names, sym.Name)
		n.Fns = append(n.Fns, asFn)
	}
	body, err := analyzeAll(rest[1:], ctx)
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

func analyzeDeftype(lst *form.ListForm, ctx *Ctx) (Node, error) {
	rest := lst.Items[1:]
	if len(rest) < 2 {
		return nil, clerr.Arity("deftype* requires a name and a field vector")
	}
	nameSym, ok := rest[0].(*form.SymbolForm)
	if !ok {
		return nil, clerr.Syntax("deftype* requires a name symbol")
	}
	fieldVec, ok := rest[1].(*form.VectorForm)
	if !ok {
		return nil, clerr.Syntax("deftype* requires a field vector")
	}
	n := &DeftypeNode{base: base{lst.Pos()}, Name: nameSym.Name, Methods: map[string]*FnNode{}}
	for _, f := range fieldVec.Items {
		sym, ok := f.(*form.SymbolForm)
		if !ok {
			return nil, clerr.Syntax("deftype* fields must be symbols")
		}
		n.Fields = append(n.Fields, sym.Name)
	}
	for _, item := range rest[2:] {
		methodLst, ok := item.(*form.ListForm)
		if !ok || len(methodLst.Items) < 2 {
			continue
		}
		methodSym, ok := methodLst.Items[0].(*form.SymbolForm)
		if !ok {
			continue
		}
		fnForm := form.List(append([]form.Form{form.Sym("fn*")}, methodLst.Items[1:]...)...)
		fnNode, err := Analyze(fnForm, ctx)
		if err != nil {
			return nil, err
		}
		asFn, ok := fnNode.(*FnNode)
		if !ok {
			return nil, clerr.Syntax("deftype* method body did not analyze to a function")
		}
		n.Methods[methodSym.Name] = asFn
	}
	return n, nil
}
