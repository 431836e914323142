package interp

import (
	"github.com/clojurewasm/corelisp/internal/analyzer"
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// Interp carries the namespace registry a running evaluation needs for var
// resolution, def side effects, and dynamic-binding push/pop, mirroring
// the way the teacher's Evaluator struct holds a GlobalEnv alongside the
// per-call lexical Environment it's handed (internal/evaluator/evaluator.go).
type Interp struct {
	RtEnv *runtime.Env
}

func New(rtEnv *runtime.Env) *Interp {
	return &Interp{RtEnv: rtEnv}
}

// Eval walks one analyzed Node. Constructs that establish a recur target
// (loop*, fn* arities) loop internally on *recurSignal instead of
// recursing, the trampoline spec.md section 4.6 requires.
func (it *Interp) Eval(node analyzer.Node, env *Env) (value.Value, error) {
	switch n := node.(type) {
	case *analyzer.LiteralNode:
		return n.Val, nil
	case *analyzer.QuoteNode:
		return n.Val, nil
	case *analyzer.SymbolNode:
		return it.evalSymbol(n, env)
	case *analyzer.VectorNode:
		items := make([]value.Value, len(n.Items))
		for i, it2 := range n.Items {
			v, err := it.Eval(it2, env)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.NewVector(items), nil
	case *analyzer.SetNode:
		items := make([]value.Value, len(n.Items))
		for i, it2 := range n.Items {
			v, err := it.Eval(it2, env)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.NewSet(items), nil
	case *analyzer.MapNode:
		pairs := make([][2]value.Value, 0, len(n.Pairs)/2)
		for i := 0; i+1 < len(n.Pairs); i += 2 {
			k, err := it.Eval(n.Pairs[i], env)
			if err != nil {
				return nil, err
			}
			v, err := it.Eval(n.Pairs[i+1], env)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, [2]value.Value{k, v})
		}
		return value.NewArrayMap(pairs), nil
	case *analyzer.IfNode:
		test, err := it.Eval(n.Test, env)
		if err != nil {
			return nil, err
		}
		if value.Truthy(test) {
			return it.Eval(n.Then, env)
		}
		return it.Eval(n.Else, env)
	case *analyzer.DoNode:
		return it.evalBody(n.Body, env)
	case *analyzer.LetNode:
		return it.evalLet(n, env)
	case *analyzer.RecurNode:
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := it.Eval(a, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &recurSignal{args: args}, nil
	case *analyzer.FnNode:
		return it.evalFn(n, env), nil
	case *analyzer.DefNode:
		return it.evalDef(n, env)
	case *analyzer.VarRefNode:
		v, err := it.RtEnv.Resolve(it.RtEnv.Current(), n.NS, n.Name)
		if err != nil {
			return nil, err
		}
		return v, nil
	case *analyzer.TryNode:
		return it.evalTry(n, env)
	case *analyzer.ThrowNode:
		v, err := it.Eval(n.Expr, env)
		if err != nil {
			return nil, err
		}
		return nil, throwValue(v)
	case *analyzer.SetBangNode:
		return it.evalSetBang(n, env)
	case *analyzer.NewNode:
		return it.evalNew(n, env)
	case *analyzer.DotNode:
		return it.evalDot(n, env)
	case *analyzer.CaseStarNode:
		return it.evalCaseStar(n, env)
	case *analyzer.ReifyNode:
		return it.evalReify(n, env), nil
	case *analyzer.LetfnNode:
		return it.evalLetfn(n, env)
	case *analyzer.DeftypeNode:
		return it.evalDeftype(n, env)
	case *analyzer.InvokeNode:
		return it.evalInvoke(n, env)
	default:
		return nil, clerr.Syntax("evaluator: unhandled node %T", node)
	}
}

// evalBody evaluates a sequence like `do`: discard all but the last,
// return the last's value unwrapped (propagating a *recurSignal up
// verbatim so tail position threads correctly through do/if/let).
func (it *Interp) evalBody(body []analyzer.Node, env *Env) (value.Value, error) {
	if len(body) == 0 {
		return value.NilValue, nil
	}
	for _, n := range body[:len(body)-1] {
		if _, err := it.Eval(n, env); err != nil {
			return nil, err
		}
	}
	return it.Eval(body[len(body)-1], env)
}

func (it *Interp) evalSymbol(n *analyzer.SymbolNode, env *Env) (value.Value, error) {
	if n.NS == "" {
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
	}
	v, err := it.RtEnv.Resolve(it.RtEnv.Current(), n.NS, n.Name)
	if err != nil {
		return nil, err
	}
	return v.Deref()
}

func (it *Interp) evalLet(n *analyzer.LetNode, env *Env) (value.Value, error) {
	loopEnv := NewEnv(env)
	for i, initNode := range n.Inits {
		v, err := it.Eval(initNode, loopEnv)
		if err != nil {
			return nil, err
		}
		loopEnv.Define(n.Names[i], v)
	}
	if !n.IsLoop {
		return it.evalBody(n.Body, loopEnv)
	}
	for {
		result, err := it.evalBody(n.Body, loopEnv)
		if err != nil {
			return nil, err
		}
		rs, ok := result.(*recurSignal)
		if !ok {
			return result, nil
		}
		if len(rs.args) != len(n.Names) {
			return nil, clerr.Arity("recur argument count (%d) does not match loop* binding count (%d)", len(rs.args), len(n.Names))
		}
		next := NewEnv(env)
		for i, name := range n.Names {
			next.Define(name, rs.args[i])
		}
		loopEnv = next
	}
}

func (it *Interp) evalFn(n *analyzer.FnNode, env *Env) value.Value {
	closureEnv := NewEnv(env)
	c := &Closure{it: it, Name: n.Name, Arities: n.Arities, Env: closureEnv}
	if n.Name != "" {
		closureEnv.Define(n.Name, c)
	}
	return c
}

func (it *Interp) evalDef(n *analyzer.DefNode, env *Env) (value.Value, error) {
	v := it.RtEnv.Intern(it.RtEnv.Current(), n.Name)
	if n.HasInit {
		val, err := it.Eval(n.Init, env)
		if err != nil {
			return nil, err
		}
		if c, ok := val.(*Closure); ok && c.Name == "" {
			c.Name = n.Name
		}
		v.BindRoot(val)
	}
	if len(n.Meta) > 0 {
		pairs := make([][2]value.Value, 0, len(n.Meta))
		for k, mv := range n.Meta {
			pairs = append(pairs, [2]value.Value{value.Keyword{Name: k}, mv})
			if k == "macro" && value.Truthy(mv) {
				v.SetMacro(true)
			}
			if k == "dynamic" && value.Truthy(mv) {
				v.SetDynamic(true)
			}
		}
		v.SetMeta(value.NewArrayMap(pairs))
	}
	return v, nil
}

func (it *Interp) evalInvoke(n *analyzer.InvokeNode, env *Env) (value.Value, error) {
	fnVal, err := it.Eval(n.Fn, env)
	if err != nil {
		return nil, err
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := it.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return applyValue(fnVal, args)
}

// applyValue implements spec.md section 4.6.2: a closure/builtin dispatches
// normally; a keyword/map/set/symbol used in function position behaves
// like a lookup.
func applyValue(fnVal value.Value, args []value.Value) (value.Value, error) {
	switch f := fnVal.(type) {
	case value.Fn:
		return f.Call(args)
	case value.Keyword:
		return lookupGet(args[0], f, args[1:])
	case value.Map:
		return lookupGet(f, args[0], args[1:])
	case *value.HashSet:
		if len(args) < 1 {
			return nil, clerr.Arity("wrong number of arguments to set lookup")
		}
		if f.Contains(args[0]) {
			return args[0], nil
		}
		return value.NilValue, nil
	case value.Symbol:
		return lookupGet(args[0], f, args[1:])
	default:
		return nil, clerr.Type("%s is not a function", fnVal.String())
	}
}

func lookupGet(coll, key value.Value, rest []value.Value) (value.Value, error) {
	m, ok := coll.(value.Map)
	if !ok {
		if len(rest) > 0 {
			return rest[0], nil
		}
		return value.NilValue, nil
	}
	if v, found := m.Get(key); found {
		return v, nil
	}
	if len(rest) > 0 {
		return rest[0], nil
	}
	return value.NilValue, nil
}

func (it *Interp) evalSetBang(n *analyzer.SetBangNode, env *Env) (value.Value, error) {
	val, err := it.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	switch t := n.Target.(type) {
	case *analyzer.SymbolNode:
		v, err := it.RtEnv.Resolve(it.RtEnv.Current(), t.NS, t.Name)
		if err != nil {
			return nil, err
		}
		if err := v.SetDynamicTop(val); err != nil {
			return nil, err
		}
		return val, nil
	case *analyzer.DotNode:
		return nil, clerr.New(clerr.KindUnsupportedOperation, "set! on host fields is not supported")
	default:
		return nil, clerr.Syntax("set! target must be a var or a field access")
	}
}

func (it *Interp) evalLetfn(n *analyzer.LetfnNode, env *Env) (value.Value, error) {
	frame := NewEnv(env)
	for i, fnNode := range n.Fns {
		c := &Closure{it: it, Name: n.Names[i], Arities: fnNode.Arities, Env: frame}
		frame.Define(n.Names[i], c)
	}
	return it.evalBody(n.Body, frame)
}
