package interp

import (
	"github.com/clojurewasm/corelisp/internal/analyzer"
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/value"
)

// recurSignal is what a tail-position (recur ...) evaluates to; it is
// caught by the nearest enclosing loop*/fn* arity, never escapes past it
// for well-formed programs (spec.md section 4.6 requires recur only in
// tail position; this evaluator does not verify that at analysis time,
// it only implements the jump -- a misplaced recur surfaces as a type
// error at its use site instead of a dedicated compile-time diagnostic).
type recurSignal struct {
	args []value.Value
}

func (r *recurSignal) Type() value.Type { return "RECUR" }
func (r *recurSignal) String() string   { return "#<recur>" }
func (r *recurSignal) Hash() uint32     { return 0 }

// Closure is a fn* value: a captured lexical Env plus one or more arities
// dispatched by argument count (spec.md section 4.6's fn* contract).
type Closure struct {
	it      *Interp
	Name    string
	Arities []*analyzer.FnArity
	Env     *Env
}

func (c *Closure) Type() value.Type { return value.FnType }
func (c *Closure) String() string {
	if c.Name != "" {
		return "#<fn " + c.Name + ">"
	}
	return "#<fn>"
}
func (c *Closure) Hash() uint32 { return value.Hash(c) }

func (c *Closure) Arity() value.Arity {
	var ar value.Arity
	for _, a := range c.Arities {
		if a.Variadic {
			ar.Variadic = true
			ar.MinVariadic = len(a.Params) - 1
		} else {
			ar.Fixed = append(ar.Fixed, len(a.Params))
		}
	}
	return ar
}

func selectArity(arities []*analyzer.FnArity, n int) *analyzer.FnArity {
	var variadic *analyzer.FnArity
	for _, a := range arities {
		if a.Variadic {
			variadic = a
			continue
		}
		if len(a.Params) == n {
			return a
		}
	}
	if variadic != nil && n >= len(variadic.Params)-1 {
		return variadic
	}
	return nil
}

func (c *Closure) Call(args []value.Value) (value.Value, error) {
	arity := selectArity(c.Arities, len(args))
	if arity == nil {
		return nil, clerr.Arity("wrong number of arguments (%d) passed to %s", len(args), c.String())
	}
	callEnv := NewEnv(c.Env)
	bindArity(callEnv, arity, args)
	for {
		result, err := c.it.evalBody(arity.Body, callEnv)
		if err != nil {
			return nil, err
		}
		rs, ok := result.(*recurSignal)
		if !ok {
			return result, nil
		}
		if len(rs.args) != len(arity.Params) {
			return nil, clerr.Arity("recur argument count (%d) does not match fn* arity (%d)", len(rs.args), len(arity.Params))
		}
		callEnv = NewEnv(c.Env)
		bindArityRecur(callEnv, arity, rs.args)
	}
}

// bindArity handles an external call: extra trailing args are spread into
// a fresh seq for the variadic rest parameter.
func bindArity(env *Env, arity *analyzer.FnArity, args []value.Value) {
	if arity.Variadic {
		fixedCount := len(arity.Params) - 1
		for i := 0; i < fixedCount; i++ {
			env.Define(arity.Params[i], args[i])
		}
		env.Define(arity.Params[fixedCount], restSeq(args[fixedCount:]))
		return
	}
	for i, p := range arity.Params {
		env.Define(p, args[i])
	}
}

// bindArityRecur handles a (recur ...) continuation: args line up 1:1 with
// Params, the rest parameter's value is already the seq recur built, not a
// spread tail to wrap again.
func bindArityRecur(env *Env, arity *analyzer.FnArity, args []value.Value) {
	for i, p := range arity.Params {
		env.Define(p, args[i])
	}
}

func restSeq(args []value.Value) value.Value {
	s := value.SeqFromSlice(args)
	if s == nil {
		return value.NilValue
	}
	return s
}
