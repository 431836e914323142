package interp

import (
	"github.com/clojurewasm/corelisp/internal/analyzer"
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/value"
)

// ThrownValue wraps an arbitrary value thrown via (throw expr) when expr is
// not already a clerr.Error -- spec.md section 4.6.3: "if expr is a
// map/record with message+data, use those [for the exception object]",
// otherwise the raw value is rethrown as-is to the catching clause.
type ThrownValue struct {
	Val value.Value
}

func (t *ThrownValue) Error() string { return t.Val.String() }

func throwValue(v value.Value) error {
	if e, ok := v.(*clerr.Error); ok {
		return e
	}
	return &ThrownValue{Val: v}
}

func (it *Interp) evalTry(n *analyzer.TryNode, env *Env) (value.Value, error) {
	result, err := it.evalBody(n.Body, env)
	if err != nil {
		for _, c := range n.Catches {
			if !matchesCatch(err, c.ClassName) {
				continue
			}
			catchEnv := NewEnv(env)
			catchEnv.Define(c.Binding, errToValue(err))
			result, err = it.evalBody(c.Body, catchEnv)
			break
		}
	}
	if len(n.Finally) > 0 {
		if _, ferr := it.evalBody(n.Finally, env); ferr != nil {
			return nil, ferr
		}
	}
	return result, err
}

// matchesCatch implements spec.md section 4.6.3's catch-class matching
// against clerr.Error.Kind (Exception/Throwable/Error catch everything;
// the rest match one specific kind).
func matchesCatch(err error, className string) bool {
	switch className {
	case "Exception", "Throwable", "Error", "_", "":
		return true
	case "ArithmeticException", "ArithmeticError":
		_, ok := clerr.As(err, clerr.KindArithmetic)
		return ok
	case "AssertionError":
		_, ok := clerr.As(err, clerr.KindAssertion)
		return ok
	case "IllegalArgumentException":
		_, ok := clerr.As(err, clerr.KindIllegalArgument)
		return ok
	case "UnsupportedOperationException":
		_, ok := clerr.As(err, clerr.KindUnsupportedOperation)
		return ok
	case "ExceptionInfo":
		if _, ok := clerr.As(err, clerr.KindUser); ok {
			return true
		}
		if _, ok := err.(*ThrownValue); ok {
			return true
		}
		return false
	default:
		return false
	}
}

// errToValue produces the value bound to a catch clause's binding symbol: a
// raw thrown value is rebound verbatim (Clojure rethrows the object itself),
// a clerr.Error is rendered as an exception-info-shaped map so ex-message/
// ex-data/ex-cause can read it uniformly.
func errToValue(err error) value.Value {
	if tv, ok := err.(*ThrownValue); ok {
		return tv.Val
	}
	if e, ok := err.(*clerr.Error); ok {
		pairs := [][2]value.Value{
			{value.Keyword{Name: "message"}, value.String(e.Message)},
			{value.Keyword{Name: "kind"}, value.Keyword{Name: string(e.Kind)}},
		}
		if data, ok := e.Data.(value.Value); ok && data != nil {
			pairs = append(pairs, [2]value.Value{value.Keyword{Name: "data"}, data})
		} else {
			pairs = append(pairs, [2]value.Value{value.Keyword{Name: "data"}, value.NilValue})
		}
		if e.Cause != nil {
			pairs = append(pairs, [2]value.Value{value.Keyword{Name: "cause"}, errToValue(e.Cause)})
		}
		return value.NewArrayMap(pairs)
	}
	return value.String(err.Error())
}
