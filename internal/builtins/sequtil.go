package builtins

import "github.com/clojurewasm/corelisp/internal/value"

// toSeq implements `seq`: nil/empty collections become a nil Seq, anything
// Seqable is asked for its seq view, an already-Seq value passes through.
func toSeq(v value.Value) value.Seq {
	switch x := v.(type) {
	case nil, value.Nil:
		return nil
	case value.Seqable:
		// Checked first: List/Cons/ChunkedCons/LazySeq implement both Seq
		// and Seqable, but only Seq() collapses an exhausted seq to nil the
		// way the seq contract requires.
		return x.Seq()
	case value.Seq:
		return x
	default:
		return nil
	}
}

// seqSlice drains a Seqable/Seq value into a Go slice, the common shape
// most seq-consuming builtins below need before they can loop in Go.
func seqSlice(v value.Value) []value.Value {
	s := toSeq(v)
	var out []value.Value
	for s != nil {
		out = append(out, s.First())
		s = value.Next(s.Rest())
	}
	return out
}

func sliceToList(items []value.Value) *value.List {
	l := value.EmptyList()
	for i := len(items) - 1; i >= 0; i-- {
		l = l.Conj(items[i])
	}
	return l
}

// callFn invokes any value.Fn, erroring uniformly when the callee isn't one
// -- every higher-order builtin (map, filter, reduce, ...) funnels through
// this so the "not a function" error message is consistent.
func callFn(name string, f value.Value, args []value.Value) (value.Value, error) {
	fn, ok := f.(value.Fn)
	if !ok {
		return nil, wrongType(name, f)
	}
	return fn.Call(args)
}
