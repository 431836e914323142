package corelib

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// Entry is one name/arity/fn triple, the same shape internal/builtins uses
// (internal/builtins/builtins.go's entry) -- each corelib sub-namespace is
// installed the same way clojure.core's concern files are.
type Entry struct {
	Name string
	Ar   value.Arity
	Fn   func(args []value.Value) (value.Value, error)
}

func Fixed(n int) value.Arity { return value.Arity{Fixed: []int{n}} }

func FixedRange(lo, hi int) value.Arity {
	ar := value.Arity{}
	for i := lo; i <= hi; i++ {
		ar.Fixed = append(ar.Fixed, i)
	}
	return ar
}

func VariadicFrom(min int) value.Arity { return value.Arity{Variadic: true, MinVariadic: min} }

func Install(ns *runtime.Namespace, entries []Entry) {
	for _, e := range entries {
		v := ns.Intern(e.Name)
		v.BindRoot(&value.Builtin{Name: e.Name, Ar: e.Ar, Fn: e.Fn})
	}
}

// ToSeq mirrors internal/builtins/sequtil.go's toSeq: Seqable is checked
// before Seq since a concrete seq type (List, Cons, LazySeq) implements
// both, and only Seqable.Seq() collapses an exhausted seq to nil.
func ToSeq(v value.Value) value.Seq {
	switch x := v.(type) {
	case nil, value.Nil:
		return nil
	case value.Seqable:
		return x.Seq()
	case value.Seq:
		return x
	default:
		return nil
	}
}

// ToSlice drains any seqable Value into a Go slice, preserving a Vector's
// random-access order without detouring through a seq walk.
func ToSlice(v value.Value) []value.Value {
	if vec, ok := v.(*value.Vector); ok {
		return append([]value.Value{}, vec.Items()...)
	}
	var out []value.Value
	for s := ToSeq(v); s != nil; s = ToSeq(s.Rest()) {
		out = append(out, s.First())
	}
	return out
}

// Call invokes any value.Fn, the shared entry point every higher-order
// corelib function (walk, set ops needing a predicate, test assertions)
// funnels through, matching internal/builtins/sequtil.go's callFn.
func Call(name string, f value.Value, args []value.Value) (value.Value, error) {
	fn, ok := f.(value.Fn)
	if !ok {
		return nil, clerr.Type("%s: wrong type %s", name, f.Type())
	}
	return fn.Call(args)
}
