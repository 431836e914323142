// Package builtins implements spec.md section 6.3's `clojure.core` function
// surface: every builtin is an ordinary *value.Builtin interned into the
// clojure.core namespace, called through the same value.Fn.Call path a
// Closure is (internal/interp never special-cases a builtin).
package builtins

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/replcfg"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// entry is one name/arity/fn triple, grounded on the teacher's
// builtins table shape (internal/evaluator/builtins.go: a flat
// map[string]*Builtin assembled from several builtins_*.go files grouped by
// concern) -- this package keeps the same per-concern file split
// (arith.go, seqs.go, coll.go, ...) and one Install per file.
type entry struct {
	name string
	ar   value.Arity
	fn   func(args []value.Value) (value.Value, error)
}

func fixed(n int) value.Arity { return value.Arity{Fixed: []int{n}} }

func fixedRange(lo, hi int) value.Arity {
	ar := value.Arity{}
	for i := lo; i <= hi; i++ {
		ar.Fixed = append(ar.Fixed, i)
	}
	return ar
}

func variadicFrom(min int) value.Arity {
	return value.Arity{Variadic: true, MinVariadic: min}
}

func anyArity() value.Arity { return value.Arity{Variadic: true, MinVariadic: 0} }

func install(core *runtime.Namespace, entries []entry) {
	for _, e := range entries {
		v := core.Intern(e.name)
		v.BindRoot(&value.Builtin{Name: e.name, Ar: e.ar, Fn: e.fn})
	}
}

// Install interns every clojure.core builtin this package provides into the
// env's clojure.core namespace. Called once at bootstrap, before any .clj
// source is read (spec.md section 6.1).
func Install(rt *runtime.Env) {
	core := rt.CreateNS("clojure.core")
	installArith(core)
	installPredicates(core)
	installSeqs(core)
	installColl(core)
	installFns(core)
	installPrint(core)
	installMutable(core)
	installExInfo(core)
	installMeta(core)
	installNS(core, rt)
	installMisc(core)
	replcfg.Install(core)
	installPPrint(core)
	installCLFormat(core)
}

func wrongType(fname string, v value.Value) error {
	return clerr.Type("%s: wrong type %s", fname, v.Type())
}

func argN(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.NilValue
}
