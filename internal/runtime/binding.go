package runtime

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/value"
)

// PushBindings/PopBindings implement spec.md section 4.4's
// `push-thread-bindings`/`pop-thread-bindings`: "binding pushes one entry
// per bound var atomically and guarantees pop on every exit path."
// Atomicity here means "push every var before any can fail," not a lock --
// the core is single-threaded (spec.md section 5).
//
// PushBindings pushes one dynamic frame per (var, value) pair. Every var
// must already be (or become) ^:dynamic; callers are expected to have
// checked that, since only `binding`/`with-redefs`/`push-thread-bindings`
// construct this call from trusted analyzer-lowered code.
func PushBindings(vars []*value.Var, vals []value.Value) error {
	if len(vars) != len(vals) {
		return clerr.New(clerr.KindArity, "binding count mismatch")
	}
	for _, v := range vars {
		if !v.IsDynamic() {
			return clerr.New(clerr.KindIllegalArgument, "Can't dynamically bind non-dynamic var: %s/%s", v.NS, v.Name)
		}
	}
	for i, v := range vars {
		v.PushBinding(vals[i])
	}
	return nil
}

// PopBindings pops exactly the frames PushBindings pushed, in reverse
// order; callers invoke this from a `finally` so it runs on every exit
// path (spec.md section 4.4, invariant 9 in spec.md section 8).
func PopBindings(vars []*value.Var) {
	for i := len(vars) - 1; i >= 0; i-- {
		vars[i].PopBinding()
	}
}

// WithRedefsFn implements `with-redefs-fn`: runs f with each var's root
// temporarily replaced, restoring every prior root on the way out
// regardless of how f returns (spec.md section 4.4's `with-redefs`
// guarantee).
func WithRedefsFn(bindings map[*value.Var]value.Value, f func() (value.Value, error)) (value.Value, error) {
	type saved struct {
		v   *value.Var
		old value.Value
		had bool
	}
	var prior []saved
	for v, nv := range bindings {
		old, err := v.Deref()
		had := err == nil
		prior = append(prior, saved{v: v, old: old, had: had})
		v.BindRoot(nv)
	}
	defer func() {
		for _, s := range prior {
			if s.had {
				s.v.BindRoot(s.old)
			}
		}
	}()
	return f()
}

// Bound reports `bound?`: whether every var has a root or an active
// dynamic binding.
func Bound(vars ...*value.Var) bool {
	for _, v := range vars {
		if !v.IsBound() {
			return false
		}
	}
	return true
}
