// Package interp implements spec.md section 4.6's evaluator: a tree-walk
// over analyzer.Node that enforces the recur trampoline (constant stack),
// multi-arity/variadic closures, try/catch/finally, and interop.
package interp

import "github.com/clojurewasm/corelisp/internal/value"

// Env is the lexical scope chain a closure captures, separate from the
// runtime.Namespace var table (spec.md section 4.4) it falls back to for
// unqualified symbols with no local binding. Grounded on the teacher's
// Environment (internal/evaluator/environment.go): map + outer pointer.
// The teacher guards its store with a mutex for concurrent goroutines;
// this core's cooperative single-threaded model (spec.md section 5) never
// shares an Env across a boundary that needs one, so the lock is dropped.
type Env struct {
	store map[string]value.Value
	outer *Env
}

func NewEnv(outer *Env) *Env {
	return &Env{store: make(map[string]value.Value), outer: outer}
}

// Define binds name in this frame, shadowing any outer binding.
func (e *Env) Define(name string, v value.Value) {
	e.store[name] = v
}

func (e *Env) Get(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.outer {
		if v, ok := cur.store[name]; ok {
			return v, true
		}
	}
	return nil, false
}
