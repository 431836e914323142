package value

import "github.com/clojurewasm/corelisp/internal/clerr"

// Var is the named, rebindable slot owned by a namespace (spec.md section
// 4.4 glossary). The core is single-threaded cooperative (spec.md section
// 5), so the dynamic binding stack is a plain per-var slice rather than a
// thread-local map: push-thread-bindings/pop-thread-bindings just push and
// pop this slice.
type Var struct {
	NS      string
	Name    string
	root    Value
	bound   bool
	dynamic bool
	macro   bool
	meta    Map
	stack   []Value
}

func NewVar(ns, name string) *Var {
	return &Var{NS: ns, Name: name, meta: EmptyArrayMap()}
}

func NewVarWithRoot(ns, name string, root Value) *Var {
	v := NewVar(ns, name)
	v.BindRoot(root)
	return v
}

func (v *Var) Type() Type     { return VarType }
func (v *Var) String() string { return "#'" + v.NS + "/" + v.Name }
func (v *Var) Hash() uint32   { return mixNameHash(0x1a4, v.NS, v.Name) }

func (v *Var) IsDynamic() bool { return v.dynamic }
func (v *Var) SetDynamic(b bool) { v.dynamic = b }
func (v *Var) IsMacro() bool     { return v.macro }
func (v *Var) SetMacro(b bool)   { v.macro = b }
func (v *Var) Meta() Map         { return v.meta }
func (v *Var) SetMeta(m Map)     { v.meta = m }
func (v *Var) IsBound() bool     { return v.bound || len(v.stack) > 0 }

// BindRoot sets the root value directly (used by `def` and `with-redefs`).
func (v *Var) BindRoot(val Value) {
	v.root = val
	v.bound = true
}

// Deref implements spec.md's "dereferencing an unbound var signals an
// error" invariant, reading the top dynamic binding if one is pushed.
func (v *Var) Deref() (Value, error) {
	if len(v.stack) > 0 {
		return v.stack[len(v.stack)-1], nil
	}
	if !v.bound {
		return nil, clerr.New(clerr.KindLookup, "Unbound var: %s/%s", v.NS, v.Name)
	}
	return v.root, nil
}

// MustDeref is Deref without the unbound check, used by analyzer-time
// checks that already validated boundness.
func (v *Var) MustDeref() Value {
	val, err := v.Deref()
	if err != nil {
		return Nil{}
	}
	return val
}

// PushBinding pushes a new dynamic frame (push-thread-bindings); only
// meaningful for vars declared ^:dynamic.
func (v *Var) PushBinding(val Value) {
	v.stack = append(v.stack, val)
}

// PopBinding pops the most recent dynamic frame (pop-thread-bindings);
// callers are responsible for pairing this with PushBinding inside a
// try/finally so it runs on every exit path (spec.md section 4.4).
func (v *Var) PopBinding() {
	if len(v.stack) == 0 {
		return
	}
	v.stack = v.stack[:len(v.stack)-1]
}

// SetDynamicTop implements `set!` inside a binding frame: it mutates only
// the top of the stack, never the root (spec.md section 3 invariants).
func (v *Var) SetDynamicTop(val Value) error {
	if len(v.stack) == 0 {
		return clerr.New(clerr.KindIllegalArgument, "Can't change/establish root binding of: %s with set", v.Name)
	}
	v.stack[len(v.stack)-1] = val
	return nil
}

// Set implements `var-set`: mutates the top dynamic frame if one is
// pushed and otherwise returns an error, leaving the root untouched,
// matching Clojure's var-set (legal only when thread-bound).
func (v *Var) Set(val Value) error {
	if len(v.stack) > 0 {
		v.stack[len(v.stack)-1] = val
		return nil
	}
	return clerr.New(clerr.KindIllegalArgument, "Can't change/establish root binding of: %s with var-set unless binding", v.Name)
}
