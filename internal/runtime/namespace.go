// Package runtime implements spec.md section 4.4: namespaces, vars, the
// dynamic binding stack, and the process-wide Env that owns them. It sits
// above internal/value (Var, Atom, etc. are value.Value variants) and below
// internal/interp (the evaluator that actually calls these operations).
package runtime

import (
	"sort"
	"sync"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/value"
)

// Namespace is "{name: Symbol, mappings: insertion-ordered map Name->Var,
// aliases: map Sym->Sym, refers: set<Namespace>}" (spec.md section 3).
type Namespace struct {
	Name string

	mu       sync.RWMutex
	order    []string
	mappings map[string]*value.Var
	aliases  map[string]*Namespace
	refers   []*Namespace
}

func newNamespace(name string) *Namespace {
	return &Namespace{
		Name:     name,
		mappings: make(map[string]*value.Var),
		aliases:  make(map[string]*Namespace),
	}
}

// Intern either returns the existing Var or creates a new unbound one
// (spec.md section 3: "Interning a name either returns the existing Var or
// creates a new unbound one").
func (ns *Namespace) Intern(name string) *value.Var {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if v, ok := ns.mappings[name]; ok {
		return v
	}
	v := value.NewVar(ns.Name, name)
	ns.mappings[name] = v
	ns.order = append(ns.order, name)
	return v
}

// Own looks up only this namespace's own mappings (no refer fallthrough).
func (ns *Namespace) Own(name string) (*value.Var, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	v, ok := ns.mappings[name]
	return v, ok
}

// Resolve implements unqualified symbol resolution: this namespace's own
// mappings first, then each referred namespace in refer order (spec.md
// section 3).
func (ns *Namespace) Resolve(name string) (*value.Var, bool) {
	if v, ok := ns.Own(name); ok {
		return v, true
	}
	ns.mu.RLock()
	refers := append([]*Namespace(nil), ns.refers...)
	ns.mu.RUnlock()
	for _, r := range refers {
		if v, ok := r.Own(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (ns *Namespace) Refer(other *Namespace) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	for _, r := range ns.refers {
		if r == other {
			return
		}
	}
	ns.refers = append(ns.refers, other)
}

func (ns *Namespace) Alias(alias string, target *Namespace) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.aliases[alias] = target
}

func (ns *Namespace) ResolveAlias(alias string) (*Namespace, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	target, ok := ns.aliases[alias]
	return target, ok
}

// Interns returns every var this namespace interns, in intern order
// (`ns-interns`).
func (ns *Namespace) Interns() []*value.Var {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([]*value.Var, 0, len(ns.order))
	for _, n := range ns.order {
		out = append(out, ns.mappings[n])
	}
	return out
}

// Publics returns interned vars whose meta has no truthy :private entry
// (the marker `defn-`/`def ^:private` record), for `ns-publics`.
func (ns *Namespace) Publics() []*value.Var {
	var out []*value.Var
	for _, v := range ns.Interns() {
		if priv, ok := v.Meta().Get(value.Keyword{Name: "private"}); ok && value.Truthy(priv) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Env is the process-wide collection of namespaces plus dynamic-binding
// state (spec.md glossary). It owns the single cooperative thread's
// namespace table; there is deliberately no per-thread variant (spec.md
// section 5).
type Env struct {
	mu    sync.RWMutex
	nses  map[string]*Namespace
	cur   *Namespace
}

func NewEnv() *Env {
	e := &Env{nses: make(map[string]*Namespace)}
	core := e.CreateNS("clojure.core")
	e.cur = e.CreateNS("user")
	e.cur.Refer(core)
	return e
}

func (e *Env) CreateNS(name string) *Namespace {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ns, ok := e.nses[name]; ok {
		return ns
	}
	ns := newNamespace(name)
	e.nses[name] = ns
	return ns
}

func (e *Env) FindNS(name string) (*Namespace, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ns, ok := e.nses[name]
	return ns, ok
}

// InNS implements `in-ns`: switches the current namespace, creating it
// (and referring clojure.core into it) if it does not exist yet.
func (e *Env) InNS(name string) *Namespace {
	e.mu.RLock()
	_, existed := e.nses[name]
	e.mu.RUnlock()
	ns := e.CreateNS(name)
	if !existed && name != "clojure.core" {
		if core, ok := e.FindNS("clojure.core"); ok {
			ns.Refer(core)
		}
	}
	e.mu.Lock()
	e.cur = ns
	e.mu.Unlock()
	return ns
}

func (e *Env) Current() *Namespace {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur
}

// AllNames returns every registered namespace name, sorted, for
// `all-ns`-style introspection.
func (e *Env) AllNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.nses))
	for n := range e.nses {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve implements full symbol resolution: ns-qualified symbols look up
// directly (through an alias if the namespace part matches one), otherwise
// fall through to the current namespace's unqualified resolution.
func (e *Env) Resolve(ns *Namespace, symNS, symName string) (*value.Var, error) {
	if symNS == "" {
		if v, ok := ns.Resolve(symName); ok {
			return v, nil
		}
		return nil, clerr.New(clerr.KindLookup, "Unable to resolve symbol: %s", symName)
	}
	target, ok := e.FindNS(symNS)
	if !ok {
		if aliased, ok2 := ns.ResolveAlias(symNS); ok2 {
			target = aliased
		} else {
			return nil, clerr.New(clerr.KindLookup, "No such namespace: %s", symNS)
		}
	}
	if v, ok := target.Own(symName); ok {
		return v, nil
	}
	return nil, clerr.New(clerr.KindLookup, "Unable to resolve symbol: %s/%s", symNS, symName)
}

// Intern interns name into the given namespace (`intern`/def-time lookup).
func (e *Env) Intern(ns *Namespace, name string) *value.Var {
	return ns.Intern(name)
}
