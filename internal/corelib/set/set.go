// Package set implements the clojure.set namespace: union/intersection/
// difference/select/project/rename/index/map-invert/subset?/superset?,
// all built on value.HashSet/value.Map the same way internal/builtins/
// coll.go's assoc/dissoc/conj work the persistent collections directly
// rather than through a seq detour.
package set

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func asSet(v value.Value) (*value.HashSet, error) {
	s, ok := v.(*value.HashSet)
	if !ok {
		return nil, clerr.Type("clojure.set: wrong type %s", v.Type())
	}
	return s, nil
}

func union(sets []*value.HashSet) *value.HashSet {
	out := value.EmptySet()
	for _, s := range sets {
		for _, e := range s.Elements() {
			out = out.Conj(e)
		}
	}
	return out
}

func intersection(sets []*value.HashSet) *value.HashSet {
	if len(sets) == 0 {
		return value.EmptySet()
	}
	out := value.EmptySet()
	for _, e := range sets[0].Elements() {
		inAll := true
		for _, s := range sets[1:] {
			if !s.Contains(e) {
				inAll = false
				break
			}
		}
		if inAll {
			out = out.Conj(e)
		}
	}
	return out
}

func difference(first *value.HashSet, rest []*value.HashSet) *value.HashSet {
	out := first
	for _, s := range rest {
		for _, e := range s.Elements() {
			out = out.Disj(e)
		}
	}
	return out
}

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.set")
	corelib.Install(ns, []corelib.Entry{
		{Name: "union", Ar: corelib.VariadicFrom(0), Fn: func(a []value.Value) (value.Value, error) {
			sets := make([]*value.HashSet, len(a))
			for i, v := range a {
				s, err := asSet(v)
				if err != nil {
					return nil, err
				}
				sets[i] = s
			}
			return union(sets), nil
		}},
		{Name: "intersection", Ar: corelib.VariadicFrom(1), Fn: func(a []value.Value) (value.Value, error) {
			sets := make([]*value.HashSet, len(a))
			for i, v := range a {
				s, err := asSet(v)
				if err != nil {
					return nil, err
				}
				sets[i] = s
			}
			return intersection(sets), nil
		}},
		{Name: "difference", Ar: corelib.VariadicFrom(1), Fn: func(a []value.Value) (value.Value, error) {
			first, err := asSet(a[0])
			if err != nil {
				return nil, err
			}
			rest := make([]*value.HashSet, len(a)-1)
			for i, v := range a[1:] {
				s, err := asSet(v)
				if err != nil {
					return nil, err
				}
				rest[i] = s
			}
			return difference(first, rest), nil
		}},
		{Name: "select", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			s, err := asSet(a[1])
			if err != nil {
				return nil, err
			}
			out := value.EmptySet()
			for _, e := range s.Elements() {
				r, err := corelib.Call("select", a[0], []value.Value{e})
				if err != nil {
					return nil, err
				}
				if truthy(r) {
					out = out.Conj(e)
				}
			}
			return out, nil
		}},
		{Name: "project", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			s, err := asSet(a[0])
			if err != nil {
				return nil, err
			}
			ks, ok := a[1].(*value.Vector)
			if !ok {
				return nil, clerr.Type("project: wrong type %s", a[1].Type())
			}
			out := value.EmptySet()
			for _, e := range s.Elements() {
				m, ok := e.(value.Map)
				if !ok {
					continue
				}
				proj := value.Map(value.EmptyArrayMap())
				for _, k := range ks.Items() {
					if v, ok := m.Get(k); ok {
						proj = proj.Assoc(k, v)
					}
				}
				out = out.Conj(proj)
			}
			return out, nil
		}},
		{Name: "rename-keys", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, clerr.Type("rename-keys: wrong type %s", a[0].Type())
			}
			kmap, ok := a[1].(value.Map)
			if !ok {
				return nil, clerr.Type("rename-keys: wrong type %s", a[1].Type())
			}
			out := value.Map(value.EmptyArrayMap())
			for _, p := range m.Items() {
				k := p[0]
				if nk, ok := kmap.Get(k); ok {
					k = nk
				}
				out = out.Assoc(k, p[1])
			}
			return out, nil
		}},
		{Name: "rename", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			s, err := asSet(a[0])
			if err != nil {
				return nil, err
			}
			kmap, ok := a[1].(value.Map)
			if !ok {
				return nil, clerr.Type("rename: wrong type %s", a[1].Type())
			}
			out := value.EmptySet()
			for _, e := range s.Elements() {
				m, ok := e.(value.Map)
				if !ok {
					out = out.Conj(e)
					continue
				}
				renamed := value.Map(value.EmptyArrayMap())
				for _, p := range m.Items() {
					k := p[0]
					if nk, ok := kmap.Get(k); ok {
						k = nk
					}
					renamed = renamed.Assoc(k, p[1])
				}
				out = out.Conj(renamed)
			}
			return out, nil
		}},
		{Name: "map-invert", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, clerr.Type("map-invert: wrong type %s", a[0].Type())
			}
			out := value.Map(value.EmptyArrayMap())
			for _, p := range m.Items() {
				out = out.Assoc(p[1], p[0])
			}
			return out, nil
		}},
		{Name: "subset?", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			sub, err := asSet(a[0])
			if err != nil {
				return nil, err
			}
			sup, err := asSet(a[1])
			if err != nil {
				return nil, err
			}
			for _, e := range sub.Elements() {
				if !sup.Contains(e) {
					return value.Bool(false), nil
				}
			}
			return value.Bool(true), nil
		}},
		{Name: "superset?", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			sup, err := asSet(a[0])
			if err != nil {
				return nil, err
			}
			sub, err := asSet(a[1])
			if err != nil {
				return nil, err
			}
			for _, e := range sub.Elements() {
				if !sup.Contains(e) {
					return value.Bool(false), nil
				}
			}
			return value.Bool(true), nil
		}},
		{Name: "index", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			s, err := asSet(a[0])
			if err != nil {
				return nil, err
			}
			ks, ok := a[1].(*value.Vector)
			if !ok {
				return nil, clerr.Type("index: wrong type %s", a[1].Type())
			}
			out := value.Map(value.EmptyArrayMap())
			for _, e := range s.Elements() {
				m, ok := e.(value.Map)
				if !ok {
					continue
				}
				key := value.Map(value.EmptyArrayMap())
				for _, k := range ks.Items() {
					if v, ok := m.Get(k); ok {
						key = key.Assoc(k, v)
					}
				}
				existing, ok := out.Get(key)
				var grp *value.HashSet
				if ok {
					grp = existing.(*value.HashSet)
				} else {
					grp = value.EmptySet()
				}
				out = out.Assoc(key, grp.Conj(e))
			}
			return out, nil
		}},
	})
}

func truthy(v value.Value) bool {
	switch x := v.(type) {
	case value.Nil:
		return false
	case value.Bool:
		return bool(x)
	default:
		return true
	}
}
