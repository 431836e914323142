// Package walk implements the clojure.walk namespace: walk/prewalk/postwalk
// and their *-replace/keywordize-keys/stringify-keys helpers, a generic
// tree traversal over the persistent collections the same shape
// internal/corelib/template's substitute uses, except each node here is
// handed to a user function rather than a fixed substitution map.
package walk

import (
	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// rebuildChildren applies f to every immediate child of v and reassembles
// the same collection type, leaving scalars untouched.
func rebuildChildren(f func(value.Value) (value.Value, error), v value.Value) (value.Value, error) {
	switch x := v.(type) {
	case *value.List, value.Seq:
		items := corelib.ToSlice(x)
		out := make([]value.Value, len(items))
		for i, it := range items {
			r, err := f(it)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return value.NewListFrom(out), nil
	case *value.Vector:
		items := x.Items()
		out := make([]value.Value, len(items))
		for i, it := range items {
			r, err := f(it)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return value.NewVector(out), nil
	case *value.HashSet:
		els := x.Elements()
		out := make([]value.Value, len(els))
		for i, it := range els {
			r, err := f(it)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return value.NewSet(out), nil
	case value.Map:
		out := value.Map(value.EmptyArrayMap())
		for _, p := range x.Items() {
			k, err := f(p[0])
			if err != nil {
				return nil, err
			}
			val, err := f(p[1])
			if err != nil {
				return nil, err
			}
			out = out.Assoc(k, val)
		}
		return out, nil
	default:
		return v, nil
	}
}

func isColl(v value.Value) bool {
	switch v.(type) {
	case *value.List, value.Seq, *value.Vector, *value.HashSet, value.Map:
		return true
	default:
		return false
	}
}

// walk mirrors clojure.walk/walk exactly: inner is applied to each
// immediate child (not walk itself -- callers wanting recursion pass
// something like (partial prewalk f) as inner, the way prewalk/postwalk
// below do by hand instead of going through this generic entry point),
// then outer is applied to the rebuilt form.
func walk(inner, outer value.Value, form value.Value) (value.Value, error) {
	if isColl(form) {
		callInner := func(v value.Value) (value.Value, error) {
			return corelib.Call("walk", inner, []value.Value{v})
		}
		rebuilt, err := rebuildChildren(callInner, form)
		if err != nil {
			return nil, err
		}
		return corelib.Call("walk", outer, []value.Value{rebuilt})
	}
	return corelib.Call("walk", outer, []value.Value{form})
}

func prewalk(f, form value.Value) (value.Value, error) {
	applied, err := corelib.Call("prewalk", f, []value.Value{form})
	if err != nil {
		return nil, err
	}
	if !isColl(applied) {
		return applied, nil
	}
	return rebuildChildren(func(v value.Value) (value.Value, error) {
		return prewalk(f, v)
	}, applied)
}

func postwalk(f, form value.Value) (value.Value, error) {
	if isColl(form) {
		rebuilt, err := rebuildChildren(func(v value.Value) (value.Value, error) {
			return postwalk(f, v)
		}, form)
		if err != nil {
			return nil, err
		}
		return corelib.Call("postwalk", f, []value.Value{rebuilt})
	}
	return corelib.Call("postwalk", f, []value.Value{form})
}

func keywordizeKeys(form value.Value) (value.Value, error) {
	return postwalk(&value.Builtin{Name: "keywordize-keys-fn", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
		m, ok := a[0].(value.Map)
		if !ok {
			return a[0], nil
		}
		out := value.Map(value.EmptyArrayMap())
		for _, p := range m.Items() {
			k := p[0]
			if s, ok := k.(value.String); ok {
				k = value.Keyword{Name: string(s)}
			}
			out = out.Assoc(k, p[1])
		}
		return out, nil
	}}, form)
}

func stringifyKeys(form value.Value) (value.Value, error) {
	return postwalk(&value.Builtin{Name: "stringify-keys-fn", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
		m, ok := a[0].(value.Map)
		if !ok {
			return a[0], nil
		}
		out := value.Map(value.EmptyArrayMap())
		for _, p := range m.Items() {
			k := p[0]
			if kw, ok := k.(value.Keyword); ok {
				k = value.String(kw.Name)
			}
			out = out.Assoc(k, p[1])
		}
		return out, nil
	}}, form)
}

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.walk")
	corelib.Install(ns, []corelib.Entry{
		{Name: "walk", Ar: corelib.Fixed(3), Fn: func(a []value.Value) (value.Value, error) {
			return walk(a[0], a[1], a[2])
		}},
		{Name: "prewalk", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			return prewalk(a[0], a[1])
		}},
		{Name: "postwalk", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			return postwalk(a[0], a[1])
		}},
		{Name: "prewalk-replace", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, nil
			}
			replaceFn := &value.Builtin{Name: "prewalk-replace-fn", Ar: corelib.Fixed(1), Fn: func(b []value.Value) (value.Value, error) {
				if r, ok := m.Get(b[0]); ok {
					return r, nil
				}
				return b[0], nil
			}}
			return prewalk(replaceFn, a[1])
		}},
		{Name: "postwalk-replace", Ar: corelib.Fixed(2), Fn: func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, nil
			}
			replaceFn := &value.Builtin{Name: "postwalk-replace-fn", Ar: corelib.Fixed(1), Fn: func(b []value.Value) (value.Value, error) {
				if r, ok := m.Get(b[0]); ok {
					return r, nil
				}
				return b[0], nil
			}}
			return postwalk(replaceFn, a[1])
		}},
		{Name: "keywordize-keys", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			return keywordizeKeys(a[0])
		}},
		{Name: "stringify-keys", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			return stringifyKeys(a[0])
		}},
	})
}
