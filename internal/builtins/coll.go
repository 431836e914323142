package builtins

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func installColl(core *runtime.Namespace) {
	install(core, []entry{
		{"get", fixedRange(2, 3), func(a []value.Value) (value.Value, error) {
			v, ok := getIn1(a[0], a[1])
			if !ok {
				if len(a) == 3 {
					return a[2], nil
				}
				return value.NilValue, nil
			}
			return v, nil
		}},
		{"get-in", fixedRange(2, 3), func(a []value.Value) (value.Value, error) {
			cur := a[0]
			path := seqSlice(a[1])
			for _, k := range path {
				v, ok := getIn1(cur, k)
				if !ok {
					if len(a) == 3 {
						return a[2], nil
					}
					return value.NilValue, nil
				}
				cur = v
			}
			return cur, nil
		}},
		{"assoc", variadicFrom(3), func(a []value.Value) (value.Value, error) {
			coll := a[0]
			for i := 1; i+1 < len(a); i += 2 {
				var err error
				coll, err = assoc1(coll, a[i], a[i+1])
				if err != nil {
					return nil, err
				}
			}
			return coll, nil
		}},
		{"assoc-in", fixed(3), func(a []value.Value) (value.Value, error) {
			return assocIn(a[0], seqSlice(a[1]), a[2])
		}},
		{"update", variadicFrom(3), func(a []value.Value) (value.Value, error) {
			cur, _ := getIn1(a[0], a[1])
			if cur == nil {
				cur = value.NilValue
			}
			r, err := callFn("update", a[2], append([]value.Value{cur}, a[3:]...))
			if err != nil {
				return nil, err
			}
			return assoc1(a[0], a[1], r)
		}},
		{"update-in", variadicFrom(3), func(a []value.Value) (value.Value, error) {
			path := seqSlice(a[1])
			cur := a[0]
			vals := make([]value.Value, len(path))
			colls := make([]value.Value, len(path)+1)
			colls[0] = cur
			for i, k := range path {
				v, ok := getIn1(cur, k)
				if !ok {
					v = value.NilValue
				}
				vals[i] = v
				cur = v
				colls[i+1] = cur
			}
			newVal, err := callFn("update-in", a[2], append([]value.Value{cur}, a[3:]...))
			if err != nil {
				return nil, err
			}
			for i := len(path) - 1; i >= 0; i-- {
				newVal, err = assoc1(colls[i], path[i], newVal)
				if err != nil {
					return nil, err
				}
			}
			return newVal, nil
		}},
		{"dissoc", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, wrongType("dissoc", a[0])
			}
			for _, k := range a[1:] {
				m = m.Dissoc(k)
			}
			return m, nil
		}},
		{"select-keys", fixed(2), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, wrongType("select-keys", a[0])
			}
			out := value.Map(value.EmptyArrayMap())
			for _, k := range seqSlice(a[1]) {
				if v, ok := m.Get(k); ok {
					out = out.Assoc(k, v)
				}
			}
			return out, nil
		}},
		{"find", fixed(2), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return value.NilValue, nil
			}
			v, ok := m.Get(a[1])
			if !ok {
				return value.NilValue, nil
			}
			return value.NewVector([]value.Value{a[1], v}), nil
		}},
		{"key", fixed(1), func(a []value.Value) (value.Value, error) {
			pair, ok := a[0].(*value.Vector)
			if !ok || pair.Count() != 2 {
				return nil, wrongType("key", a[0])
			}
			v, _ := pair.Nth(0)
			return v, nil
		}},
		{"val", fixed(1), func(a []value.Value) (value.Value, error) {
			pair, ok := a[0].(*value.Vector)
			if !ok || pair.Count() != 2 {
				return nil, wrongType("val", a[0])
			}
			v, _ := pair.Nth(1)
			return v, nil
		}},
		{"keys", fixed(1), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, wrongType("keys", a[0])
			}
			items := m.Items()
			out := make([]value.Value, len(items))
			for i, p := range items {
				out[i] = p[0]
			}
			return lazySeqOf(out), nil
		}},
		{"vals", fixed(1), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, wrongType("vals", a[0])
			}
			items := m.Items()
			out := make([]value.Value, len(items))
			for i, p := range items {
				out[i] = p[1]
			}
			return lazySeqOf(out), nil
		}},
		{"merge", variadicFrom(0), func(a []value.Value) (value.Value, error) {
			out := value.Map(value.EmptyArrayMap())
			for _, m := range a {
				if m == nil {
					continue
				}
				if _, isNil := m.(value.Nil); isNil {
					continue
				}
				mm, ok := m.(value.Map)
				if !ok {
					return nil, wrongType("merge", m)
				}
				for _, p := range mm.Items() {
					out = out.Assoc(p[0], p[1])
				}
			}
			return out, nil
		}},
		{"merge-with", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			f := a[0]
			out := value.Map(value.EmptyArrayMap())
			for _, m := range a[1:] {
				mm, ok := m.(value.Map)
				if !ok {
					continue
				}
				for _, p := range mm.Items() {
					if existing, ok := out.Get(p[0]); ok {
						r, err := callFn("merge-with", f, []value.Value{existing, p[1]})
						if err != nil {
							return nil, err
						}
						out = out.Assoc(p[0], r)
					} else {
						out = out.Assoc(p[0], p[1])
					}
				}
			}
			return out, nil
		}},
	})
}

func getIn1(coll, key value.Value) (value.Value, bool) {
	switch c := coll.(type) {
	case value.Map:
		return c.Get(key)
	case *value.Vector:
		i, ok := key.(value.Int)
		if !ok {
			return nil, false
		}
		return c.Nth(int(i))
	case *value.HashSet:
		if c.Contains(key) {
			return key, true
		}
		return nil, false
	}
	return nil, false
}

func assoc1(coll, key, val value.Value) (value.Value, error) {
	switch c := coll.(type) {
	case value.Map:
		return c.Assoc(key, val), nil
	case *value.Vector:
		i, ok := key.(value.Int)
		if !ok {
			return nil, wrongType("assoc", key)
		}
		return c.Assoc(int(i), val)
	case value.Nil:
		return value.EmptyArrayMap().Assoc(key, val), nil
	}
	return nil, clerr.New(clerr.KindIllegalArgument, "assoc: not associative: %s", coll.Type())
}

func assocIn(coll value.Value, path []value.Value, val value.Value) (value.Value, error) {
	if len(path) == 0 {
		return val, nil
	}
	k := path[0]
	if len(path) == 1 {
		return assoc1(coll, k, val)
	}
	child, ok := getIn1(coll, k)
	if !ok {
		child = value.NilValue
	}
	newChild, err := assocIn(child, path[1:], val)
	if err != nil {
		return nil, err
	}
	return assoc1(coll, k, newChild)
}
