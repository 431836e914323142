package builtins

import (
	"sync"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// Symbols and Vars carry their own metadata field/method; every other
// collection has no meta slot in its struct (spec.md's persistent
// collections are plain data, not metadata carriers), so with-meta instead
// clones the collection (new pointer identity, same contents) and records
// its metadata in a side table keyed by that identity -- cloning avoids
// tagging an existing pointer two unrelated with-meta calls might share
// through structural sharing (e.g. two vectors built by conj-ing onto the
// same prefix).
var (
	metaMu    sync.Mutex
	metaTable = map[value.Value]value.Map{}
)

func getMeta(v value.Value) value.Value {
	switch x := v.(type) {
	case value.Symbol:
		if x.Meta != nil {
			return x.Meta
		}
		return value.NilValue
	case *value.Var:
		if m := x.Meta(); m != nil {
			return m
		}
		return value.NilValue
	}
	metaMu.Lock()
	defer metaMu.Unlock()
	if m, ok := metaTable[v]; ok {
		return m
	}
	return value.NilValue
}

func setMeta(v value.Value, m value.Map) (value.Value, error) {
	switch x := v.(type) {
	case value.Symbol:
		x.Meta = m
		return x, nil
	case *value.Var:
		x.SetMeta(m)
		return x, nil
	case *value.List:
		clone := *x
		metaMu.Lock()
		metaTable[&clone] = m
		metaMu.Unlock()
		return &clone, nil
	case *value.Vector:
		clone := value.NewVector(append([]value.Value{}, x.Items()...))
		metaMu.Lock()
		metaTable[clone] = m
		metaMu.Unlock()
		return clone, nil
	case value.Map:
		clone := value.Map(value.EmptyArrayMap())
		for _, p := range x.Items() {
			clone = clone.Assoc(p[0], p[1])
		}
		metaMu.Lock()
		metaTable[clone] = m
		metaMu.Unlock()
		return clone, nil
	case *value.HashSet:
		clone := value.NewSet(append([]value.Value{}, x.Elements()...))
		metaMu.Lock()
		metaTable[clone] = m
		metaMu.Unlock()
		return clone, nil
	}
	return v, nil
}

func installMeta(core *runtime.Namespace) {
	install(core, []entry{
		{"meta", fixed(1), func(a []value.Value) (value.Value, error) {
			return getMeta(a[0]), nil
		}},
		{"with-meta", fixed(2), func(a []value.Value) (value.Value, error) {
			m, ok := a[1].(value.Map)
			if !ok {
				if _, isNil := a[1].(value.Nil); isNil {
					m = value.EmptyArrayMap()
				} else {
					return nil, wrongType("with-meta", a[1])
				}
			}
			return setMeta(a[0], m)
		}},
		{"vary-meta", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			cur := getMeta(a[0])
			curMap, ok := cur.(value.Map)
			if !ok {
				curMap = value.EmptyArrayMap()
			}
			r, err := callFn("vary-meta", a[1], append([]value.Value{curMap}, a[2:]...))
			if err != nil {
				return nil, err
			}
			newMap, ok := r.(value.Map)
			if !ok {
				return nil, wrongType("vary-meta", r)
			}
			return setMeta(a[0], newMap)
		}},
		{"alter-meta!", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			v, ok := a[0].(*value.Var)
			if !ok {
				return nil, wrongType("alter-meta!", a[0])
			}
			cur := v.Meta()
			if cur == nil {
				cur = value.EmptyArrayMap()
			}
			r, err := callFn("alter-meta!", a[1], append([]value.Value{cur}, a[2:]...))
			if err != nil {
				return nil, err
			}
			newMap, ok := r.(value.Map)
			if !ok {
				return nil, wrongType("alter-meta!", r)
			}
			v.SetMeta(newMap)
			return newMap, nil
		}},
	})
}
