package builtins

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func nsSym(name string) value.Value { return value.Symbol{Name: name} }

func installNS(core *runtime.Namespace, rt *runtime.Env) {
	// *ns* tracks rt's current namespace for user code that reads or binds
	// it directly; the analyzer/reader resolve unqualified symbols against
	// rt.Current() itself (internal/analyzer/analyzer.go), not this var, so
	// *ns*'s root is kept in sync by in-ns/ns below rather than being the
	// source of truth.
	nsVar := core.Intern("*ns*")
	nsVar.SetDynamic(true)
	nsVar.BindRoot(nsSym(rt.Current().Name))

	install(core, []entry{
		// require/use/import: the dialect loads everything through one
		// clojure.core namespace at bootstrap (spec.md section 6.1), so
		// there is no classpath or second source file to load here -- they
		// only need to not blow up the library-loading idioms
		// (:require/:use forms) that real Clojure code is littered with.
		{"require", anyArity(), func(a []value.Value) (value.Value, error) { return value.NilValue, nil }},
		{"use", anyArity(), func(a []value.Value) (value.Value, error) { return value.NilValue, nil }},
		{"import", anyArity(), func(a []value.Value) (value.Value, error) { return value.NilValue, nil }},
		{"in-ns", fixed(1), func(a []value.Value) (value.Value, error) {
			sym, ok := a[0].(value.Symbol)
			if !ok {
				return nil, wrongType("in-ns", a[0])
			}
			rt.InNS(sym.Name)
			nsVar.BindRoot(nsSym(sym.Name))
			return nsSym(sym.Name), nil
		}},
		{"ns-name", fixed(1), func(a []value.Value) (value.Value, error) {
			ns, err := asNamespace(a[0], rt)
			if err != nil {
				return nil, err
			}
			return nsSym(ns.Name), nil
		}},
		{"ns-interns", fixed(1), func(a []value.Value) (value.Value, error) {
			ns, err := asNamespace(a[0], rt)
			if err != nil {
				return nil, err
			}
			return varsToMap(ns.Interns()), nil
		}},
		{"ns-publics", fixed(1), func(a []value.Value) (value.Value, error) {
			ns, err := asNamespace(a[0], rt)
			if err != nil {
				return nil, err
			}
			return varsToMap(ns.Publics()), nil
		}},
		{"resolve", fixed(1), func(a []value.Value) (value.Value, error) {
			sym, ok := a[0].(value.Symbol)
			if !ok {
				return nil, wrongType("resolve", a[0])
			}
			v, err := rt.Resolve(rt.Current(), sym.NS, sym.Name)
			if err != nil {
				return value.NilValue, nil
			}
			return v, nil
		}},
		{"find-var", fixed(1), func(a []value.Value) (value.Value, error) {
			sym, ok := a[0].(value.Symbol)
			if !ok {
				return nil, wrongType("find-var", a[0])
			}
			v, err := rt.Resolve(rt.Current(), sym.NS, sym.Name)
			if err != nil {
				return value.NilValue, nil
			}
			return v, nil
		}},
		{"intern", fixedRange(2, 3), func(a []value.Value) (value.Value, error) {
			ns, err := asNamespace(a[0], rt)
			if err != nil {
				return nil, err
			}
			sym, ok := a[1].(value.Symbol)
			if !ok {
				return nil, wrongType("intern", a[1])
			}
			v := ns.Intern(sym.Name)
			if len(a) == 3 {
				v.BindRoot(a[2])
			}
			return v, nil
		}},
		{"alter-var-root", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			v, ok := a[0].(*value.Var)
			if !ok {
				return nil, wrongType("alter-var-root", a[0])
			}
			cur, err := v.Deref()
			if err != nil {
				cur = value.NilValue
			}
			r, err := callFn("alter-var-root", a[1], append([]value.Value{cur}, a[2:]...))
			if err != nil {
				return nil, err
			}
			v.BindRoot(r)
			return r, nil
		}},
		{"bound?", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			vars := make([]*value.Var, len(a))
			for i, x := range a {
				v, ok := x.(*value.Var)
				if !ok {
					return nil, wrongType("bound?", x)
				}
				vars[i] = v
			}
			return value.Bool(runtime.Bound(vars...)), nil
		}},
		{"make-hierarchy", fixed(0), func(a []value.Value) (value.Value, error) {
			return value.EmptyArrayMap(), nil
		}},
	})
}

// varsToMap builds the {sym var} map ns-interns/ns-publics return, walking
// the vars in name-sorted order so REPL printing is stable across runs
// instead of following the namespace's internal intern order.
func varsToMap(vars []*value.Var) value.Map {
	byName := make(map[string]*value.Var, len(vars))
	for _, v := range vars {
		byName[v.Name] = v
	}
	names := maps.Keys(byName)
	sort.Strings(names)
	m := value.Map(value.EmptyArrayMap())
	for _, n := range names {
		m = m.Assoc(value.Symbol{Name: n}, byName[n])
	}
	return m
}

func asNamespace(v value.Value, rt *runtime.Env) (*runtime.Namespace, error) {
	switch x := v.(type) {
	case value.Symbol:
		ns, ok := rt.FindNS(x.Name)
		if !ok {
			return nil, clerr.New(clerr.KindLookup, "No such namespace: %s", x.Name)
		}
		return ns, nil
	case value.String:
		ns, ok := rt.FindNS(string(x))
		if !ok {
			return nil, clerr.New(clerr.KindLookup, "No such namespace: %s", string(x))
		}
		return ns, nil
	}
	return nil, wrongType("ns", v)
}
