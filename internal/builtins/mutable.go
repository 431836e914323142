package builtins

import (
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func installMutable(core *runtime.Namespace) {
	install(core, []entry{
		{"atom", fixed(1), func(a []value.Value) (value.Value, error) {
			return value.NewAtom(a[0]), nil
		}},
		{"deref", fixed(1), func(a []value.Value) (value.Value, error) {
			switch x := a[0].(type) {
			case *value.Atom:
				return x.Deref(), nil
			case *value.Volatile:
				return x.Deref(), nil
			case *value.Delay:
				return x.Force()
			case *value.Var:
				return x.Deref()
			}
			return nil, wrongType("deref", a[0])
		}},
		{"reset!", fixed(2), func(a []value.Value) (value.Value, error) {
			at, ok := a[0].(*value.Atom)
			if !ok {
				return nil, wrongType("reset!", a[0])
			}
			return at.Reset(a[1])
		}},
		{"swap!", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			at, ok := a[0].(*value.Atom)
			if !ok {
				return nil, wrongType("swap!", a[0])
			}
			f, extra := a[1], a[2:]
			return at.Swap(func(old value.Value) (value.Value, error) {
				return callFn("swap!", f, append([]value.Value{old}, extra...))
			})
		}},
		{"compare-and-set!", fixed(3), func(a []value.Value) (value.Value, error) {
			at, ok := a[0].(*value.Atom)
			if !ok {
				return nil, wrongType("compare-and-set!", a[0])
			}
			if !value.Equal(at.Deref(), a[1]) {
				return value.Bool(false), nil
			}
			if _, err := at.Reset(a[2]); err != nil {
				return nil, err
			}
			return value.Bool(true), nil
		}},
		{"volatile!", fixed(1), func(a []value.Value) (value.Value, error) {
			return value.NewVolatile(a[0]), nil
		}},
		{"vreset!", fixed(2), func(a []value.Value) (value.Value, error) {
			v, ok := a[0].(*value.Volatile)
			if !ok {
				return nil, wrongType("vreset!", a[0])
			}
			return v.Reset(a[1]), nil
		}},
		{"vreset-read", fixed(1), func(a []value.Value) (value.Value, error) {
			v, ok := a[0].(*value.Volatile)
			if !ok {
				return nil, wrongType("vreset-read", a[0])
			}
			return v.Deref(), nil
		}},
		{"new-delay", fixed(1), func(a []value.Value) (value.Value, error) {
			thunk, ok := a[0].(value.Fn)
			if !ok {
				return nil, wrongType("new-delay", a[0])
			}
			return value.NewDelay(func() (value.Value, error) { return thunk.Call(nil) }), nil
		}},
		{"new-local-var", fixed(1), func(a []value.Value) (value.Value, error) {
			v := value.NewVar("", "local")
			v.SetDynamic(true)
			v.PushBinding(a[0])
			return v, nil
		}},
		{"var-set", fixed(2), func(a []value.Value) (value.Value, error) {
			v, ok := a[0].(*value.Var)
			if !ok {
				return nil, wrongType("var-set", a[0])
			}
			if err := v.Set(a[1]); err != nil {
				return nil, err
			}
			return a[1], nil
		}},
		// bind-captured-fn would snapshot every currently thread-bound dynamic
		// var and replay those bindings whenever the returned fn is later
		// called, extending the dynamic scope across the deferred call --
		// meaningful on a real thread pool (bound-fn's whole purpose is
		// crossing threads). The single-threaded cooperative model means a
		// var's top binding is already whatever was last pushed when the fn
		// eventually runs, so capturing a snapshot here would have to freeze
		// bindings that normal dynamic scoping already gets right for any
		// same-thread call; it's a no-op wrapper instead of a real capture.
		{"bind-captured-fn", fixed(1), func(a []value.Value) (value.Value, error) {
			if _, ok := a[0].(value.Fn); !ok {
				return nil, wrongType("bind-captured-fn", a[0])
			}
			return a[0], nil
		}},
		{"push-thread-bindings", fixed(1), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, wrongType("push-thread-bindings", a[0])
			}
			pairs := m.Items()
			vars := make([]*value.Var, len(pairs))
			vals := make([]value.Value, len(pairs))
			for i, p := range pairs {
				v, ok := p[0].(*value.Var)
				if !ok {
					return nil, wrongType("push-thread-bindings", p[0])
				}
				vars[i], vals[i] = v, p[1]
			}
			return value.NilValue, runtime.PushBindings(vars, vals)
		}},
		{"pop-thread-bindings", fixed(1), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[0])
			vars := make([]*value.Var, len(items))
			for i, x := range items {
				v, ok := x.(*value.Var)
				if !ok {
					return nil, wrongType("pop-thread-bindings", x)
				}
				vars[i] = v
			}
			runtime.PopBindings(vars)
			return value.NilValue, nil
		}},
		{"with-redefs-fn", fixed(2), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return nil, wrongType("with-redefs-fn", a[0])
			}
			f, ok := a[1].(value.Fn)
			if !ok {
				return nil, wrongType("with-redefs-fn", a[1])
			}
			bindings := map[*value.Var]value.Value{}
			for _, p := range m.Items() {
				v, ok := p[0].(*value.Var)
				if !ok {
					return nil, wrongType("with-redefs-fn", p[0])
				}
				bindings[v] = p[1]
			}
			return runtime.WithRedefsFn(bindings, func() (value.Value, error) { return f.Call(nil) })
		}},
		// run-future/run-pvalues collapse to eager evaluation: the core has
		// no scheduler (spec.md section 5), and Var's dynamic binding stack
		// is not synchronized for concurrent access, so thunks still run one
		// at a time rather than on real OS threads. Each still goes through
		// an errgroup.Group's Go/Wait pair -- the teacher's fire-and-collect
		// shape for a future-like value -- so deref/realized?/future-done?
		// see the same error propagation a genuinely concurrent run would
		// produce, just without the race.
		{"run-future", fixed(1), func(a []value.Value) (value.Value, error) {
			thunk, ok := a[0].(value.Fn)
			if !ok {
				return nil, wrongType("run-future", a[0])
			}
			var result value.Value
			var g errgroup.Group
			g.Go(func() error {
				r, err := thunk.Call(nil)
				if err != nil {
					return err
				}
				result = r
				return nil
			})
			if err := g.Wait(); err != nil {
				return nil, err
			}
			d := value.NewDelay(func() (value.Value, error) { return result, nil })
			if _, err := d.Force(); err != nil {
				return nil, err
			}
			return d, nil
		}},
		{"run-pvalues", anyArity(), func(a []value.Value) (value.Value, error) {
			out := make([]value.Value, len(a))
			for i, f := range a {
				i, f := i, f
				var g errgroup.Group
				g.Go(func() error {
					r, err := callFn("pvalues", f, nil)
					if err != nil {
						return err
					}
					out[i] = r
					return nil
				})
				if err := g.Wait(); err != nil {
					return nil, err
				}
			}
			return lazySeqOf(out), nil
		}},
		{"string-reader", fixed(1), func(a []value.Value) (value.Value, error) {
			s, ok := a[0].(value.String)
			if !ok {
				return nil, wrongType("string-reader", a[0])
			}
			return &value.HostObject{Tag: "reader", Obj: strings.NewReader(string(s))}, nil
		}},
	})
}
