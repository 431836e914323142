package builtins

import (
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// nativeFn wraps a Go closure (partial, comp and the rest close over their
// []value.Value args) in an ordinary *value.Builtin, the same trick the teacher's evaluator uses for
// partial application of native functions (internal/evaluator/builtins.go
// wraps Go closures rather than building a dedicated PartialFn Value type).
func nativeFn(name string, ar value.Arity, fn func(args []value.Value) (value.Value, error)) *value.Builtin {
	return &value.Builtin{Name: name, Ar: ar, Fn: fn}
}

func installFns(core *runtime.Namespace) {
	install(core, []entry{
		{"identity", fixed(1), func(a []value.Value) (value.Value, error) { return a[0], nil }},
		{"apply", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			f := a[0]
			args := append([]value.Value{}, a[1:len(a)-1]...)
			args = append(args, seqSlice(a[len(a)-1])...)
			return callFn("apply", f, args)
		}},
		{"comp", anyArity(), func(a []value.Value) (value.Value, error) {
			fns := append([]value.Value{}, a...)
			return nativeFn("comp", anyArity(), func(args []value.Value) (value.Value, error) {
				if len(fns) == 0 {
					if len(args) == 1 {
						return args[0], nil
					}
					return nil, wrongType("comp", value.NilValue)
				}
				r, err := callFn("comp", fns[len(fns)-1], args)
				if err != nil {
					return nil, err
				}
				for i := len(fns) - 2; i >= 0; i-- {
					r, err = callFn("comp", fns[i], []value.Value{r})
					if err != nil {
						return nil, err
					}
				}
				return r, nil
			}), nil
		}},
		{"partial", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			f := a[0]
			bound := append([]value.Value{}, a[1:]...)
			return nativeFn("partial", anyArity(), func(args []value.Value) (value.Value, error) {
				return callFn("partial", f, append(append([]value.Value{}, bound...), args...))
			}), nil
		}},
		{"complement", fixed(1), func(a []value.Value) (value.Value, error) {
			f := a[0]
			return nativeFn("complement", anyArity(), func(args []value.Value) (value.Value, error) {
				r, err := callFn("complement", f, args)
				if err != nil {
					return nil, err
				}
				return value.Bool(!value.Truthy(r)), nil
			}), nil
		}},
		{"juxt", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			fns := append([]value.Value{}, a...)
			return nativeFn("juxt", anyArity(), func(args []value.Value) (value.Value, error) {
				out := make([]value.Value, len(fns))
				for i, f := range fns {
					r, err := callFn("juxt", f, args)
					if err != nil {
						return nil, err
					}
					out[i] = r
				}
				return value.NewVector(out), nil
			}), nil
		}},
		{"memoize", fixed(1), func(a []value.Value) (value.Value, error) {
			f := a[0]
			cache := map[uint32][]struct {
				args []value.Value
				val  value.Value
			}{}
			return nativeFn("memoize", anyArity(), func(args []value.Value) (value.Value, error) {
				h := value.HashOrdered(1, args)
				for _, e := range cache[h] {
					if sameArgs(e.args, args) {
						return e.val, nil
					}
				}
				r, err := callFn("memoize", f, args)
				if err != nil {
					return nil, err
				}
				cache[h] = append(cache[h], struct {
					args []value.Value
					val  value.Value
				}{args, r})
				return r, nil
			}), nil
		}},
		{"trampoline", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			r, err := callFn("trampoline", a[0], a[1:])
			if err != nil {
				return nil, err
			}
			for {
				fn, ok := r.(value.Fn)
				if !ok {
					return r, nil
				}
				r, err = fn.Call(nil)
				if err != nil {
					return nil, err
				}
			}
		}},
		{"fnil", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			f := a[0]
			defaults := append([]value.Value{}, a[1:]...)
			return nativeFn("fnil", anyArity(), func(args []value.Value) (value.Value, error) {
				filled := append([]value.Value{}, args...)
				for i := 0; i < len(defaults) && i < len(filled); i++ {
					if _, ok := filled[i].(value.Nil); ok {
						filled[i] = defaults[i]
					}
				}
				return callFn("fnil", f, filled)
			}), nil
		}},
		{"every-pred", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			preds := append([]value.Value{}, a...)
			return nativeFn("every-pred", anyArity(), func(args []value.Value) (value.Value, error) {
				for _, p := range preds {
					r, err := callFn("every-pred", p, args)
					if err != nil {
						return nil, err
					}
					if !value.Truthy(r) {
						return value.Bool(false), nil
					}
				}
				return value.Bool(true), nil
			}), nil
		}},
		{"some-fn", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			preds := append([]value.Value{}, a...)
			return nativeFn("some-fn", anyArity(), func(args []value.Value) (value.Value, error) {
				for _, p := range preds {
					r, err := callFn("some-fn", p, args)
					if err != nil {
						return nil, err
					}
					if value.Truthy(r) {
						return r, nil
					}
				}
				return value.Bool(false), nil
			}), nil
		}},
	})
}

func sameArgs(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !value.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
