package builtins

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func foldNumeric(name string, args []value.Value, identity value.Value, op func(a, b value.Value) (value.Value, error)) (value.Value, error) {
	if len(args) == 0 {
		return identity, nil
	}
	acc := args[0]
	for _, a := range args[1:] {
		var err error
		acc, err = op(acc, a)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func chainCompare(args []value.Value, ok func(cmp int) bool) (value.Value, error) {
	for i := 0; i+1 < len(args); i++ {
		c, err := value.Compare(args[i], args[i+1])
		if err != nil {
			return nil, err
		}
		if !ok(c) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func installArith(core *runtime.Namespace) {
	install(core, []entry{
		{"+", anyArity(), func(a []value.Value) (value.Value, error) {
			return foldNumeric("+", a, value.Int(0), value.Add)
		}},
		{"-", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			if len(a) == 1 {
				return value.Sub(value.Int(0), a[0])
			}
			return foldNumeric("-", a, value.Int(0), value.Sub)
		}},
		{"*", anyArity(), func(a []value.Value) (value.Value, error) {
			return foldNumeric("*", a, value.Int(1), value.Mul)
		}},
		{"/", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			if len(a) == 1 {
				return value.Div(value.Int(1), a[0])
			}
			return foldNumeric("/", a, value.Int(1), value.Div)
		}},
		{"quot", fixed(2), func(a []value.Value) (value.Value, error) { return value.Quot(a[0], a[1]) }},
		{"rem", fixed(2), func(a []value.Value) (value.Value, error) { return value.Rem(a[0], a[1]) }},
		{"mod", fixed(2), func(a []value.Value) (value.Value, error) { return value.Mod(a[0], a[1]) }},
		{"inc", fixed(1), func(a []value.Value) (value.Value, error) { return value.Inc(a[0]) }},
		{"dec", fixed(1), func(a []value.Value) (value.Value, error) { return value.Dec(a[0]) }},
		{"inc'", fixed(1), func(a []value.Value) (value.Value, error) { return value.IncP(a[0]) }},
		{"dec'", fixed(1), func(a []value.Value) (value.Value, error) { return value.DecP(a[0]) }},
		{"abs", fixed(1), func(a []value.Value) (value.Value, error) { return value.Abs(a[0]) }},
		{"min", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			return foldNumeric("min", a, value.Int(0), value.Min)
		}},
		{"max", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			return foldNumeric("max", a, value.Int(0), value.Max)
		}},
		{"=", anyArity(), func(a []value.Value) (value.Value, error) {
			for i := 0; i+1 < len(a); i++ {
				if !value.Equal(a[i], a[i+1]) {
					return value.Bool(false), nil
				}
			}
			return value.Bool(true), nil
		}},
		{"not=", anyArity(), func(a []value.Value) (value.Value, error) {
			for i := 0; i+1 < len(a); i++ {
				if !value.Equal(a[i], a[i+1]) {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		}},
		{"<", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			return chainCompare(a, func(c int) bool { return c < 0 })
		}},
		{"<=", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			return chainCompare(a, func(c int) bool { return c <= 0 })
		}},
		{">", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			return chainCompare(a, func(c int) bool { return c > 0 })
		}},
		{">=", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			return chainCompare(a, func(c int) bool { return c >= 0 })
		}},
		{"compare", fixed(2), func(a []value.Value) (value.Value, error) {
			c, err := value.Compare(a[0], a[1])
			if err != nil {
				return nil, err
			}
			return value.Int(c), nil
		}},
		{"pos?", fixed(1), func(a []value.Value) (value.Value, error) {
			c, err := value.Compare(a[0], value.Int(0))
			if err != nil {
				return nil, err
			}
			return value.Bool(c > 0), nil
		}},
		{"neg?", fixed(1), func(a []value.Value) (value.Value, error) {
			c, err := value.Compare(a[0], value.Int(0))
			if err != nil {
				return nil, err
			}
			return value.Bool(c < 0), nil
		}},
		{"zero?", fixed(1), func(a []value.Value) (value.Value, error) {
			c, err := value.Compare(a[0], value.Int(0))
			if err != nil {
				return nil, err
			}
			return value.Bool(c == 0), nil
		}},
		{"even?", fixed(1), func(a []value.Value) (value.Value, error) {
			i, ok := a[0].(value.Int)
			if !ok {
				return nil, clerr.Type("even?: not an integer")
			}
			return value.Bool(i%2 == 0), nil
		}},
		{"odd?", fixed(1), func(a []value.Value) (value.Value, error) {
			i, ok := a[0].(value.Int)
			if !ok {
				return nil, clerr.Type("odd?: not an integer")
			}
			return value.Bool(i%2 != 0), nil
		}},
	})
}
