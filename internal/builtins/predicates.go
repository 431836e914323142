package builtins

import (
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func pred(name string, f func(value.Value) bool) entry {
	return entry{name, fixed(1), func(a []value.Value) (value.Value, error) {
		return value.Bool(f(a[0])), nil
	}}
}

func installPredicates(core *runtime.Namespace) {
	install(core, []entry{
		pred("nil?", func(v value.Value) bool { _, ok := v.(value.Nil); return ok || v == nil }),
		pred("some?", func(v value.Value) bool { _, ok := v.(value.Nil); return !ok && v != nil }),
		pred("true?", func(v value.Value) bool { b, ok := v.(value.Bool); return ok && bool(b) }),
		pred("false?", func(v value.Value) bool { b, ok := v.(value.Bool); return ok && !bool(b) }),
		pred("boolean", func(v value.Value) bool { return value.Truthy(v) }),
		pred("pos-int?", func(v value.Value) bool { i, ok := v.(value.Int); return ok && i > 0 }),
		pred("neg-int?", func(v value.Value) bool { i, ok := v.(value.Int); return ok && i < 0 }),
		pred("integer?", func(v value.Value) bool {
			switch v.(type) {
			case value.Int, *value.BigInt:
				return true
			}
			return false
		}),
		pred("float?", func(v value.Value) bool { _, ok := v.(value.Float); return ok }),
		pred("ratio?", func(v value.Value) bool { _, ok := v.(*value.Ratio); return ok }),
		pred("decimal?", func(v value.Value) bool { _, ok := v.(*value.BigDecimal); return ok }),
		pred("number?", func(v value.Value) bool {
			switch v.(type) {
			case value.Int, value.Float, *value.BigInt, *value.BigDecimal, *value.Ratio:
				return true
			}
			return false
		}),
		pred("rational?", func(v value.Value) bool {
			switch v.(type) {
			case value.Int, *value.BigInt, *value.BigDecimal, *value.Ratio:
				return true
			}
			return false
		}),
		pred("string?", func(v value.Value) bool { _, ok := v.(value.String); return ok }),
		pred("char?", func(v value.Value) bool { _, ok := v.(value.Char); return ok }),
		pred("symbol?", func(v value.Value) bool { _, ok := v.(value.Symbol); return ok }),
		pred("keyword?", func(v value.Value) bool { _, ok := v.(value.Keyword); return ok }),
		pred("list?", func(v value.Value) bool { _, ok := v.(*value.List); return ok }),
		pred("vector?", func(v value.Value) bool { _, ok := v.(*value.Vector); return ok }),
		pred("map?", func(v value.Value) bool { _, ok := v.(value.Map); return ok }),
		pred("set?", func(v value.Value) bool { _, ok := v.(*value.HashSet); return ok }),
		pred("seq?", func(v value.Value) bool { _, ok := v.(value.Seq); return ok }),
		pred("sequential?", func(v value.Value) bool {
			switch v.(type) {
			case *value.List, *value.Vector, value.Seq:
				return true
			}
			return false
		}),
		pred("coll?", func(v value.Value) bool {
			switch v.(type) {
			case *value.List, *value.Vector, value.Map, *value.HashSet:
				return true
			}
			_, ok := v.(value.Seq)
			return ok
		}),
		pred("fn?", func(v value.Value) bool { _, ok := v.(value.Fn); return ok }),
		pred("ifn?", func(v value.Value) bool {
			switch v.(type) {
			case value.Fn, value.Keyword, value.Map, *value.HashSet, value.Symbol:
				return true
			}
			return false
		}),
		pred("record?", func(v value.Value) bool {
			m, ok := v.(value.Map)
			if !ok {
				return false
			}
			_, tagged := m.Get(value.Keyword{Name: "__reify_type"})
			return tagged
		}),
		pred("empty?", func(v value.Value) bool { return toSeq(v) == nil }),
		pred("any?", func(v value.Value) bool { return true }),
	})
}
