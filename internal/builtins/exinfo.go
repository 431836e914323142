package builtins

import (
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

var (
	exMessageKey = value.Keyword{Name: "message"}
	exDataKey    = value.Keyword{Name: "data"}
	exCauseKey   = value.Keyword{Name: "cause"}
)

// NewExInfo builds the same {:message :data :cause} shape
// internal/interp/try.go's errToValue renders a *clerr.Error into, so
// ex-message/ex-data/ex-cause work uniformly whether the caught value came
// from ex-info or from a native runtime error.
func NewExInfo(msg value.Value, data value.Value, cause value.Value) value.Value {
	return value.NewArrayMap([][2]value.Value{
		{exMessageKey, msg},
		{exDataKey, data},
		{exCauseKey, cause},
	})
}

func installExInfo(core *runtime.Namespace) {
	install(core, []entry{
		{"ex-info", fixedRange(2, 3), func(a []value.Value) (value.Value, error) {
			cause := value.Value(value.NilValue)
			if len(a) == 3 {
				cause = a[2]
			}
			return NewExInfo(a[0], a[1], cause), nil
		}},
		{"ex-message", fixed(1), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return value.NilValue, nil
			}
			v, ok := m.Get(exMessageKey)
			if !ok {
				return value.NilValue, nil
			}
			return v, nil
		}},
		{"ex-data", fixed(1), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return value.NilValue, nil
			}
			v, ok := m.Get(exDataKey)
			if !ok {
				return value.NilValue, nil
			}
			return v, nil
		}},
		{"ex-cause", fixed(1), func(a []value.Value) (value.Value, error) {
			m, ok := a[0].(value.Map)
			if !ok {
				return value.NilValue, nil
			}
			v, ok := m.Get(exCauseKey)
			if !ok {
				return value.NilValue, nil
			}
			return v, nil
		}},
	})
}
