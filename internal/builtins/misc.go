package builtins

import (
	"github.com/google/uuid"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func installMisc(core *runtime.Namespace) {
	install(core, []entry{
		{"list", anyArity(), func(a []value.Value) (value.Value, error) {
			return value.NewListFrom(a), nil
		}},
		{"vector", anyArity(), func(a []value.Value) (value.Value, error) {
			return value.NewVector(a), nil
		}},
		{"hash-map", anyArity(), func(a []value.Value) (value.Value, error) {
			if len(a)%2 != 0 {
				return nil, wrongType("hash-map", a[len(a)-1])
			}
			m := value.Map(value.EmptyArrayMap())
			for i := 0; i < len(a); i += 2 {
				m = m.Assoc(a[i], a[i+1])
			}
			return m, nil
		}},
		{"set", fixed(1), func(a []value.Value) (value.Value, error) {
			return value.NewSet(seqSlice(a[0])), nil
		}},
		{"hash-set", anyArity(), func(a []value.Value) (value.Value, error) {
			return value.NewSet(a), nil
		}},
		{"concat", anyArity(), func(a []value.Value) (value.Value, error) {
			var out []value.Value
			for _, x := range a {
				out = append(out, seqSlice(x)...)
			}
			return lazySeqOf(out), nil
		}},
		{"chunk-first", fixed(1), func(a []value.Value) (value.Value, error) {
			c, ok := a[0].(value.Chunked)
			if !ok {
				return nil, wrongType("chunk-first", a[0])
			}
			return value.NewVector(c.ChunkFirst()), nil
		}},
		{"chunk-rest", fixed(1), func(a []value.Value) (value.Value, error) {
			c, ok := a[0].(value.Chunked)
			if !ok {
				return nil, wrongType("chunk-rest", a[0])
			}
			r := c.ChunkRest()
			if r == nil {
				return value.EmptyList(), nil
			}
			return r, nil
		}},
		{"chunked-seq?", fixed(1), func(a []value.Value) (value.Value, error) {
			_, ok := a[0].(value.Chunked)
			return value.Bool(ok), nil
		}},
		{"random-uuid", fixed(0), func(a []value.Value) (value.Value, error) {
			return value.String(uuid.New().String()), nil
		}},
		{"uuid?", fixed(1), func(a []value.Value) (value.Value, error) {
			s, ok := a[0].(value.String)
			if !ok {
				return value.Bool(false), nil
			}
			_, err := uuid.Parse(string(s))
			return value.Bool(err == nil), nil
		}},
		{"parse-uuid", fixed(1), func(a []value.Value) (value.Value, error) {
			s, ok := a[0].(value.String)
			if !ok {
				return nil, wrongType("parse-uuid", a[0])
			}
			id, err := uuid.Parse(string(s))
			if err != nil {
				return value.NilValue, nil
			}
			return value.String(id.String()), nil
		}},
	})
}
