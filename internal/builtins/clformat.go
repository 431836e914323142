package builtins

import (
	"fmt"
	"strings"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/clformat"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// javaArg converts a value.Value to whatever Go's fmt package needs to
// honor a %d/%s/%f-shaped verb the same way Java's String.format would,
// close enough for `format`/`printf`'s common verb set (spec.md section
// 6.3 lists them alongside cl-format, not as an exhaustive compatibility
// requirement).
func javaArg(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Int:
		return int64(x)
	case value.Float:
		return float64(x)
	case value.String:
		return string(x)
	case value.Bool:
		return bool(x)
	case value.Nil:
		return "nil"
	default:
		return x.String()
	}
}

func installCLFormat(core *runtime.Namespace) {
	outVar := core.Intern("*out*")

	install(core, []entry{
		{"format", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			fs, ok := a[0].(value.String)
			if !ok {
				return nil, wrongType("format", a[0])
			}
			args := make([]interface{}, len(a)-1)
			for i, v := range a[1:] {
				args[i] = javaArg(v)
			}
			return value.String(fmt.Sprintf(string(fs), args...)), nil
		}},
		{"printf", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			fs, ok := a[0].(value.String)
			if !ok {
				return nil, wrongType("printf", a[0])
			}
			args := make([]interface{}, len(a)-1)
			for i, v := range a[1:] {
				args[i] = javaArg(v)
			}
			cur, err := outVar.Deref()
			if err != nil {
				return nil, err
			}
			return value.NilValue, writeTo(cur, fmt.Sprintf(string(fs), args...))
		}},
		{"cl-format", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			fs, ok := a[1].(value.String)
			if !ok {
				return nil, wrongType("cl-format", a[1])
			}
			compiled, err := clformat.Compile(string(fs))
			if err != nil {
				return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
			}
			if b, ok := a[0].(value.Bool); ok && bool(b) {
				cur, err := outVar.Deref()
				if err != nil {
					return nil, err
				}
				var buf strings.Builder
				if err := clformat.Exec(&buf, compiled, a[2:]); err != nil {
					return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
				}
				return value.NilValue, writeTo(cur, buf.String())
			}
			if _, isNil := a[0].(value.Nil); isNil {
				var buf strings.Builder
				if err := clformat.Exec(&buf, compiled, a[2:]); err != nil {
					return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
				}
				return value.String(buf.String()), nil
			}
			var buf strings.Builder
			if err := clformat.Exec(&buf, compiled, a[2:]); err != nil {
				return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
			}
			return value.NilValue, writeTo(a[0], buf.String())
		}},
	})
}
