package builtins

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

var stringWriterTypeKey = value.Keyword{Name: "__reify_type"}
var stringWriterBufKey = value.Keyword{Name: "buf"}

// writeTo appends s to whatever *out*/*err* currently holds: a real
// io.Writer host object (the default os.Stdout/os.Stderr binding), or a
// with-out-str string-writer record.
func writeTo(target value.Value, s string) error {
	switch t := target.(type) {
	case *value.HostObject:
		if w, ok := t.Obj.(io.Writer); ok {
			_, err := w.Write([]byte(s))
			return err
		}
	case value.Map:
		if tag, ok := t.Get(stringWriterTypeKey); ok {
			if kw, ok := tag.(value.Keyword); ok && kw.Name == "string-writer" {
				if bufVal, ok := t.Get(stringWriterBufKey); ok {
					if h, ok := bufVal.(*value.HostObject); ok {
						if b, ok := h.Obj.(*strings.Builder); ok {
							b.WriteString(s)
							return nil
						}
					}
				}
			}
		}
	}
	return clerr.New(clerr.KindIllegalArgument, "not a writer: %s", value.PrStr(target))
}

func installPrint(core *runtime.Namespace) {
	outVar := core.Intern("*out*")
	outVar.SetDynamic(true)
	outVar.BindRoot(&value.HostObject{Tag: "writer", Obj: io.Writer(os.Stdout)})

	errVar := core.Intern("*err*")
	errVar.SetDynamic(true)
	errVar.BindRoot(&value.HostObject{Tag: "writer", Obj: io.Writer(os.Stderr)})

	inVar := core.Intern("*in*")
	inVar.SetDynamic(true)
	inVar.BindRoot(&value.HostObject{Tag: "reader", Obj: io.Reader(os.Stdin)})

	printTo := func(v *value.Var, s string) error {
		cur, err := v.Deref()
		if err != nil {
			return err
		}
		return writeTo(cur, s)
	}

	install(core, []entry{
		{"hash", fixed(1), func(a []value.Value) (value.Value, error) { return value.Int(a[0].Hash()), nil }},
		{"str", anyArity(), func(a []value.Value) (value.Value, error) {
			var b strings.Builder
			for _, v := range a {
				if _, ok := v.(value.Nil); ok {
					continue
				}
				b.WriteString(v.String())
			}
			return value.String(b.String()), nil
		}},
		{"pr-str", anyArity(), func(a []value.Value) (value.Value, error) {
			parts := make([]string, len(a))
			for i, v := range a {
				parts[i] = value.PrStr(v)
			}
			return value.String(strings.Join(parts, " ")), nil
		}},
		{"pr", anyArity(), func(a []value.Value) (value.Value, error) {
			parts := make([]string, len(a))
			for i, v := range a {
				parts[i] = value.PrStr(v)
			}
			return value.NilValue, printTo(outVar, strings.Join(parts, " "))
		}},
		{"prn", anyArity(), func(a []value.Value) (value.Value, error) {
			parts := make([]string, len(a))
			for i, v := range a {
				parts[i] = value.PrStr(v)
			}
			return value.NilValue, printTo(outVar, strings.Join(parts, " ")+"\n")
		}},
		{"print", anyArity(), func(a []value.Value) (value.Value, error) {
			parts := make([]string, len(a))
			for i, v := range a {
				parts[i] = v.String()
			}
			return value.NilValue, printTo(outVar, strings.Join(parts, " "))
		}},
		{"println", anyArity(), func(a []value.Value) (value.Value, error) {
			parts := make([]string, len(a))
			for i, v := range a {
				parts[i] = v.String()
			}
			return value.NilValue, printTo(outVar, strings.Join(parts, " ")+"\n")
		}},
		{"newline", fixed(0), func(a []value.Value) (value.Value, error) {
			return value.NilValue, printTo(outVar, "\n")
		}},
		{"flush", fixed(0), func(a []value.Value) (value.Value, error) { return value.NilValue, nil }},
		{"new-string-writer", fixed(0), func(a []value.Value) (value.Value, error) {
			buf := &strings.Builder{}
			pairs := [][2]value.Value{
				{stringWriterTypeKey, value.Keyword{Name: "string-writer"}},
				{stringWriterBufKey, &value.HostObject{Tag: "string-builder", Obj: buf}},
				{value.Keyword{Name: "write"}, &value.Builtin{Name: "write", Ar: fixed(2), Fn: func(args []value.Value) (value.Value, error) {
					buf.WriteString(args[1].String())
					return value.NilValue, nil
				}}},
				{value.Keyword{Name: "close"}, &value.Builtin{Name: "close", Ar: fixed(1), Fn: func(args []value.Value) (value.Value, error) {
					return value.NilValue, nil
				}}},
				{value.Keyword{Name: "str"}, &value.Builtin{Name: "str", Ar: fixed(1), Fn: func(args []value.Value) (value.Value, error) {
					return value.String(buf.String()), nil
				}}},
			}
			return value.NewArrayMap(pairs), nil
		}},
		{"system-nano-time", fixed(0), func(a []value.Value) (value.Value, error) {
			return value.Int(time.Now().UnixNano()), nil
		}},
		{"print-elapsed", fixed(1), func(a []value.Value) (value.Value, error) {
			start, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("print-elapsed", a[0])
			}
			elapsedMs := float64(time.Now().UnixNano()-int64(start)) / 1e6
			return value.NilValue, printTo(outVar, fmt.Sprintf("Elapsed time: %f msecs\n", elapsedMs))
		}},
	})
}
