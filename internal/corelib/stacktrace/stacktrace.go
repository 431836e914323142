// Package stacktrace implements the clojure.stacktrace namespace:
// print-cause-trace/print-throwable/root-cause walk the {:message :data
// :cause} shape internal/builtins/exinfo.go's NewExInfo builds (the same
// shape a caught native runtime error renders into), rendering frames onto
// *err* the way the teacher's error path writes a formatted report rather
// than a bare Go error string.
package stacktrace

import (
	"fmt"
	"io"
	"strings"

	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

var stringWriterTypeKey = value.Keyword{Name: "__reify_type"}
var stringWriterBufKey = value.Keyword{Name: "buf"}

var (
	msgKey   = value.Keyword{Name: "message"}
	dataKey  = value.Keyword{Name: "data"}
	causeKey = value.Keyword{Name: "cause"}
)

func rootCause(v value.Value) value.Value {
	for {
		m, ok := v.(value.Map)
		if !ok {
			return v
		}
		c, ok := m.Get(causeKey)
		if !ok {
			return v
		}
		if _, isNil := c.(value.Nil); isNil {
			return v
		}
		v = c
	}
}

func renderTrace(v value.Value) string {
	var b strings.Builder
	for {
		m, ok := v.(value.Map)
		if !ok {
			fmt.Fprintf(&b, "%s\n", v.String())
			return b.String()
		}
		msg, _ := m.Get(msgKey)
		fmt.Fprintf(&b, "%s\n", msg.String())
		if data, ok := m.Get(dataKey); ok {
			if _, isNil := data.(value.Nil); !isNil {
				fmt.Fprintf(&b, "  data: %s\n", data.String())
			}
		}
		cause, ok := m.Get(causeKey)
		if !ok {
			return b.String()
		}
		if _, isNil := cause.(value.Nil); isNil {
			return b.String()
		}
		b.WriteString("Caused by: ")
		v = cause
	}
}

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.stacktrace")
	var stdErr *value.Var
	if outNS, ok := rt.FindNS("clojure.core"); ok {
		stdErr, _ = outNS.Own("*err*")
	}
	corelib.Install(ns, []corelib.Entry{
		{Name: "root-cause", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			return rootCause(a[0]), nil
		}},
		{Name: "print-throwable", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			return value.NilValue, writeErr(stdErr, renderTrace(a[0]))
		}},
		{Name: "print-cause-trace", Ar: corelib.FixedRange(1, 2), Fn: func(a []value.Value) (value.Value, error) {
			return value.NilValue, writeErr(stdErr, renderTrace(a[0]))
		}},
		{Name: "print-stack-trace", Ar: corelib.FixedRange(1, 2), Fn: func(a []value.Value) (value.Value, error) {
			return value.NilValue, writeErr(stdErr, renderTrace(a[0]))
		}},
	})
}

// writeErr mirrors internal/builtins/print.go's writeTo -- duplicated
// rather than imported since writeTo is unexported and corelib sub-packages
// stay siblings of internal/builtins, not dependents of it.
func writeErr(v *value.Var, s string) error {
	if v == nil {
		return nil
	}
	target, err := v.Deref()
	if err != nil {
		return err
	}
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
	return nil
}
