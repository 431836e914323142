// Package instant implements the clojure.instant namespace SPEC_FULL.md
// adds for #inst tagged-literal support: read-instant-date parses an
// RFC3339 timestamp into an opaque host time.Time (value.HostObject, the
// same wrapping Regex already uses for a host-only value per spec.md
// section 3); pkg/clj's dataReaders rewrites #inst literals into a
// read-instant-date call so the reader hands #inst text off to it.
package instant

import (
	"time"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// ReadInstant parses an #inst literal's string payload. It backs
// read-instant-date, the call pkg/clj's dataReaders emits for the "inst"
// tag, so `#inst "2024-01-01T00:00:00.000-00:00"` evaluates to a HostObject the way a
// user reified record would.
func ReadInstant(s string) (value.Value, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, clerr.New(clerr.KindIllegalArgument, "#inst: %s", err)
	}
	return &value.HostObject{Tag: "inst", Obj: t}, nil
}

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.instant")
	corelib.Install(ns, []corelib.Entry{
		{Name: "read-instant-date", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			s, ok := a[0].(value.String)
			if !ok {
				return nil, clerr.Type("read-instant-date: wrong type %s", a[0].Type())
			}
			return ReadInstant(string(s))
		}},
		{Name: "read-instant-calendar", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			s, ok := a[0].(value.String)
			if !ok {
				return nil, clerr.Type("read-instant-calendar: wrong type %s", a[0].Type())
			}
			return ReadInstant(string(s))
		}},
		{Name: "instant?", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			h, ok := a[0].(*value.HostObject)
			return value.Bool(ok && h.Tag == "inst"), nil
		}},
	})
}
