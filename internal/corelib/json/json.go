// Package json implements the clojure.data.json namespace spec.md section 1
// lists alongside clojure.core's other bundled libraries: read-str/write-str
// over encoding/json, sharing corelib's Value<->interface{} bridge with
// clojure.data.yaml rather than re-deriving it.
package json

import (
	"encoding/json"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.data.json")
	corelib.Install(ns, []corelib.Entry{
		{Name: "read-str", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			s, ok := a[0].(value.String)
			if !ok {
				return nil, clerr.Type("read-str: wrong type %s", a[0].Type())
			}
			var out interface{}
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
			}
			return corelib.FromGo(out), nil
		}},
		{Name: "write-str", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			b, err := json.Marshal(corelib.ToGo(a[0]))
			if err != nil {
				return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
			}
			return value.String(string(b)), nil
		}},
	})
}
