// Package yamldata implements the supplemental clojure.data.yaml namespace:
// a Decode/Encode pair over gopkg.in/yaml.v3, the same shape the teacher's
// yamlDecode/yamlEncode give its config loader (inferFromYaml walks the
// decoded interface{} into the teacher's own value type; corelib.FromGo
// does the equivalent walk into value.Value).
package yamldata

import (
	"gopkg.in/yaml.v3"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.data.yaml")
	corelib.Install(ns, []corelib.Entry{
		{Name: "parse-string", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			s, ok := a[0].(value.String)
			if !ok {
				return nil, clerr.Type("parse-string: wrong type %s", a[0].Type())
			}
			var out interface{}
			if err := yaml.Unmarshal([]byte(s), &out); err != nil {
				return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
			}
			return corelib.FromGo(normalize(out)), nil
		}},
		{Name: "generate-string", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			b, err := yaml.Marshal(corelib.ToGo(a[0]))
			if err != nil {
				return nil, clerr.New(clerr.KindIllegalArgument, "%s", err)
			}
			return value.String(string(b)), nil
		}},
	})
}

// normalize rewrites yaml.v3's map[string]interface{} mapping nodes (its
// decode target for `interface{}` uses string keys already, unlike the
// older go-yaml v2 which produced map[interface{}]interface{}) so
// corelib.FromGo's existing branches both still apply.
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return x
	}
}
