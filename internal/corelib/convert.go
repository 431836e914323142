// Package corelib holds the small Go-backed namespaces the wider Clojure
// surface expects beyond clojure.core: clojure.set, clojure.walk,
// clojure.test, clojure.data.json and the supplemental clojure.data.yaml/
// clojure.instant/clojure.stacktrace/clojure.template namespaces
// SPEC_FULL.md adds. Each sub-package mirrors internal/builtins' shape --
// a flat table of name/arity/fn entries interned into its own namespace by
// an Install(rt *runtime.Env) -- rather than being loaded as embedded .clj
// source, since this core has no bundled-library loader (spec.md section
// 6.1 only describes reading user-supplied source).
package corelib

import (
	"fmt"

	"github.com/clojurewasm/corelisp/internal/value"
)

// FromGo converts a decoded interface{} (as produced by encoding/json or
// yaml.v3's Unmarshal into interface{}) into a Value tree: JSON/YAML
// objects become keyword-keyed maps, arrays become vectors, matching the
// teacher's inferFromYaml walk over interface{} (SPEC_FULL.md's DOMAIN
// STACK entry for gopkg.in/yaml.v3).
func FromGo(v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.NilValue
	case bool:
		return value.Bool(x)
	case string:
		return value.String(x)
	case int:
		return value.Int(x)
	case int64:
		return value.Int(x)
	case float64:
		return value.Float(x)
	case []interface{}:
		items := make([]value.Value, len(x))
		for i, e := range x {
			items[i] = FromGo(e)
		}
		return value.NewVector(items)
	case map[string]interface{}:
		m := value.Map(value.EmptyArrayMap())
		for k, e := range x {
			m = m.Assoc(value.Keyword{Name: k}, FromGo(e))
		}
		return m
	case map[interface{}]interface{}:
		m := value.Map(value.EmptyArrayMap())
		for k, e := range x {
			m = m.Assoc(FromGo(k), FromGo(e))
		}
		return m
	default:
		return value.String(fmt.Sprint(x))
	}
}

// ToGo converts a Value tree back into plain interface{} data, the
// direction encoding/json.Marshal and yaml.Marshal need: maps with keyword
// or symbol keys render with their bare name, matching how the teacher's
// yamlEncode strips keyword colons before marshaling.
func ToGo(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Nil:
		return nil
	case value.Bool:
		return bool(x)
	case value.Int:
		return int64(x)
	case value.Float:
		return float64(x)
	case value.String:
		return string(x)
	case value.Keyword:
		return x.Name
	case value.Symbol:
		return x.Name
	case *value.Vector:
		items := x.Items()
		out := make([]interface{}, len(items))
		for i, e := range items {
			out[i] = ToGo(e)
		}
		return out
	case value.Map:
		out := map[string]interface{}{}
		for _, p := range x.Items() {
			out[keyName(p[0])] = ToGo(p[1])
		}
		return out
	case *value.HashSet:
		els := x.Elements()
		out := make([]interface{}, len(els))
		for i, e := range els {
			out[i] = ToGo(e)
		}
		return out
	default:
		return v.String()
	}
}

func keyName(k value.Value) string {
	switch x := k.(type) {
	case value.Keyword:
		return x.Name
	case value.Symbol:
		return x.Name
	case value.String:
		return string(x)
	default:
		return k.String()
	}
}

