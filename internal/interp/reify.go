package interp

import (
	"github.com/clojurewasm/corelisp/internal/analyzer"
	"github.com/clojurewasm/corelisp/internal/value"
)

// reifyTypeKey is spec.md section 3's record marker: "a map that contains
// the reserved key :__reify_type with a string value", which clojure.walk
// and the pretty-printer know to treat as implementation detail.
var reifyTypeKey = value.Keyword{Name: "__reify_type"}

func methodPairs(it *Interp, methods map[string]*analyzer.FnNode, env *Env) [][2]value.Value {
	pairs := make([][2]value.Value, 0, len(methods))
	for name, fnNode := range methods {
		c := it.evalFn(fnNode, env)
		pairs = append(pairs, [2]value.Value{value.Keyword{Name: name}, c})
	}
	return pairs
}

// evalReify builds an anonymous record value in place: its methods close
// over the surrounding lexical Env the way an anonymous fn* would.
func (it *Interp) evalReify(n *analyzer.ReifyNode, env *Env) value.Value {
	pairs := [][2]value.Value{{reifyTypeKey, value.String("reify")}}
	pairs = append(pairs, methodPairs(it, n.Methods, env)...)
	return value.NewArrayMap(pairs)
}

// evalDeftype interns a constructor function under the type's name: calling
// it with one argument per field builds a record map carrying the field
// values plus the type's methods, which all share one set of method
// closures built once against the defining Env (fields are read back out of
// the record via (.-field this), not captured per-instance).
func (it *Interp) evalDeftype(n *analyzer.DeftypeNode, env *Env) (value.Value, error) {
	methods := methodPairs(it, n.Methods, env)
	fields := append([]string(nil), n.Fields...)
	typeName := n.Name
	ctor := &value.Builtin{
		Name: typeName,
		Ar:   value.Arity{Fixed: []int{len(fields)}},
		Fn: func(args []value.Value) (value.Value, error) {
			pairs := make([][2]value.Value, 0, len(fields)+len(methods)+1)
			pairs = append(pairs, [2]value.Value{reifyTypeKey, value.String(typeName)})
			for i, f := range fields {
				pairs = append(pairs, [2]value.Value{value.Keyword{Name: f}, args[i]})
			}
			pairs = append(pairs, methods...)
			return value.NewArrayMap(pairs), nil
		},
	}
	v := it.RtEnv.Intern(it.RtEnv.Current(), typeName)
	v.BindRoot(ctor)
	return v, nil
}
