package interp

import (
	"github.com/clojurewasm/corelisp/internal/analyzer"
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/value"
)

// evalNew implements `new`/`(Classname. args*)` under the stylized interop
// surface spec.md's Non-goals carve out: no host classes exist here, so a
// "class" is just a constructor var a prior deftype* interned under its
// type name in the current namespace.
func (it *Interp) evalNew(n *analyzer.NewNode, env *Env) (value.Value, error) {
	v, err := it.RtEnv.Resolve(it.RtEnv.Current(), "", n.ClassName)
	if err != nil {
		return nil, clerr.New(clerr.KindLookup, "Unable to resolve classname: %s", n.ClassName)
	}
	ctor, err := v.Deref()
	if err != nil {
		return nil, err
	}
	fn, ok := ctor.(value.Fn)
	if !ok {
		return nil, clerr.Type("%s is not a constructor", n.ClassName)
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		val, err := it.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return fn.Call(args)
}

// evalDot implements `.`/`.method`/`.-field` interop against records built
// by deftype*/reify: both are plain maps tagged :__reify_type, field access
// is a keyword Get, method dispatch is a keyword Get returning a Closure
// called with the record prepended as its own first ("this") argument.
func (it *Interp) evalDot(n *analyzer.DotNode, env *Env) (value.Value, error) {
	target, err := it.Eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	rec, ok := target.(value.Map)
	if !ok {
		return nil, clerr.Type("interop target is not a record: %s", target.String())
	}
	if n.IsField {
		v, found := rec.Get(value.Keyword{Name: n.Member})
		if !found {
			return nil, clerr.Lookup("no such field: %s", n.Member)
		}
		return v, nil
	}
	methodVal, found := rec.Get(value.Keyword{Name: n.Member})
	if !found {
		return nil, clerr.Lookup("no such method: %s", n.Member)
	}
	fn, ok := methodVal.(value.Fn)
	if !ok {
		return nil, clerr.Type("%s is not a method", n.Member)
	}
	args := make([]value.Value, len(n.Args)+1)
	args[0] = rec
	for i, a := range n.Args {
		v, err := it.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i+1] = v
	}
	return fn.Call(args)
}
