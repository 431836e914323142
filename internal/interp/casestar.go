package interp

import (
	"github.com/clojurewasm/corelisp/internal/analyzer"
	"github.com/clojurewasm/corelisp/internal/macro"
	"github.com/clojurewasm/corelisp/internal/value"
)

// caseCollisionSentinel mirrors internal/macro/case.go's
// caseCollisionSentinel keyword -- the exact bit pattern case.go emits and
// analyzer.CaseStarNode.Table stores as a branch's Test when that branch's Then is
// already a self-contained cond chain rather than a single test/then pair.
var caseCollisionSentinel = value.Keyword{Name: "__case_collision__"}

// evalCaseStar implements spec.md section 4.5.1's case* dispatch: hash the
// switch value with the same formula internal/macro/case.go used to build
// the dispatch table, apply the shift/mask case.go computed for this
// switch-type, and look up the resulting bucket.
func (it *Interp) evalCaseStar(n *analyzer.CaseStarNode, env *Env) (value.Value, error) {
	switchVal, err := it.Eval(n.Expr, env)
	if err != nil {
		return nil, err
	}
	hash, ok := dispatchHash(switchVal)
	if !ok {
		return it.Eval(n.Default, env)
	}
	key := hash
	if n.SwitchType == "shift-mask" {
		key = (hash >> uint(n.Shift)) & n.Mask
	}
	branch, found := n.Table[key]
	if !found {
		return it.Eval(n.Default, env)
	}
	testVal, err := it.Eval(branch.Test, env)
	if err != nil {
		return nil, err
	}
	if kw, ok := testVal.(value.Keyword); ok && kw == caseCollisionSentinel {
		return it.Eval(branch.Then, env)
	}
	matched := false
	if n.TestEquiv {
		matched = value.Equal(switchVal, testVal)
	} else {
		matched = caseIdentityEqual(switchVal, testVal)
	}
	if matched {
		return it.Eval(branch.Then, env)
	}
	return it.Eval(n.Default, env)
}

// dispatchHash reproduces internal/macro/case.go's caseHash over a runtime
// value instead of a macro-time test Form -- the two must agree bit for bit
// for the table built at macro-expansion time to be found at eval time.
func dispatchHash(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Int:
		return macro.IntDispatchHash(int64(x)), true
	case value.Keyword:
		return int64(uint32(macro.KeywordDispatchHash(x.NS, x.Name))), true
	default:
		return int64(uint32(macro.KeywordDispatchHash("", dispatchRawHashText(x)))), true
	}
}

// dispatchRawHashText mirrors internal/macro/case.go's caseRawHashText on
// the runtime-value side. String's and Char's String() already return bare
// content with no reader syntax, matching what caseRawHashText pulls out of
// the corresponding Form on the other side; listed explicitly here so the
// two functions stay visibly paired rather than relying on a default-case
// coincidence.
func dispatchRawHashText(v value.Value) string {
	switch x := v.(type) {
	case value.String:
		return string(x)
	case value.Char:
		return string(rune(x))
	default:
		return v.String()
	}
}

// caseIdentityEqual implements the "identity" test-type case* uses for
// int/keyword dispatch, where Clojure's own case compares with `identical?`
// for those modes; value equality coincides with identity for the
// immutable scalars those modes admit, so this delegates to value.Equal.
func caseIdentityEqual(a, b value.Value) bool {
	return value.Equal(a, b)
}
