package macro

import (
	"github.com/clojurewasm/corelisp/internal/form"
)

// expandCase implements spec.md section 4.5.1: lower `(case e clause*)` to
// `(let [g e] (case* g shift mask default case-map switch-type test-type))`.
//
// case-map here is carried as a Form-level map from hash (as an IntForm)
// to [test-form then-form] pairs, which the analyzer's case* handler reads
// directly -- this macro package only computes the dispatch shape, it
// does not itself evaluate anything.
func expandCase(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("case")
	}
	expr := a[0]
	clauses := a[1:]

	var defaultForm form.Form = form.List(form.Sym("throw"),
		form.List(form.Sym("ex-info"), form.Str("No matching clause"), form.Mp()))
	if len(clauses)%2 == 1 {
		defaultForm = clauses[len(clauses)-1]
		clauses = clauses[:len(clauses)-1]
	}

	var pairs []caseClause
	for i := 0; i+1 < len(clauses); i += 2 {
		test, then := clauses[i], clauses[i+1]
		if lst, ok := test.(*form.ListForm); ok {
			for _, t := range lst.Items {
				pairs = append(pairs, caseClause{t, then})
			}
		} else {
			pairs = append(pairs, caseClause{test, then})
		}
	}

	mode := detectCaseMode(pairs)

	entries := make([]caseEntry, 0, len(pairs))
	for _, p := range pairs {
		entries = append(entries, caseEntry{hash: caseHash(p.test, mode), test: p.test, then: p.then})
	}

	if len(entries) == 0 {
		g := gensym("case_g")
		gs := form.Sym(g)
		return form.List(form.Sym("let*"), form.Vec(gs, expr), defaultForm), nil
	}

	minH, maxH := entries[0].hash, entries[0].hash
	for _, e := range entries {
		if e.hash < minH {
			minH = e.hash
		}
		if e.hash > maxH {
			maxH = e.hash
		}
	}

	var shift, mask int64
	switchType := "sparse"
	if maxH-minH < (1 << 13) {
		switchType = "compact"
		shift, mask = 0, 0xffffffff
	} else {
		found := false
		for k := 1; k <= 13 && !found; k++ {
			m := int64(1)<<uint(k) - 1
			for s := int64(0); s <= 30; s++ {
				seen := map[int64]bool{}
				collide := false
				for _, e := range entries {
					r := (e.hash >> uint(s)) & m
					if seen[r] {
						collide = true
						break
					}
					seen[r] = true
				}
				if !collide {
					shift, mask, switchType, found = s, m, "shift-mask", true
					break
				}
			}
		}
	}

	// Group entries by their final dispatch key (post shift/mask for
	// shift-mask mode, raw hash for compact/sparse), merging collisions
	// into a nested condp-style chain per spec.md step 7.
	type bucket struct {
		key     int64
		entries []caseEntry
	}
	buckets := map[int64]*bucket{}
	var order []int64
	for _, e := range entries {
		key := e.hash
		if switchType == "shift-mask" {
			key = (e.hash >> uint(shift)) & mask
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.entries = append(b.entries, e)
	}

	g := gensym("case_g")
	gs := form.Sym(g)

	caseMapPairs := make([]form.Form, 0, len(order)*2)
	for _, key := range order {
		b := buckets[key]
		var branch form.Form
		if len(b.entries) == 1 {
			branch = form.Vec(b.entries[0].test, b.entries[0].then)
		} else {
			// collision bucket: nested value-equality chain, evaluated in
			// order so the first matching test wins. The branch's Test slot
			// carries caseCollisionSentinel rather than a real test value --
			// the evaluator recognizes that keyword and runs Then
			// unconditionally, since the cond chain below does its own
			// comparisons against gs (the switch value), not the hash.
			condVar := gensym("case_g")
			condp := []form.Form{form.Sym("cond")}
			for _, e := range b.entries {
				condp = append(condp, form.List(form.Sym("="), form.Sym(condVar), e.test), e.then)
			}
			condp = append(condp, form.Sym("else"), defaultForm)
			branch = form.Vec(caseCollisionSentinel, form.List(form.Sym("let*"), form.Vec(form.Sym(condVar), gs), form.List(condp...)))
		}
		caseMapPairs = append(caseMapPairs, form.Int(key), branch)
	}

	testType := "identity"
	if mode == caseModeHashEquiv {
		testType = "equiv"
	}

	caseStar := form.List(
		form.Sym("case*"),
		gs,
		form.Int(shift),
		form.Int(mask),
		defaultForm,
		form.Mp(caseMapPairs...),
		form.Kw(switchType),
		form.Kw(testType),
	)
	return form.List(form.Sym("let*"), form.Vec(gs, expr), caseStar), nil
}

// caseCollisionSentinel marks a case* dispatch-table branch whose Then is
// already a self-contained cond chain (hash collision between several case
// clauses landed on the same dispatch key); the evaluator checks for this
// exact keyword rather than comparing the switch value against it, since it
// is never itself a real case test value.
var caseCollisionSentinel = form.Kw("__case_collision__")

type caseClause struct {
	test form.Form
	then form.Form
}

type caseEntry struct {
	hash int64
	test form.Form
	then form.Form
}

type caseMode int

const (
	caseModeInt caseMode = iota
	caseModeIdentity
	caseModeHashEquiv
)

func detectCaseMode(pairs []caseClause) caseMode {
	allInt, allKw := true, true
	for _, p := range pairs {
		if _, ok := p.test.(*form.IntForm); !ok {
			allInt = false
		}
		if _, ok := p.test.(*form.KeywordForm); !ok {
			allKw = false
		}
	}
	switch {
	case allInt:
		return caseModeInt
	case allKw:
		return caseModeIdentity
	default:
		return caseModeHashEquiv
	}
}

// caseHash computes a dispatch hash for a test form at macro-expansion
// time, using the same mixing spec.md's runtime hash does for keywords and
// plain int hashing for integers, so the int-mode/identity-mode dispatch
// table matches what internal/interp/casestar.go's dispatchHash computes
// from the evaluated switch value (not value.Hash).
func caseHash(test form.Form, mode caseMode) int64 {
	switch t := test.(type) {
	case *form.IntForm:
		return t.Value ^ (t.Value >> 32)
	case *form.KeywordForm:
		return int64(uint32(formKeywordHash(t.NS, t.Name)))
	default:
		return int64(uint32(formKeywordHash("", caseRawHashText(test))))
	}
}

// caseRawHashText extracts the text a hash-equiv case test's dispatch hash
// is computed from -- the same text internal/interp/casestar.go's
// dispatchRawHashText pulls from the evaluated value at runtime. String and
// char forms carry reader syntax (surrounding quotes, a leading backslash)
// in their String() that the evaluated value's String() does not, so those
// two need their underlying content pulled out directly; every other form's
// String() already matches its value counterpart's.
func caseRawHashText(test form.Form) string {
	switch t := test.(type) {
	case *form.StringForm:
		return t.Value
	case *form.CharForm:
		return string(t.Value)
	default:
		return test.String()
	}
}

func formKeywordHash(ns, name string) uint32 {
	return KeywordDispatchHash(ns, name)
}

// KeywordDispatchHash is the hash case* dispatch uses for keyword tests,
// exported so the evaluator's runtime case* handler computes the identical
// value from a live Keyword -- the dispatch table built here and the
// lookup done there must agree on every bit.
func KeywordDispatchHash(ns, name string) uint32 {
	h := uint32(0x7334)
	for _, r := range ns {
		h = h*31 + uint32(r)
	}
	for _, r := range name {
		h = h*31 + uint32(r)
	}
	return h
}

// IntDispatchHash mirrors caseHash's int-mode formula for case* dispatch,
// exported for the same reason as KeywordDispatchHash.
func IntDispatchHash(n int64) int64 {
	return n ^ (n >> 32)
}
