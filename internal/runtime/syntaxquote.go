package runtime

import (
	"fmt"
	"sync/atomic"
)

// SyntaxQuoteEnv implements reader.SyntaxQuoteEnv against a live Env, the
// dependency-inversion seam that lets internal/reader resolve symbols and
// generate gensyms without importing internal/runtime.
type SyntaxQuoteEnv struct {
	Env *Env
}

var gensymCounter int64

func (s SyntaxQuoteEnv) ResolveSymbolNS(name string) (string, bool) {
	ns := s.Env.Current()
	if v, ok := ns.Resolve(name); ok {
		return v.NS, true
	}
	return ns.Name, false
}

func (s SyntaxQuoteEnv) IsSpecialForm(name string) bool {
	return specialForms[name]
}

func (s SyntaxQuoteEnv) Gensym(base string) string {
	n := atomic.AddInt64(&gensymCounter, 1)
	return fmt.Sprintf("%s__%d__auto__", base, n)
}

// specialForms is the set analyzed directly rather than looked up as a var
// or macro (spec.md section 4.5/4.6): def if do let* loop* recur fn* quote
// var try catch finally throw new . set! case* reify letfn* deftype*.
var specialForms = map[string]bool{
	"def": true, "if": true, "do": true, "let*": true, "loop*": true,
	"recur": true, "fn*": true, "quote": true, "var": true, "try": true,
	"catch": true, "finally": true, "throw": true, "new": true, ".": true,
	"set!": true, "case*": true, "reify": true, "letfn*": true, "deftype*": true,
}
