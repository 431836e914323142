package reader

import (
	"strings"

	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/form"
)

// syntaxQuote implements spec.md section 4.1.1: unquoted subforms are left
// bare, unquote-splicing is spliced via (concat ...), and bare symbols are
// namespace-qualified (or gensym'd when they end in '#', sharing one
// generated name per syntax-quote scope).
func (r *Reader) syntaxQuote(f form.Form, gensyms map[string]string) (form.Form, error) {
	if isUnquote(f) {
		return listArg(f, 1), nil
	}
	if isUnquoteSplicing(f) {
		return nil, unquoteSpliceError(f)
	}

	switch v := f.(type) {
	case *form.ListForm:
		if len(v.Items) == 0 {
			return form.List(form.Sym("list")), nil
		}
		chunks, err := r.sqChunks(v.Items, gensyms)
		if err != nil {
			return nil, err
		}
		return form.WithMetaFrom(form.List(form.Sym("seq"), form.List(append([]form.Form{form.Sym("concat")}, chunks...)...)), f), nil
	case *form.VectorForm:
		if len(v.Items) == 0 {
			return form.Vec(), nil
		}
		chunks, err := r.sqChunks(v.Items, gensyms)
		if err != nil {
			return nil, err
		}
		return form.WithMetaFrom(form.List(form.Sym("vec"), form.List(append([]form.Form{form.Sym("concat")}, chunks...)...)), f), nil
	case *form.SetForm:
		if len(v.Items) == 0 {
			return form.Set(), nil
		}
		chunks, err := r.sqChunks(v.Items, gensyms)
		if err != nil {
			return nil, err
		}
		return form.List(form.Sym("set"), form.List(append([]form.Form{form.Sym("concat")}, chunks...)...)), nil
	case *form.MapForm:
		flat := make([]form.Form, len(v.Pairs))
		copy(flat, v.Pairs)
		if len(flat) == 0 {
			return form.List(form.Sym("hash-map")), nil
		}
		chunks, err := r.sqChunks(flat, gensyms)
		if err != nil {
			return nil, err
		}
		return form.List(form.Sym("apply"), form.Sym("hash-map"), form.List(append([]form.Form{form.Sym("concat")}, chunks...)...)), nil
	case *form.SymbolForm:
		return form.List(form.Sym("quote"), r.sqResolveSymbol(v, gensyms)), nil
	case *form.KeywordForm:
		return form.List(form.Sym("quote"), v), nil
	default:
		return f, nil
	}
}

// sqChunks turns each element into a "chunk" expression of list values to
// be concatenated: `(list x)` for a normal element, or the bare spliced
// expression for `~@x`.
func (r *Reader) sqChunks(items []form.Form, gensyms map[string]string) ([]form.Form, error) {
	chunks := make([]form.Form, 0, len(items))
	for _, it := range items {
		if isUnquoteSplicing(it) {
			chunks = append(chunks, listArg(it, 1))
			continue
		}
		if isUnquote(it) {
			chunks = append(chunks, form.List(form.Sym("list"), listArg(it, 1)))
			continue
		}
		expanded, err := r.syntaxQuote(it, gensyms)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, form.List(form.Sym("list"), expanded))
	}
	return chunks, nil
}

func (r *Reader) sqResolveSymbol(s *form.SymbolForm, gensyms map[string]string) *form.SymbolForm {
	if s.NS == "" && strings.HasSuffix(s.Name, "#") && s.Name != "#" {
		base := s.Name[:len(s.Name)-1]
		if gen, ok := gensyms[s.Name]; ok {
			return form.Sym(gen)
		}
		gen := base + "__auto__"
		if r.sq != nil {
			gen = r.sq.Gensym(base)
		}
		gensyms[s.Name] = gen
		return form.Sym(gen)
	}
	if s.NS != "" {
		return s
	}
	if r.sq != nil && r.sq.IsSpecialForm(s.Name) {
		return s
	}
	if r.sq != nil {
		if ns, ok := r.sq.ResolveSymbolNS(s.Name); ok {
			return form.SymNS(ns, s.Name)
		}
	}
	return s
}

func isUnquote(f form.Form) bool {
	l, ok := f.(*form.ListForm)
	if !ok || len(l.Items) != 2 {
		return false
	}
	s, ok := l.Items[0].(*form.SymbolForm)
	return ok && s.Is("unquote")
}

func isUnquoteSplicing(f form.Form) bool {
	l, ok := f.(*form.ListForm)
	if !ok || len(l.Items) != 2 {
		return false
	}
	s, ok := l.Items[0].(*form.SymbolForm)
	return ok && s.Is("unquote-splicing")
}

func listArg(f form.Form, i int) form.Form {
	return f.(*form.ListForm).Items[i]
}

func unquoteSpliceError(f form.Form) error {
	return clerr.Reader(f.Pos(), "unquote-splicing (~@) used outside of a sequence")
}
