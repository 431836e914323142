package macro

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/form"
)

// doseqClause is one parsed element of the doseq binding vector: either a
// (name, seq-expr) iteration pair, or a :let/:when/:while modifier.
type doseqClause struct {
	kind string // "for", "let", "when", "while"
	name form.Form
	expr form.Form
}

func parseDoseqBindings(vec *form.VectorForm) ([]doseqClause, error) {
	items := vec.Items
	var out []doseqClause
	for i := 0; i < len(items); {
		if kw, ok := items[i].(*form.KeywordForm); ok {
			if i+1 >= len(items) {
				return nil, clerr.Syntax("doseq modifier %s missing its argument", kw.Name)
			}
			switch kw.Name {
			case "let":
				out = append(out, doseqClause{kind: "let", expr: items[i+1]})
			case "when":
				out = append(out, doseqClause{kind: "when", expr: items[i+1]})
			case "while":
				out = append(out, doseqClause{kind: "while", expr: items[i+1]})
			default:
				return nil, clerr.Syntax("unknown doseq modifier :%s", kw.Name)
			}
			i += 2
			continue
		}
		if i+1 >= len(items) {
			return nil, clerr.Syntax("doseq binding vector must have an even number of forms")
		}
		out = append(out, doseqClause{kind: "for", name: items[i], expr: items[i+1]})
		i += 2
	}
	return out, nil
}

// expandDoseq implements spec.md section 4.5.2: each `for` clause lowers to
// an outer loop over `(seq expr)`/`next`, with an inner lock-step loop over
// a chunk's elements by index whenever the current head is chunked;
// `:when` skips-and-recurs, `:while` breaks the innermost loop, `:let`
// introduces a plain let. Clauses are nested inside-out, innermost clause
// (the last one) wrapping the body, outermost wrapping everything.
func expandDoseq(call *form.ListForm, gensym func(string) string) (form.Form, error) {
	a := args(call)
	if len(a) < 1 {
		return nil, errArity("doseq")
	}
	vec, ok := a[0].(*form.VectorForm)
	if !ok {
		return nil, clerr.Syntax("doseq requires a binding vector")
	}
	clauses, err := parseDoseqBindings(vec)
	if err != nil {
		return nil, err
	}
	body := append([]form.Form{form.Sym("do")}, a[1:]...)

	result := form.Form(form.List(append(body, form.Nil())...))
	for i := len(clauses) - 1; i >= 0; i-- {
		c := clauses[i]
		switch c.kind {
		case "let":
			letVec, ok := c.expr.(*form.VectorForm)
			if !ok {
				return nil, clerr.Syntax(":let in doseq requires a binding vector")
			}
			result = form.List(append([]form.Form{form.Sym("let*"), letVec}, result)...)
		case "when":
			result = form.List(form.Sym("when"), c.expr, result)
		case "while":
			// :while breaks the innermost loop: the body always yields
			// nil, so a non-nil result (true) tells the surrounding
			// for-loop to stop instead of recurring.
			result = form.List(form.Sym("if"), c.expr, result, form.Bool(true))
		case "for":
			result = lowerDoseqFor(c.name, c.expr, result, gensym)
		}
	}
	wrapped := form.List(form.Sym("do"), result, form.Nil())
	return wrapped, nil
}

func lowerDoseqFor(name, seqExpr, body form.Form, gensym func(string) string) form.Form {
	seqSym := form.Sym(gensym("doseq_seq"))
	chunkSym := form.Sym(gensym("doseq_chunk"))
	idxSym := form.Sym(gensym("doseq_i"))
	cntSym := form.Sym(gensym("doseq_cnt"))

	// Inner lock-step loop over one chunk's elements by index; its own
	// loop* binds only idxSym, so recur only ever carries the next index.
	innerLoop := form.List(form.Sym("loop*"), form.Vec(idxSym, form.Int(0)),
		form.List(form.Sym("when"), form.List(form.Sym("<"), idxSym, cntSym),
			form.List(form.Sym("let*"), form.Vec(name, form.List(form.Sym("nth"), chunkSym, idxSym)),
				form.List(form.Sym("if"), form.List(form.Sym("nil?"), body),
					form.List(form.Sym("recur"), form.List(form.Sym("inc"), idxSym)),
					form.Bool(true)))))

	// Outer loop: walk (seq expr)/next, using the chunked fast path when
	// the current head implements Chunked; recur always carries the next
	// seq position, matching the outer loop*'s single binding.
	chunkedBranch := form.List(form.Sym("let*"),
		form.Vec(chunkSym, form.List(form.Sym("chunk-first"), seqSym),
			cntSym, form.List(form.Sym("count"), chunkSym)),
		form.List(form.Sym("if"), form.List(form.Sym("nil?"), innerLoop),
			form.List(form.Sym("recur"), form.List(form.Sym("chunk-rest"), seqSym)),
			form.Nil()))

	unchunkedBranch := form.List(form.Sym("let*"), form.Vec(name, form.List(form.Sym("first"), seqSym)),
		form.List(form.Sym("if"), form.List(form.Sym("nil?"), body),
			form.List(form.Sym("recur"), form.List(form.Sym("next"), seqSym)),
			form.Nil()))

	outerBody := form.List(form.Sym("when"), seqSym,
		form.List(form.Sym("if"), form.List(form.Sym("chunked-seq?"), seqSym), chunkedBranch, unchunkedBranch))

	return form.List(form.Sym("let*"), form.Vec(seqSym, form.List(form.Sym("seq"), seqExpr)),
		form.List(form.Sym("loop*"), form.Vec(seqSym, seqSym), outerBody))
}
