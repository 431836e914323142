package pprint

import (
	"io"
	"strings"
)

// blockCtx mirrors spec.md section 4.7's per-block {done-nl?,
// intra-block-nl?} fields plus a parent link, since breaking a nl sets
// done-nl? on the block and every ancestor, and intra-block-nl? on parents.
type blockCtx struct {
	startCol     int
	doneNL       bool
	intraBlockNL bool
	parent       *blockCtx
}

func (bc *blockCtx) markBreak() {
	for b := bc; b != nil; b = b.parent {
		b.doneNL = true
	}
	for p := bc.parent; p != nil; p = p.parent {
		p.intraBlockNL = true
	}
}

// measure returns a Doc's width if rendered flat (nl tokens as one space)
// and whether it contains a mandatory nl, which makes "rendered flat"
// impossible -- a mandatory nl anywhere inside a section makes that whole
// section count as not-fitting for an ancestor's fits check.
func measure(d Doc) (w int, mandatory bool) {
	switch x := d.(type) {
	case Text:
		return textWidth(string(x)), false
	case NL:
		if x.Kind == Mandatory {
			return 0, true
		}
		return 1, false
	case *Block:
		w := textWidth(x.Prefix) + textWidth(x.Suffix)
		mand := false
		for _, c := range x.Children {
			cw, cm := measure(c)
			w += cw
			if cm {
				mand = true
			}
		}
		return w, mand
	}
	return 0, false
}

func flatWidth(docs []Doc) int {
	w := 0
	for _, d := range docs {
		cw, _ := measure(d)
		w += cw
	}
	return w
}

func fitsFlat(docs []Doc) bool {
	for _, d := range docs {
		if _, mand := measure(d); mand {
			return false
		}
	}
	return true
}

// fits reports whether docs, laid out from column col, stay within margin
// -- used for the linear/fill/miser "does the remaining section fit"
// checks. Any mandatory nl in the section makes it never fit, since it
// cannot be rendered without a real break.
func fits(col, margin int, docs []Doc) bool {
	w := 0
	for _, d := range docs {
		cw, mand := measure(d)
		if mand {
			return false
		}
		w += cw
		if col+w > margin {
			return false
		}
	}
	return true
}

// upToNextNL returns the prefix of docs before the next top-level NL token,
// the :fill directive's "sub-section" per spec.md section 4.7.
func upToNextNL(docs []Doc) []Doc {
	for i, d := range docs {
		if _, ok := d.(NL); ok {
			return docs[:i]
		}
	}
	return docs
}

// Writer renders a Doc tree to an io.Writer, tracking the current column so
// fill/linear/miser decisions can compare against margin.
type Writer struct {
	out        io.Writer
	col        int
	margin     int
	miserWidth int
}

func NewWriter(out io.Writer, margin, miserWidth int) *Writer {
	return &Writer{out: out, margin: margin, miserWidth: miserWidth}
}

func (w *Writer) Column() int { return w.col }

func (w *Writer) writeRaw(s string) {
	io.WriteString(w.out, s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		w.col = textWidth(s[i+1:])
	} else {
		w.col += textWidth(s)
	}
}

func (w *Writer) newline(perLinePrefix string, indentCol int) {
	w.writeRaw("\n")
	if perLinePrefix != "" {
		w.writeRaw(perLinePrefix)
	}
	if indentCol > 0 {
		w.writeRaw(strings.Repeat(" ", indentCol))
	}
}

// Render lays out the root Doc (ordinarily a *Block) at the writer's
// current column.
func (w *Writer) Render(d Doc) {
	switch x := d.(type) {
	case Text:
		w.writeRaw(string(x))
	case NL:
		w.writeRaw(" ")
	case *Block:
		w.renderBlock(x, &blockCtx{startCol: w.col})
	}
}

func (w *Writer) renderFlat(d Doc) {
	switch x := d.(type) {
	case Text:
		w.writeRaw(string(x))
	case NL:
		w.writeRaw(" ")
	case *Block:
		w.writeRaw(x.Prefix)
		for _, c := range x.Children {
			w.renderFlat(c)
		}
		w.writeRaw(x.Suffix)
	}
}

func (w *Writer) renderBlock(b *Block, ctx *blockCtx) {
	w.writeRaw(b.Prefix)
	ctx.startCol = w.col
	if fitsFlat(b.Children) && w.col+flatWidth(b.Children) <= w.margin {
		for _, c := range b.Children {
			w.renderFlat(c)
		}
		w.writeRaw(b.Suffix)
		return
	}
	for i, c := range b.Children {
		switch x := c.(type) {
		case Text:
			w.writeRaw(string(x))
		case NL:
			if w.decideBreak(x.Kind, ctx, b.Children[i+1:]) {
				ctx.markBreak()
				w.newline(b.PerLinePrefix, ctx.startCol+b.Indent)
			} else {
				w.writeRaw(" ")
			}
		case *Block:
			w.renderBlock(x, &blockCtx{startCol: w.col, parent: ctx})
		}
	}
	w.writeRaw(b.Suffix)
}

func (w *Writer) decideBreak(kind NLKind, ctx *blockCtx, rest []Doc) bool {
	within := w.margin-ctx.startCol <= w.miserWidth
	switch kind {
	case Mandatory:
		return true
	case Linear:
		if ctx.doneNL {
			return true
		}
		return !fits(w.col, w.margin, rest)
	case Miser:
		if !within {
			return false
		}
		if ctx.doneNL {
			return true
		}
		return !fits(w.col, w.margin, rest)
	case Fill:
		if ctx.intraBlockNL {
			return true
		}
		if !fits(w.col, w.margin, upToNextNL(rest)) {
			return true
		}
		return within && ctx.doneNL
	}
	return false
}
