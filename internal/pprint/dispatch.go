package pprint

import "github.com/clojurewasm/corelisp/internal/value"

// toSeq mirrors internal/builtins/sequtil.go's toSeq: Seqable is checked
// before Seq since concrete seq types implement both but only Seq()
// correctly collapses an exhausted seq to nil.
func toSeq(v value.Value) value.Seq {
	switch x := v.(type) {
	case nil, value.Nil:
		return nil
	case value.Seqable:
		return x.Seq()
	case value.Seq:
		return x
	default:
		return nil
	}
}

func seqSlice(v value.Value) []value.Value {
	s := toSeq(v)
	var out []value.Value
	for s != nil {
		out = append(out, s.First())
		s = toSeq(s.Rest())
	}
	return out
}

// SimpleDispatch builds the Doc tree for *print-pprint-dispatch*'s default:
// collections become a logical block with a linear nl between elements
// (spec.md section 4.7's simple-dispatch), scalars fall back to pr-str.
func SimpleDispatch(v value.Value) Doc {
	switch x := v.(type) {
	case *value.Vector:
		return collBlock("[", "]", x.Items())
	case value.Map:
		return mapBlock(x.Items())
	case *value.HashSet:
		return collBlock("#{", "}", x.Elements())
	case value.Seq, value.Seqable:
		return collBlock("(", ")", seqSlice(v))
	}
	return Text(value.PrStr(v))
}

func collBlock(prefix, suffix string, items []value.Value) *Block {
	children := make([]Doc, 0, len(items)*2)
	for i, it := range items {
		if i > 0 {
			children = append(children, NL{Kind: Linear})
		}
		children = append(children, SimpleDispatch(it))
	}
	return NewBlock(prefix, suffix, len(prefix), children...)
}

func mapBlock(pairs [][2]value.Value) *Block {
	children := make([]Doc, 0, len(pairs)*2)
	for i, p := range pairs {
		if i > 0 {
			children = append(children, NL{Kind: Linear})
		}
		children = append(children, NewBlock("", "", 0, SimpleDispatch(p[0]), Text(" "), SimpleDispatch(p[1])))
	}
	return NewBlock("{", "}", 1, children...)
}

// CodeDispatch formats a form the way Clojure code is conventionally
// indented: a handful of special forms (def/defn/let/if/cond/fn*/ns) get a
// fixed 2-space body indent instead of the aligned-under-second-element
// indent simple-dispatch would produce for an ordinary list/call.
var codeIndentHeads = map[string]bool{
	"def": true, "defn": true, "defn-": true, "let": true, "let*": true,
	"if": true, "if-not": true, "cond": true, "fn": true, "fn*": true,
	"ns": true, "loop": true, "loop*": true, "when": true, "when-not": true,
	"condp": true,
}

func CodeDispatch(v value.Value) Doc {
	s := toSeq(v)
	if s == nil {
		return SimpleDispatch(v)
	}
	items := seqSlice(v)
	if len(items) == 0 {
		return Text("()")
	}
	head, ok := items[0].(value.Symbol)
	if !ok || !codeIndentHeads[head.Name] {
		return collBlock("(", ")", items)
	}
	children := []Doc{Text(value.PrStr(items[0]))}
	for _, it := range items[1:] {
		children = append(children, NL{Kind: Linear}, CodeDispatch(it))
	}
	return NewBlock("(", ")", 2, children...)
}
