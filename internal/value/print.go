package value

import "strings"

// PrStr renders a value the readable way (`pr-str`): strings are quoted and
// escaped, chars use their \name form, collections recurse through PrStr on
// every element. Each value's String() stays the "%v"-ish default
// used by error messages and Go-side debugging; PrStr is what the Clojure
// side's `pr`/`prn`/`pr-str` builtins call.
func PrStr(v Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case Nil:
		return "nil"
	case String:
		return quoteString(string(x))
	case Char:
		return "\\" + charName(rune(x))
	case *List:
		return prSeq("(", ")", seqToSlice(x.Seq()))
	case *Cons, *ChunkedCons, *LazySeq:
		seq, _ := v.(Seqable)
		s := seq.Seq()
		if s == nil {
			return "()"
		}
		return prSeq("(", ")", seqToSlice(s))
	case *Vector:
		return prSeq("[", "]", x.items)
	case *ArrayMap:
		return prMap(x.Items())
	case *HashMap:
		return prMap(x.Items())
	case *HashSet:
		return prSeq("#{", "}", x.Elements())
	}
	return v.String()
}

func prSeq(open, close string, items []Value) string {
	var b strings.Builder
	b.WriteString(open)
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(PrStr(it))
	}
	b.WriteString(close)
	return b.String()
}

func prMap(items [][2]Value) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(PrStr(it[0]))
		b.WriteByte(' ')
		b.WriteString(PrStr(it[1]))
	}
	b.WriteByte('}')
	return b.String()
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func charName(r rune) string {
	switch r {
	case '\n':
		return "newline"
	case ' ':
		return "space"
	case '\t':
		return "tab"
	case '\r':
		return "return"
	case '\f':
		return "formfeed"
	case '\b':
		return "backspace"
	}
	return string(r)
}

// PrintStr renders a value the human way (`print-str`): strings and chars
// print as their own bytes, everything else falls back to PrStr.
func PrintStr(v Value) string {
	switch x := v.(type) {
	case String:
		return string(x)
	case Char:
		return string(rune(x))
	}
	return PrStr(v)
}
