package clformat

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/clojurewasm/corelisp/internal/value"
)

// reduced signals ~^'s early exit out of the innermost iteration/
// conditional/top-level directive list.
type reduced struct{}

func (reduced) Error() string { return "clformat: ~^ early exit" }

type state struct {
	w    io.Writer
	args []value.Value
	pos  int
}

func (s *state) next() (value.Value, bool) {
	if s.pos >= len(s.args) {
		return value.NilValue, false
	}
	v := s.args[s.pos]
	s.pos++
	return v, true
}

func (s *state) remaining() int { return len(s.args) - s.pos }

func (s *state) write(str string) { io.WriteString(s.w, str) }

// Exec runs a compiled format against args, writing output to w. It
// returns only an error; the count of args consumed is not reported.
func Exec(w io.Writer, c *Compiled, args []value.Value) error {
	s := &state{w: w, args: args}
	return execList(s, c.Directives)
}

func execList(s *state, dirs []Directive) error {
	for _, d := range dirs {
		if err := execOne(s, d); err != nil {
			return err
		}
	}
	return nil
}

func paramInt(s *state, p []Param, i int, def int) int {
	if i >= len(p) || !p[i].Present {
		return def
	}
	if p[i].FromArg {
		v, ok := s.next()
		if !ok {
			return def
		}
		if n, ok := v.(value.Int); ok {
			return int(n)
		}
		return def
	}
	if p[i].FromRemain {
		return s.remaining()
	}
	return p[i].N
}

func paramChar(p []Param, i int, def rune) rune {
	if i >= len(p) || !p[i].Present {
		return def
	}
	if p[i].IsChar {
		return p[i].Char
	}
	return rune(p[i].N)
}

func execOne(s *state, d Directive) error {
	if isLiteral(d) {
		s.write(d.Literal)
		return nil
	}
	switch d.Verb {
	case 'A':
		v, _ := s.next()
		pad(s, d, v.String())
	case 'S':
		v, _ := s.next()
		pad(s, d, value.PrStr(v))
	case 'D':
		return execRadix(s, d, 10)
	case 'B':
		return execRadix(s, d, 2)
	case 'O':
		return execRadix(s, d, 8)
	case 'X':
		return execRadix(s, d, 16)
	case 'R':
		return execRadix(s, d, paramInt(s, d.Params, 0, 10))
	case 'F', 'E', 'G':
		return execFloat(s, d)
	case '$':
		v, _ := s.next()
		f := toFloat(v)
		prec := paramInt(s, d.Params, 0, 2)
		s.write(strconv.FormatFloat(f, 'f', prec, 64))
	case 'C':
		v, _ := s.next()
		if ch, ok := v.(value.Char); ok {
			s.write(string(rune(ch)))
		} else {
			s.write(v.String())
		}
	case 'P':
		v, _ := s.next()
		word := "s"
		if d.At {
			word = "ies"
		}
		if isOne(v) {
			if d.At {
				word = "y"
			} else {
				word = ""
			}
		}
		s.write(word)
	case '%':
		n := paramInt(s, d.Params, 0, 1)
		s.write(strings.Repeat("\n", n))
	case '&':
		n := paramInt(s, d.Params, 0, 1)
		s.write(strings.Repeat("\n", n))
	case '|':
		n := paramInt(s, d.Params, 0, 1)
		s.write(strings.Repeat("\f", n))
	case '~':
		n := paramInt(s, d.Params, 0, 1)
		s.write(strings.Repeat("~", n))
	case '*':
		n := paramInt(s, d.Params, 0, 1)
		if d.Colon {
			s.pos -= n
		} else {
			s.pos += n
		}
	case '^':
		if s.remaining() == 0 {
			return reduced{}
		}
	case '?':
		return execIndirect(s, d)
	case '{':
		return execIteration(s, d)
	case '[':
		return execConditional(s, d)
	case '(':
		return execCase(s, d)
	case '<':
		return execJustify(s, d)
	default:
		return fmt.Errorf("clformat: unsupported directive ~%c", d.Verb)
	}
	return nil
}

// pad applies a minimum column width (the directive's first parameter),
// left- or right-justified by the @ flag, the way ~A/~S's mincol parameter
// works.
func pad(s *state, d Directive, str string) {
	mincol := paramInt(s, d.Params, 0, 0)
	if len(str) >= mincol {
		s.write(str)
		return
	}
	fill := strings.Repeat(" ", mincol-len(str))
	if d.At {
		s.write(fill + str)
	} else {
		s.write(str + fill)
	}
}

func execRadix(s *state, d Directive, radix int) error {
	v, _ := s.next()
	n, ok := toInt(v)
	if !ok {
		s.write(v.String())
		return nil
	}
	str := strconv.FormatInt(n, radix)
	if d.Colon && radix == 10 {
		str = humanize.Comma(n)
	}
	mincol := paramInt(s, d.Params, 0, 0)
	padChar := paramChar(d.Params, 2, ' ')
	if len(str) < mincol {
		str = strings.Repeat(string(padChar), mincol-len(str)) + str
	}
	if d.At && n >= 0 {
		str = "+" + str
	}
	s.write(str)
	return nil
}

func execFloat(s *state, d Directive) error {
	v, _ := s.next()
	f := toFloat(v)
	prec := paramInt(s, d.Params, 1, -1)
	verb := byte('f')
	if d.Verb == 'E' {
		verb = 'e'
	} else if d.Verb == 'G' {
		verb = 'g'
	}
	var str string
	if prec < 0 {
		str = strconv.FormatFloat(f, verb, -1, 64)
	} else {
		str = strconv.FormatFloat(f, verb, prec, 64)
	}
	if d.At && f >= 0 {
		str = "+" + str
	}
	s.write(str)
	return nil
}

func toInt(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Int:
		return int64(x), true
	case value.Float:
		return int64(x), true
	}
	return 0, false
}

func toFloat(v value.Value) float64 {
	switch x := v.(type) {
	case value.Int:
		return float64(x)
	case value.Float:
		return float64(x)
	}
	return 0
}

func isOne(v value.Value) bool {
	n, ok := toInt(v)
	return ok && n == 1
}

// execIndirect (~?) treats the next arg as a control string and formats it
// against the remaining args, consuming however many that sub-format uses.
func execIndirect(s *state, d Directive) error {
	fv, _ := s.next()
	fs, ok := fv.(value.String)
	if !ok {
		return fmt.Errorf("clformat: ~? expects a format string arg")
	}
	sub, err := Compile(string(fs))
	if err != nil {
		return err
	}
	var subArgs []value.Value
	if d.At {
		subArgs = s.args[s.pos:]
	} else {
		v, _ := s.next()
		subArgs = seqToSlice(v)
	}
	inner := &state{w: s.w, args: subArgs}
	if err := execList(inner, sub.Directives); err != nil {
		if _, ok := err.(reduced); !ok {
			return err
		}
	}
	if d.At {
		s.pos = len(s.args)
	}
	return nil
}

// execIteration (~{...~}) repeats its body over successive elements of the
// next arg (a list), or over the remaining format args when @-flagged;
// :-flagged means each element is itself a sublist of args for one pass.
func execIteration(s *state, d Directive) error {
	body := d.Clauses[0]
	var items []value.Value
	if d.At {
		items = s.args[s.pos:]
		s.pos = len(s.args)
	} else {
		v, _ := s.next()
		items = seqToSlice(v)
	}
	maxIter := paramInt(s, d.Params, 0, -1)
	count := 0
	if d.Colon {
		for _, it := range items {
			if maxIter >= 0 && count >= maxIter {
				break
			}
			sub := &state{w: s.w, args: seqToSlice(it)}
			if err := execList(sub, body); err != nil {
				if _, ok := err.(reduced); ok {
					count++
					continue
				}
				return err
			}
			count++
		}
		return nil
	}
	sub := &state{w: s.w, args: items}
	for sub.remaining() > 0 {
		if maxIter >= 0 && count >= maxIter {
			break
		}
		before := sub.pos
		if err := execList(sub, body); err != nil {
			if _, ok := err.(reduced); ok {
				count++
				break
			}
			return err
		}
		count++
		if sub.pos == before {
			break // body consumed nothing: avoid an infinite loop
		}
	}
	return nil
}

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

func seqToSlice(v value.Value) []value.Value {
	if vec, ok := v.(*value.Vector); ok {
		return append([]value.Value{}, vec.Items()...)
	}
	var out []value.Value
	for s := toSeq(v); s != nil; s = toSeq(s.Rest()) {
		out = append(out, s.First())
	}
	return out
}

// execConditional (~[...~]) picks the n-th clause by the next arg's integer
// value (or, :-flagged, treats it as a boolean else/then pair; @-flagged,
// runs the single clause iff the arg is truthy without consuming it twice).
func execConditional(s *state, d Directive) error {
	if d.Colon {
		v, _ := s.next()
		idx := 0
		if value.Truthy(v) {
			idx = 1
		}
		if idx < len(d.Clauses) {
			return execList(s, d.Clauses[idx])
		}
		return nil
	}
	if d.At {
		v, _ := s.next()
		if value.Truthy(v) && len(d.Clauses) > 0 {
			return execList(s, d.Clauses[0])
		}
		return nil
	}
	v, _ := s.next()
	n, _ := toInt(v)
	if int(n) >= 0 && int(n) < len(d.Clauses) {
		return execList(s, d.Clauses[n])
	}
	return nil
}

// execCase (~(...~)) runs its body against a nested writer, then applies
// case conversion to the captured text: ~(~) down, ~:(~) each-word
// capitalized (title case), ~@(~) first letter up, ~:@(~) up.
func execCase(s *state, d Directive) error {
	var b strings.Builder
	sub := &state{w: &b, args: s.args, pos: s.pos}
	if err := execList(sub, d.Clauses[0]); err != nil {
		if _, ok := err.(reduced); !ok {
			return err
		}
	}
	s.pos = sub.pos
	text := b.String()
	switch {
	case d.Colon && d.At:
		text = cases.Upper(language.Und).String(text)
	case d.Colon:
		text = cases.Title(language.Und).String(text)
	case d.At:
		if text != "" {
			text = strings.ToUpper(text[:1]) + text[1:]
		}
	default:
		text = cases.Lower(language.Und).String(text)
	}
	s.write(text)
	return nil
}

// execJustify (~<...~>) is spec.md section 4.7's justify-or-logical-block
// directive. Full logical-block layout is internal/pprint's job (shared
// via the same Doc/Block tree when :-flagged per spec.md); the plain,
// non-colon case here does column justification: clauses are rendered
// independently and joined with padding so the total line is mincol wide.
func execJustify(s *state, d Directive) error {
	mincol := paramInt(s, d.Params, 0, 0)
	parts := make([]string, len(d.Clauses))
	for i, clause := range d.Clauses {
		var b strings.Builder
		sub := &state{w: &b, args: s.args, pos: s.pos}
		if err := execList(sub, clause); err != nil {
			if _, ok := err.(reduced); !ok {
				return err
			}
		}
		s.pos = sub.pos
		parts[i] = b.String()
	}
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if total >= mincol || len(parts) == 0 {
		s.write(strings.Join(parts, ""))
		return nil
	}
	pad := mincol - total
	if len(parts) == 1 {
		if d.At {
			s.write(strings.Repeat(" ", pad) + parts[0])
		} else {
			s.write(parts[0] + strings.Repeat(" ", pad))
		}
		return nil
	}
	gaps := len(parts) - 1
	each := pad / gaps
	extra := pad % gaps
	s.write(parts[0])
	for i := 1; i < len(parts); i++ {
		n := each
		if i <= extra {
			n++
		}
		s.write(strings.Repeat(" ", n))
		s.write(parts[i])
	}
	return nil
}
