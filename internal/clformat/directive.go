// Package clformat implements spec.md section 4.7's cl-format: a
// Common-Lisp-compatible format-string compiler. compile-format parses a
// control string into a directive tree once; the compiled form is callable
// repeatedly against different argument lists (`(cl-format stream fmt &
// args)`), mirroring Common Lisp's FORMAT rather than Go's text/template.
//
// Grounded on the teacher's internal/evaluator/format.go: a hand-rolled
// scanner over a control string that walks flag/digit/verb runs
// character-by-character and validates as it goes (CountFormatVerbs). That
// scanner targets Go-style "%d"-shaped verbs; this package keeps its
// scan-then-validate shape but recognizes the much larger tilde-directive
// grammar spec.md section 4.7 requires, with nested grouping for
// ~{...~}/~[...~]/~<...~>/~(...~).
package clformat

import "fmt"

// Param is one comma-separated parameter slot before a directive letter:
// a literal integer, a literal character (`'c`), "v" (consume the next
// format arg as the parameter), "#" (the count of remaining format args),
// or simply absent (uses the directive's default).
type Param struct {
	Present    bool
	IsChar     bool
	Char       rune
	FromArg    bool
	FromRemain bool
	N          int
}

// Directive is one compiled unit: either literal text or a tilde command,
// optionally colon/at flagged, optionally wrapping a nested directive list
// (for iteration/conditional/justification) with ~; separated clauses.
type Directive struct {
	Literal string
	Verb    rune
	Params  []Param
	Colon   bool
	At      bool
	Clauses [][]Directive // ~;-separated bodies inside a grouping directive
}

func isLiteral(d Directive) bool { return d.Verb == 0 }

// Compile parses a control string into its directive list. Compiled output
// is pure data (no closures), so the same Compiled value can be replayed
// against many argument lists without reparsing -- compile-format's
// contract in spec.md section 4.7.
type Compiled struct {
	Directives []Directive
}

func Compile(ctrl string) (*Compiled, error) {
	p := &parser{s: ctrl}
	dirs, err := p.parseUntil("")
	if err != nil {
		return nil, err
	}
	return &Compiled{Directives: dirs}, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) peek() byte { return p.s[p.pos] }

// parseUntil reads directives until it sees a closing tilde-directive whose
// verb is in closers (e.g. "}" while inside ~{...~}), or EOF when closers
// is empty (top level). It returns without consuming the closer; the
// caller checks what stopped it.
func (p *parser) parseUntil(closers string) ([]Directive, error) {
	var out []Directive
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			out = append(out, Directive{Literal: string(lit)})
			lit = nil
		}
	}
	for !p.eof() {
		c := p.s[p.pos]
		if c != '~' {
			lit = append(lit, c)
			p.pos++
			continue
		}
		save := p.pos
		d, closed, err := p.parseDirective()
		if err != nil {
			return nil, err
		}
		if (closed != 0 && containsByte(closers, byte(closed))) ||
			(d.Verb == ';' && containsByte(closers, ';')) {
			p.pos = save
			flush()
			return out, nil
		}
		flush()
		out = append(out, d)
	}
	flush()
	return out, nil
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// parseDirective parses one ~... directive starting at p.pos (which must be
// '~'). If the directive is a bare closer (}]>)) it reports closed as that
// verb rune and does not consume input past reporting it, so parseUntil can
// detect the boundary; otherwise it fully consumes the directive (including
// any nested body) and returns it.
func (p *parser) parseDirective() (Directive, rune, error) {
	start := p.pos
	p.pos++ // consume '~'
	var params []Param
	for {
		if p.eof() {
			return Directive{}, 0, fmt.Errorf("clformat: unterminated directive")
		}
		c := p.s[p.pos]
		switch {
		case c == ',':
			params = append(params, Param{})
			p.pos++
		case c == '\'':
			p.pos++
			if p.eof() {
				return Directive{}, 0, fmt.Errorf("clformat: unterminated char param")
			}
			params = append(params, Param{Present: true, IsChar: true, Char: rune(p.s[p.pos])})
			p.pos++
		case c == 'v' || c == 'V':
			params = append(params, Param{Present: true, FromArg: true})
			p.pos++
		case c == '#':
			params = append(params, Param{Present: true, FromRemain: true})
			p.pos++
		case c == '-' || (c >= '0' && c <= '9'):
			j := p.pos
			if c == '-' {
				j++
			}
			for j < len(p.s) && p.s[j] >= '0' && p.s[j] <= '9' {
				j++
			}
			n := 0
			neg := false
			for i := p.pos; i < j; i++ {
				if p.s[i] == '-' {
					neg = true
					continue
				}
				n = n*10 + int(p.s[i]-'0')
			}
			if neg {
				n = -n
			}
			params = append(params, Param{Present: true, N: n})
			p.pos = j
		default:
			goto flags
		}
		if !p.eof() && p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
flags:
	var colon, at bool
	for !p.eof() && (p.s[p.pos] == ':' || p.s[p.pos] == '@') {
		if p.s[p.pos] == ':' {
			colon = true
		} else {
			at = true
		}
		p.pos++
	}
	if p.eof() {
		return Directive{}, 0, fmt.Errorf("clformat: unterminated directive at %d", start)
	}
	verb := rune(p.s[p.pos])
	p.pos++

	switch verb {
	case '}', ']', '>', ')':
		return Directive{}, verb, nil
	case '{':
		body, err := p.parseUntil("}")
		if err != nil {
			return Directive{}, 0, err
		}
		if err := p.expectClose('}'); err != nil {
			return Directive{}, 0, err
		}
		return Directive{Verb: verb, Params: params, Colon: colon, At: at, Clauses: [][]Directive{body}}, 0, nil
	case '(':
		body, err := p.parseUntil(")")
		if err != nil {
			return Directive{}, 0, err
		}
		if err := p.expectClose(')'); err != nil {
			return Directive{}, 0, err
		}
		return Directive{Verb: verb, Params: params, Colon: colon, At: at, Clauses: [][]Directive{body}}, 0, nil
	case '[':
		clauses, err := p.parseClauses("];")
		if err != nil {
			return Directive{}, 0, err
		}
		if err := p.expectClose(']'); err != nil {
			return Directive{}, 0, err
		}
		return Directive{Verb: verb, Params: params, Colon: colon, At: at, Clauses: clauses}, 0, nil
	case '<':
		clauses, err := p.parseClauses(">;")
		if err != nil {
			return Directive{}, 0, err
		}
		if err := p.expectClose('>'); err != nil {
			return Directive{}, 0, err
		}
		return Directive{Verb: verb, Params: params, Colon: colon, At: at, Clauses: clauses}, 0, nil
	default:
		return Directive{Verb: verb, Params: params, Colon: colon, At: at}, 0, nil
	}
}

// parseClauses reads a ~;-separated sequence of directive bodies, stopping
// at (without consuming) the final closer in closers.
func (p *parser) parseClauses(closers string) ([][]Directive, error) {
	var clauses [][]Directive
	for {
		body, err := p.parseUntil(closers)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, body)
		if p.eof() {
			return nil, fmt.Errorf("clformat: unterminated grouping directive")
		}
		save := p.pos
		d, _, err := p.parseDirective()
		if err != nil {
			return nil, err
		}
		if d.Verb == ';' {
			continue
		}
		p.pos = save
		return clauses, nil
	}
}

func (p *parser) expectClose(verb rune) error {
	_, closed, err := p.parseDirective()
	if err != nil {
		return err
	}
	if closed != verb {
		return fmt.Errorf("clformat: expected closing ~%c", verb)
	}
	return nil
}
