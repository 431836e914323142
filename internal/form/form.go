// Package form implements the reader-produced syntax tree described in
// spec.md section 4.2: an immutable, homoiconic Form tree that the macro
// expander rewrites (Form -> Form) before the analyzer ever sees it.
//
// Form mirrors the shape of the teacher's runtime Object interface
// (internal/evaluator/object.go: Type()/Inspect()/Hash()) rather than its
// ast.Node/Visitor pair, because Form data must be walked and rebuilt
// uniformly by macros the same way runtime values are -- a syntax tree that
// is also data wants the "tagged value" shape, not a statement/expression
// split.
package form

import (
	"math/big"
	"strings"

	"github.com/clojurewasm/corelisp/internal/token"
)

// Type names a Form variant, mirroring evaluator.ObjectType in the teacher.
type Type string

const (
	NilType      Type = "NIL"
	BoolType     Type = "BOOL"
	IntType      Type = "INT"
	FloatType    Type = "FLOAT"
	BigIntType   Type = "BIGINT"
	BigDecType   Type = "BIGDEC"
	RatioType    Type = "RATIO"
	CharType     Type = "CHAR"
	StringType   Type = "STRING"
	SymbolType   Type = "SYMBOL"
	KeywordType  Type = "KEYWORD"
	ListType     Type = "LIST"
	VectorType   Type = "VECTOR"
	MapType      Type = "MAP"
	SetType      Type = "SET"
	RegexType    Type = "REGEX"
	TaggedType   Type = "TAGGED" // #foo/bar data-reader literal with no registered handler yet
)

// Form is any node the reader can produce or a macro can rebuild.
type Form interface {
	FormType() Type
	Meta() *MapForm
	WithMeta(m *MapForm) Form
	Pos() token.Pos
	String() string
}

// Nil, Bool, Int, Float, Char, String scalars ---------------------------

type NilForm struct {
	P token.Pos
	M *MapForm
}

func (f *NilForm) FormType() Type      { return NilType }
func (f *NilForm) Meta() *MapForm      { return f.M }
func (f *NilForm) Pos() token.Pos      { return f.P }
func (f *NilForm) String() string      { return "nil" }
func (f *NilForm) WithMeta(m *MapForm) Form {
	n := *f
	n.M = m
	return &n
}

type BoolForm struct {
	P     token.Pos
	M     *MapForm
	Value bool
}

func (f *BoolForm) FormType() Type { return BoolType }
func (f *BoolForm) Meta() *MapForm { return f.M }
func (f *BoolForm) Pos() token.Pos { return f.P }
func (f *BoolForm) String() string {
	if f.Value {
		return "true"
	}
	return "false"
}
func (f *BoolForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type IntForm struct {
	P     token.Pos
	M     *MapForm
	Value int64
}

func (f *IntForm) FormType() Type           { return IntType }
func (f *IntForm) Meta() *MapForm           { return f.M }
func (f *IntForm) Pos() token.Pos           { return f.P }
func (f *IntForm) String() string           { return itoa(f.Value) }
func (f *IntForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type FloatForm struct {
	P     token.Pos
	M     *MapForm
	Value float64
}

func (f *FloatForm) FormType() Type           { return FloatType }
func (f *FloatForm) Meta() *MapForm           { return f.M }
func (f *FloatForm) Pos() token.Pos           { return f.P }
func (f *FloatForm) String() string           { return ftoa(f.Value) }
func (f *FloatForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type BigIntForm struct {
	P     token.Pos
	M     *MapForm
	Value *big.Int
}

func (f *BigIntForm) FormType() Type           { return BigIntType }
func (f *BigIntForm) Meta() *MapForm           { return f.M }
func (f *BigIntForm) Pos() token.Pos           { return f.P }
func (f *BigIntForm) String() string           { return f.Value.String() + "N" }
func (f *BigIntForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type BigDecForm struct {
	P        token.Pos
	M        *MapForm
	Unscaled *big.Int
	Scale    int32
}

func (f *BigDecForm) FormType() Type { return BigDecType }
func (f *BigDecForm) Meta() *MapForm { return f.M }
func (f *BigDecForm) Pos() token.Pos { return f.P }
func (f *BigDecForm) String() string {
	return bigDecString(f.Unscaled, f.Scale) + "M"
}
func (f *BigDecForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type RatioForm struct {
	P        token.Pos
	M        *MapForm
	Num, Den *big.Int
}

func (f *RatioForm) FormType() Type { return RatioType }
func (f *RatioForm) Meta() *MapForm { return f.M }
func (f *RatioForm) Pos() token.Pos { return f.P }
func (f *RatioForm) String() string {
	return f.Num.String() + "/" + f.Den.String()
}
func (f *RatioForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type CharForm struct {
	P     token.Pos
	M     *MapForm
	Value rune
}

func (f *CharForm) FormType() Type { return CharType }
func (f *CharForm) Meta() *MapForm { return f.M }
func (f *CharForm) Pos() token.Pos { return f.P }
func (f *CharForm) String() string { return "\\" + string(f.Value) }
func (f *CharForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type StringForm struct {
	P     token.Pos
	M     *MapForm
	Value string
}

func (f *StringForm) FormType() Type { return StringType }
func (f *StringForm) Meta() *MapForm { return f.M }
func (f *StringForm) Pos() token.Pos { return f.P }
func (f *StringForm) String() string { return `"` + escapeString(f.Value) + `"` }
func (f *StringForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

type RegexForm struct {
	P       token.Pos
	M       *MapForm
	Pattern string
}

func (f *RegexForm) FormType() Type { return RegexType }
func (f *RegexForm) Meta() *MapForm { return f.M }
func (f *RegexForm) Pos() token.Pos { return f.P }
func (f *RegexForm) String() string { return `#"` + f.Pattern + `"` }
func (f *RegexForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

// Symbol and Keyword ------------------------------------------------------

type SymbolForm struct {
	P    token.Pos
	M    *MapForm
	NS   string // empty if unqualified
	Name string
}

func (f *SymbolForm) FormType() Type { return SymbolType }
func (f *SymbolForm) Meta() *MapForm { return f.M }
func (f *SymbolForm) Pos() token.Pos { return f.P }
func (f *SymbolForm) String() string {
	if f.NS == "" {
		return f.Name
	}
	return f.NS + "/" + f.Name
}
func (f *SymbolForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

// Is reports whether this is the unqualified symbol named name.
func (f *SymbolForm) Is(name string) bool { return f.NS == "" && f.Name == name }

type KeywordForm struct {
	P    token.Pos
	M    *MapForm
	NS   string
	Name string
}

func (f *KeywordForm) FormType() Type { return KeywordType }
func (f *KeywordForm) Meta() *MapForm { return f.M }
func (f *KeywordForm) Pos() token.Pos { return f.P }
func (f *KeywordForm) String() string {
	if f.NS == "" {
		return ":" + f.Name
	}
	return ":" + f.NS + "/" + f.Name
}
func (f *KeywordForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

// Compound forms ------------------------------------------------------------

type ListForm struct {
	P     token.Pos
	M     *MapForm
	Items []Form
}

func (f *ListForm) FormType() Type { return ListType }
func (f *ListForm) Meta() *MapForm { return f.M }
func (f *ListForm) Pos() token.Pos { return f.P }
func (f *ListForm) String() string { return "(" + joinForms(f.Items) + ")" }
func (f *ListForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

// Head returns the first item's symbol name if the list is non-empty and
// starts with a bare symbol, used by the macro expander to dispatch on
// head-of-list position (spec.md section 4.5).
func (f *ListForm) Head() (*SymbolForm, bool) {
	if len(f.Items) == 0 {
		return nil, false
	}
	s, ok := f.Items[0].(*SymbolForm)
	return s, ok
}

type VectorForm struct {
	P     token.Pos
	M     *MapForm
	Items []Form
}

func (f *VectorForm) FormType() Type { return VectorType }
func (f *VectorForm) Meta() *MapForm { return f.M }
func (f *VectorForm) Pos() token.Pos { return f.P }
func (f *VectorForm) String() string { return "[" + joinForms(f.Items) + "]" }
func (f *VectorForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

// MapForm holds alternating key/value Forms in insertion-read order
// (spec.md section 3: "maps preserve the order they were read").
type MapForm struct {
	P     token.Pos
	M     *MapForm
	Pairs []Form // alternating k0,v0,k1,v1,...
}

func (f *MapForm) FormType() Type { return MapType }
func (f *MapForm) Meta() *MapForm { return f.M }
func (f *MapForm) Pos() token.Pos { return f.P }
func (f *MapForm) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < len(f.Pairs); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Pairs[i].String())
		b.WriteByte(' ')
		b.WriteString(f.Pairs[i+1].String())
	}
	b.WriteByte('}')
	return b.String()
}
func (f *MapForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

// Get looks up a key by structural equality; used by the reader to pull
// e.g. {:tag ...} out of parsed metadata maps.
func (f *MapForm) Get(key Form) (Form, bool) {
	for i := 0; i < len(f.Pairs); i += 2 {
		if Equal(f.Pairs[i], key) {
			return f.Pairs[i+1], true
		}
	}
	return nil, false
}

type SetForm struct {
	P     token.Pos
	M     *MapForm
	Items []Form
}

func (f *SetForm) FormType() Type { return SetType }
func (f *SetForm) Meta() *MapForm { return f.M }
func (f *SetForm) Pos() token.Pos { return f.P }
func (f *SetForm) String() string { return "#{" + joinForms(f.Items) + "}" }
func (f *SetForm) WithMeta(m *MapForm) Form { n := *f; n.M = m; return &n }

// helpers --------------------------------------------------------------

func joinForms(items []Form) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(it.String())
	}
	return b.String()
}

// Equal is structural equality over Forms, ignoring metadata (spec.md
// section 3 invariant: "Metadata is not part of equality").
func Equal(a, b Form) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.FormType() != b.FormType() {
		return false
	}
	switch x := a.(type) {
	case *NilForm:
		return true
	case *BoolForm:
		return x.Value == b.(*BoolForm).Value
	case *IntForm:
		return x.Value == b.(*IntForm).Value
	case *FloatForm:
		return x.Value == b.(*FloatForm).Value
	case *BigIntForm:
		return x.Value.Cmp(b.(*BigIntForm).Value) == 0
	case *BigDecForm:
		y := b.(*BigDecForm)
		return x.Scale == y.Scale && x.Unscaled.Cmp(y.Unscaled) == 0
	case *RatioForm:
		y := b.(*RatioForm)
		return x.Num.Cmp(y.Num) == 0 && x.Den.Cmp(y.Den) == 0
	case *CharForm:
		return x.Value == b.(*CharForm).Value
	case *StringForm:
		return x.Value == b.(*StringForm).Value
	case *RegexForm:
		return x.Pattern == b.(*RegexForm).Pattern
	case *SymbolForm:
		y := b.(*SymbolForm)
		return x.NS == y.NS && x.Name == y.Name
	case *KeywordForm:
		y := b.(*KeywordForm)
		return x.NS == y.NS && x.Name == y.Name
	case *ListForm:
		return equalSeq(x.Items, b.(*ListForm).Items)
	case *VectorForm:
		return equalSeq(x.Items, b.(*VectorForm).Items)
	case *SetForm:
		return equalSetItems(x.Items, b.(*SetForm).Items)
	case *MapForm:
		return equalMapPairs(x.Pairs, b.(*MapForm).Pairs)
	}
	return false
}

func equalSeq(a, b []Form) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSetItems(a, b []Form) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && Equal(x, y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalMapPairs(a, b []Form) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i += 2 {
		v, ok := mapGet(b, a[i])
		if !ok || !Equal(v, a[i+1]) {
			return false
		}
	}
	return true
}

func mapGet(pairs []Form, key Form) (Form, bool) {
	for i := 0; i < len(pairs); i += 2 {
		if Equal(pairs[i], key) {
			return pairs[i+1], true
		}
	}
	return nil, false
}

// Sym, Kw, List, Vec, Mp, Set construct bare forms with a zero position and
// no metadata, for use by the macro expander when synthesizing new code.
func Sym(name string) *SymbolForm          { return &SymbolForm{Name: name} }
func SymNS(ns, name string) *SymbolForm    { return &SymbolForm{NS: ns, Name: name} }
func Kw(name string) *KeywordForm          { return &KeywordForm{Name: name} }
func KwNS(ns, name string) *KeywordForm    { return &KeywordForm{NS: ns, Name: name} }
func List(items ...Form) *ListForm         { return &ListForm{Items: items} }
func Vec(items ...Form) *VectorForm        { return &VectorForm{Items: items} }
func Mp(pairs ...Form) *MapForm            { return &MapForm{Pairs: pairs} }
func Set(items ...Form) *SetForm           { return &SetForm{Items: items} }
func Bool(v bool) *BoolForm                { return &BoolForm{Value: v} }
func Int(v int64) *IntForm                 { return &IntForm{Value: v} }
func Str(v string) *StringForm             { return &StringForm{Value: v} }
func Nil() *NilForm                        { return &NilForm{} }

// WithMetaFrom copies metadata from src onto dst, preserving it across a
// macro's rewrite (spec.md section 4.5: "Preserve source metadata on forms
// when wrapping them").
func WithMetaFrom(dst, src Form) Form {
	if src.Meta() == nil {
		return dst
	}
	return dst.WithMeta(src.Meta())
}
