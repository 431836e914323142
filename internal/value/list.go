package value

import "strings"

// List is a persistent singly-linked list: conj prepends, peek/pop act at
// the front (spec.md section 4.3).
type List struct {
	empty bool
	first Value
	rest  *List
	count int
}

var emptyListSingleton = &List{empty: true}

func EmptyList() *List { return emptyListSingleton }

// EmptySeq is the canonical empty sequence (the empty-list singleton) that
// Cons/ChunkedCons use as their terminating rest. Its own Seq() is nil, so
// seqNext/Next on it yield nil, matching Clojure's `next` contract (nil
// means "no more elements").
var EmptySeq Seq = emptyListSingleton

func NewListFrom(items []Value) *List {
	l := emptyListSingleton
	for i := len(items) - 1; i >= 0; i-- {
		l = l.Conj(items[i])
	}
	return l
}

func (l *List) Type() Type { return ListType }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	cur := l
	first := true
	for !cur.empty {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(cur.first.String())
		cur = cur.rest
	}
	b.WriteByte(')')
	return b.String()
}

func (l *List) Hash() uint32 {
	elems := make([]Value, 0, l.count)
	cur := l
	for !cur.empty {
		elems = append(elems, cur.first)
		cur = cur.rest
	}
	return HashOrdered(1, elems)
}

func (l *List) Count() int { return l.count }

func (l *List) First() Value {
	if l.empty {
		return Nil{}
	}
	return l.first
}

func (l *List) Rest() Seq {
	if l.empty {
		return l
	}
	return l.rest
}

func (l *List) Seq() Seq {
	if l.empty {
		return nil
	}
	return l
}

func (l *List) Conj(v Value) *List {
	return &List{first: v, rest: l, count: l.count + 1}
}

func (l *List) Peek() Value { return l.First() }

func (l *List) Pop() (*List, bool) {
	if l.empty {
		return l, false
	}
	return l.rest, true
}

func (l *List) IsEmpty() bool { return l.empty }
