package value

// Map is the shared contract over ArrayMap and HashMap so builtins can
// treat either representation uniformly (spec.md section 4.3: "array-map
// ... promoted to hash-map when size exceeds a threshold").
type Map interface {
	Value
	Get(key Value) (Value, bool)
	Assoc(key, val Value) Map
	Dissoc(key Value) Map
	Items() [][2]Value
	Count() int
}

// arrayMapThreshold is the array-map -> hash-map promotion point; spec.md
// allows any value from 8 to 32.
const arrayMapThreshold = 8

// ArrayMap is a small linear persistent map (spec.md section 4.3).
type ArrayMap struct {
	pairs [][2]Value
}

func EmptyArrayMap() *ArrayMap { return &ArrayMap{} }

func NewArrayMap(pairs [][2]Value) *ArrayMap { return &ArrayMap{pairs: pairs} }

func (m *ArrayMap) Type() Type      { return MapType }
func (m *ArrayMap) String() string  { return mapString(m) }
func (m *ArrayMap) Count() int      { return len(m.pairs) }
func (m *ArrayMap) Items() [][2]Value {
	out := make([][2]Value, len(m.pairs))
	copy(out, m.pairs)
	return out
}
func (m *ArrayMap) Hash() uint32 { return HashUnorderedPairs(m.pairs) }

func (m *ArrayMap) Get(key Value) (Value, bool) {
	for _, p := range m.pairs {
		if Equal(p[0], key) {
			return p[1], true
		}
	}
	return nil, false
}

// Assoc returns a Map -- an ArrayMap if still small enough, else a freshly
// built HashMap, implementing the promotion rule.
func (m *ArrayMap) Assoc(key, val Value) Map {
	for i, p := range m.pairs {
		if Equal(p[0], key) {
			next := make([][2]Value, len(m.pairs))
			copy(next, m.pairs)
			next[i] = [2]Value{key, val}
			return &ArrayMap{pairs: next}
		}
	}
	if len(m.pairs) >= arrayMapThreshold {
		h := EmptyHashMap()
		var hm Map = h
		for _, p := range m.pairs {
			hm = hm.Assoc(p[0], p[1])
		}
		return hm.Assoc(key, val)
	}
	next := make([][2]Value, len(m.pairs)+1)
	copy(next, m.pairs)
	next[len(m.pairs)] = [2]Value{key, val}
	return &ArrayMap{pairs: next}
}

// Seq renders the map as a seq of 2-element vectors (map entries), the way
// `(seq {...})` does in Clojure.
func (m *ArrayMap) Seq() Seq { return mapSeq(m.pairs) }

func (m *ArrayMap) Dissoc(key Value) Map {
	for i, p := range m.pairs {
		if Equal(p[0], key) {
			next := make([][2]Value, 0, len(m.pairs)-1)
			next = append(next, m.pairs[:i]...)
			next = append(next, m.pairs[i+1:]...)
			return &ArrayMap{pairs: next}
		}
	}
	return m
}

// HashSet wraps a Map from element to itself (spec.md section 3: "persistent
// hash-set").
type HashSet struct {
	m Map
}

func EmptySet() *HashSet { return &HashSet{m: EmptyArrayMap()} }

func NewSet(elems []Value) *HashSet {
	var m Map = EmptyArrayMap()
	for _, e := range elems {
		m = m.Assoc(e, e)
	}
	return &HashSet{m: m}
}

func (s *HashSet) Type() Type     { return SetType }
func (s *HashSet) String() string {
	out := "#{"
	for i, it := range s.m.Items() {
		if i > 0 {
			out += " "
		}
		out += it[0].String()
	}
	return out + "}"
}
func (s *HashSet) Hash() uint32 {
	elems := make([]Value, 0, s.m.Count())
	for _, it := range s.m.Items() {
		elems = append(elems, it[0])
	}
	return HashUnorderedElems(elems)
}
func (s *HashSet) Count() int { return s.m.Count() }
func (s *HashSet) Contains(v Value) bool {
	_, ok := s.m.Get(v)
	return ok
}
func (s *HashSet) Conj(v Value) *HashSet { return &HashSet{m: s.m.Assoc(v, v)} }
func (s *HashSet) Disj(v Value) *HashSet { return &HashSet{m: s.m.Dissoc(v)} }
func (s *HashSet) Elements() []Value {
	items := s.m.Items()
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = it[0]
	}
	return out
}

func (s *HashSet) Seq() Seq {
	elems := s.Elements()
	if len(elems) == 0 {
		return nil
	}
	return SeqFromSlice(elems)
}

func mapSeq(pairs [][2]Value) Seq {
	if len(pairs) == 0 {
		return nil
	}
	entries := make([]Value, len(pairs))
	for i, p := range pairs {
		entries[i] = &Vector{items: []Value{p[0], p[1]}}
	}
	return SeqFromSlice(entries)
}

func mapEqual(a, b Value) bool {
	am, aok := toMap(a)
	bm, bok := toMap(b)
	if !aok || !bok {
		return false
	}
	if am.Count() != bm.Count() {
		return false
	}
	for _, it := range am.Items() {
		v, ok := bm.Get(it[0])
		if !ok || !Equal(v, it[1]) {
			return false
		}
	}
	return true
}

func toMap(v Value) (Map, bool) {
	m, ok := v.(Map)
	return m, ok
}

func setEqual(a, b Value) bool {
	as, aok := a.(*HashSet)
	bs, bok := b.(*HashSet)
	if !aok || !bok {
		return false
	}
	if as.Count() != bs.Count() {
		return false
	}
	for _, e := range as.Elements() {
		if !bs.Contains(e) {
			return false
		}
	}
	return true
}
