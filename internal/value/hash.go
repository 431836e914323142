package value

import "hash/fnv"

// hashString/hashInt64/mixNameHash and mixCollHash together implement
// spec.md section 4.3's hashing contract: Murmur3-style collection mixing,
// ordered collections folding with h = h*31 + hash(e), unordered collections
// summing hash(k) xor hash(v) (or just hash(e) for sets).

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func hashInt64(n int64) uint32 {
	return uint32(n) ^ uint32(uint64(n)>>32)
}

func mixNameHash(seed uint32, ns, name string) uint32 {
	h := seed
	h = h*31 + hashString(ns)
	h = h*31 + hashString(name)
	return h
}

// murmur3-style finalization mix, used by mixCollHash below.
func fmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// mixCollHash folds an accumulated hash with a count the way Clojure's
// Murmur3.mixCollHash does, so two equal collections (same elements, same
// count) always hash equal regardless of internal trie shape.
func mixCollHash(hash uint32, count int) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593
	k1 := hash * c1
	k1 = (k1 << 15) | (k1 >> 17)
	k1 *= c2
	h1 := k1
	h1 ^= uint32(count)
	return fmix32(h1)
}

// HashOrdered folds element hashes the way lists/vectors do.
func HashOrdered(seed uint32, elems []Value) uint32 {
	h := seed
	for _, e := range elems {
		h = h*31 + Hash(e)
	}
	return mixCollHash(h, len(elems))
}

// HashUnorderedPairs sums hash(k) xor hash(v) for an unordered collection.
func HashUnorderedPairs(pairs [][2]Value) uint32 {
	var h uint32
	for _, p := range pairs {
		h += Hash(p[0]) ^ Hash(p[1])
	}
	return mixCollHash(h, len(pairs))
}

func HashUnorderedElems(elems []Value) uint32 {
	var h uint32
	for _, e := range elems {
		h += Hash(e)
	}
	return mixCollHash(h, len(elems))
}

// Hash dispatches to a value's own Hash method; a free function exists so
// collections can call it uniformly (including on nil interface values from
// an empty slot, which hash to 0).
func Hash(v Value) uint32 {
	if v == nil {
		return 0
	}
	return v.Hash()
}

// Equal implements spec.md section 3's structural equality invariant: two
// equal values always have equal hashes, and equality crosses container
// implementations as long as element sequences match.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	an, aIsNum := asNumeric(a)
	bn, bIsNum := asNumeric(b)
	if aIsNum && bIsNum {
		return numericEqual(an, bn)
	}
	switch x := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Char:
		y, ok := b.(Char)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Keyword:
		y, ok := b.(Keyword)
		return ok && x == y
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x.NS == y.NS && x.Name == y.Name
	}
	if aSeq, ok := a.(Seqable); ok {
		if bSeq, ok2 := b.(Seqable); ok2 {
			if isMapLike(a) || isMapLike(b) {
				return mapEqual(a, b)
			}
			if isSetLike(a) || isSetLike(b) {
				return setEqual(a, b)
			}
			return seqEqual(aSeq.Seq(), bSeq.Seq())
		}
	}
	return a == b
}

func isMapLike(v Value) bool {
	switch v.(type) {
	case *ArrayMap, *HashMap:
		return true
	}
	return false
}

func isSetLike(v Value) bool {
	_, ok := v.(*HashSet)
	return ok
}

func seqEqual(a, b Seq) bool {
	for {
		aEmpty := a == nil
		bEmpty := b == nil
		if aEmpty != bEmpty {
			return false
		}
		if aEmpty {
			return true
		}
		if !Equal(a.First(), b.First()) {
			return false
		}
		a = seqNext(a.Rest())
		b = seqNext(b.Rest())
	}
}

// seqNext implements `next`: the rest of a seq with the trailing empty
// sentinel collapsed to nil, so seqEqual and every seq-walking loop can
// treat "no more elements" uniformly.
func seqNext(s Seq) Seq {
	if s == nil {
		return nil
	}
	if sq, ok := s.(Seqable); ok {
		return sq.Seq()
	}
	return s
}

// Next is the exported form of seqNext, for use outside this package.
func Next(s Seq) Seq { return seqNext(s) }
