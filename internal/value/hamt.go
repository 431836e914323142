package value

import "fmt"

// HashMap is a persistent Hash Array Mapped Trie, the promoted form of an
// ArrayMap once it grows past arrayMapThreshold (spec.md section 4.3). This
// is a direct port of the teacher's internal/evaluator/persistent_map.go
// HAMT, retargeted from evaluator.Object to value.Value and from
// Inspect()-string equality to the shared value.Equal structural equality.
const (
	hamtBits = 5
	hamtSize = 1 << hamtBits
	hamtMask = hamtSize - 1
)

type HashMap struct {
	root  *hamtNode
	count int
}

type hamtNode struct {
	bitmap uint32
	nodes  []interface{} // hamtEntry or *hamtNode
}

type hamtEntry struct {
	hash  uint32
	key   Value
	value Value
}

func EmptyHashMap() *HashMap { return &HashMap{} }

func (m *HashMap) Type() Type     { return MapType }
func (m *HashMap) String() string { return mapString(m) }
func (m *HashMap) Hash() uint32 {
	pairs := make([][2]Value, 0, m.count)
	for _, it := range m.Items() {
		pairs = append(pairs, [2]Value{it[0], it[1]})
	}
	return HashUnorderedPairs(pairs)
}
func (m *HashMap) Count() int { return m.count }

func (m *HashMap) Get(key Value) (Value, bool) {
	if m.root == nil {
		return nil, false
	}
	return m.root.get(Hash(key), key, 0)
}

func (m *HashMap) Assoc(key, val Value) Map {
	h := Hash(key)
	var newRoot *hamtNode
	var added bool
	if m.root == nil {
		newRoot, added = (&hamtNode{}).put(h, key, val, 0)
	} else {
		newRoot, added = m.root.put(h, key, val, 0)
	}
	count := m.count
	if added {
		count++
	}
	return &HashMap{root: newRoot, count: count}
}

func (m *HashMap) Dissoc(key Value) Map {
	if m.root == nil {
		return m
	}
	newRoot, removed := m.root.remove(Hash(key), key, 0)
	if !removed {
		return m
	}
	return &HashMap{root: newRoot, count: m.count - 1}
}

func (m *HashMap) Items() [][2]Value {
	out := make([][2]Value, 0, m.count)
	if m.root != nil {
		m.root.collectItems(&out)
	}
	return out
}

// Seq renders the map as a seq of 2-element vectors (map entries), the way
// `(seq {...})` does in Clojure.
func (m *HashMap) Seq() Seq { return mapSeq(m.Items()) }

func (n *hamtNode) get(hash uint32, key Value, shift uint) (Value, bool) {
	if shift >= 32 {
		for _, nd := range n.nodes {
			if e, ok := nd.(hamtEntry); ok && Equal(e.key, key) {
				return e.value, true
			}
		}
		return nil, false
	}
	idx := (hash >> shift) & hamtMask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return nil, false
	}
	pos := popcount(n.bitmap & (bit - 1))
	switch v := n.nodes[pos].(type) {
	case hamtEntry:
		if v.hash == hash && Equal(v.key, key) {
			return v.value, true
		}
		return nil, false
	case *hamtNode:
		return v.get(hash, key, shift+hamtBits)
	}
	return nil, false
}

func (n *hamtNode) put(hash uint32, key, val Value, shift uint) (*hamtNode, bool) {
	if shift >= 32 {
		newNode := &hamtNode{bitmap: n.bitmap, nodes: append([]interface{}{}, n.nodes...)}
		for i, nd := range newNode.nodes {
			if e, ok := nd.(hamtEntry); ok && Equal(e.key, key) {
				newNode.nodes[i] = hamtEntry{hash: hash, key: key, value: val}
				return newNode, false
			}
		}
		newNode.nodes = append(newNode.nodes, hamtEntry{hash: hash, key: key, value: val})
		return newNode, true
	}

	idx := (hash >> shift) & hamtMask
	bit := uint32(1) << idx
	newNode := &hamtNode{bitmap: n.bitmap, nodes: append([]interface{}{}, n.nodes...)}

	if n.bitmap&bit == 0 {
		newNode.bitmap |= bit
		pos := popcount(newNode.bitmap & (bit - 1))
		newNode.nodes = append(newNode.nodes, nil)
		copy(newNode.nodes[pos+1:], newNode.nodes[pos:])
		newNode.nodes[pos] = hamtEntry{hash: hash, key: key, value: val}
		return newNode, true
	}

	pos := popcount(n.bitmap & (bit - 1))
	switch v := newNode.nodes[pos].(type) {
	case hamtEntry:
		if v.hash == hash && Equal(v.key, key) {
			newNode.nodes[pos] = hamtEntry{hash: hash, key: key, value: val}
			return newNode, false
		}
		child := &hamtNode{}
		child, added1 := child.put(v.hash, v.key, v.value, shift+hamtBits)
		child, added2 := child.put(hash, key, val, shift+hamtBits)
		newNode.nodes[pos] = child
		return newNode, added1 || added2
	case *hamtNode:
		newChild, added := v.put(hash, key, val, shift+hamtBits)
		newNode.nodes[pos] = newChild
		return newNode, added
	}
	return newNode, false
}

func (n *hamtNode) remove(hash uint32, key Value, shift uint) (*hamtNode, bool) {
	if shift >= 32 {
		for i, nd := range n.nodes {
			if e, ok := nd.(hamtEntry); ok && Equal(e.key, key) {
				newNode := &hamtNode{bitmap: n.bitmap, nodes: make([]interface{}, len(n.nodes)-1)}
				copy(newNode.nodes[:i], n.nodes[:i])
				copy(newNode.nodes[i:], n.nodes[i+1:])
				return newNode, true
			}
		}
		return n, false
	}
	idx := (hash >> shift) & hamtMask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return n, false
	}
	pos := popcount(n.bitmap & (bit - 1))
	switch v := n.nodes[pos].(type) {
	case hamtEntry:
		if v.hash != hash || !Equal(v.key, key) {
			return n, false
		}
		newNode := &hamtNode{bitmap: n.bitmap &^ bit, nodes: make([]interface{}, len(n.nodes)-1)}
		copy(newNode.nodes[:pos], n.nodes[:pos])
		copy(newNode.nodes[pos:], n.nodes[pos+1:])
		return newNode, true
	case *hamtNode:
		newChild, removed := v.remove(hash, key, shift+hamtBits)
		if !removed {
			return n, false
		}
		if len(newChild.nodes) == 0 {
			newNode := &hamtNode{bitmap: n.bitmap &^ bit, nodes: make([]interface{}, len(n.nodes)-1)}
			copy(newNode.nodes[:pos], n.nodes[:pos])
			copy(newNode.nodes[pos:], n.nodes[pos+1:])
			return newNode, true
		}
		if len(newChild.nodes) == 1 {
			if e, ok := newChild.nodes[0].(hamtEntry); ok {
				newNode := &hamtNode{bitmap: n.bitmap, nodes: append([]interface{}{}, n.nodes...)}
				newNode.nodes[pos] = e
				return newNode, true
			}
		}
		newNode := &hamtNode{bitmap: n.bitmap, nodes: append([]interface{}{}, n.nodes...)}
		newNode.nodes[pos] = newChild
		return newNode, true
	}
	return n, false
}

func (n *hamtNode) collectItems(items *[][2]Value) {
	for _, nd := range n.nodes {
		switch v := nd.(type) {
		case hamtEntry:
			*items = append(*items, [2]Value{v.key, v.value})
		case *hamtNode:
			v.collectItems(items)
		}
	}
}

func popcount(x uint32) int {
	x = x - ((x >> 1) & 0x55555555)
	x = (x & 0x33333333) + ((x >> 2) & 0x33333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f
	x = x + (x >> 8)
	x = x + (x >> 16)
	return int(x & 0x3f)
}

func mapString(m interface{ Items() [][2]Value }) string {
	items := m.Items()
	s := "{"
	for i, it := range items {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %s", it[0].String(), it[1].String())
	}
	return s + "}"
}
