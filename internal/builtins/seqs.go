package builtins

import (
	"github.com/clojurewasm/corelisp/internal/clerr"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func lazySeqOf(items []value.Value) value.Value {
	if len(items) == 0 {
		return value.NilValue
	}
	return value.SeqFromSlice(items)
}

func installSeqs(core *runtime.Namespace) {
	install(core, []entry{
		{"first", fixed(1), func(a []value.Value) (value.Value, error) {
			s := toSeq(a[0])
			if s == nil {
				return value.NilValue, nil
			}
			return s.First(), nil
		}},
		{"rest", fixed(1), func(a []value.Value) (value.Value, error) {
			s := toSeq(a[0])
			if s == nil {
				return value.EmptySeq, nil
			}
			return s.Rest(), nil
		}},
		{"next", fixed(1), func(a []value.Value) (value.Value, error) {
			s := toSeq(a[0])
			if s == nil {
				return value.NilValue, nil
			}
			if n := value.Next(s.Rest()); n != nil {
				return n, nil
			}
			return value.NilValue, nil
		}},
		{"seq", fixed(1), func(a []value.Value) (value.Value, error) {
			s := toSeq(a[0])
			if s == nil {
				return value.NilValue, nil
			}
			return s, nil
		}},
		{"cons", fixed(2), func(a []value.Value) (value.Value, error) {
			return value.NewCons(a[0], toSeq(a[1])), nil
		}},
		{"conj", variadicFrom(0), func(a []value.Value) (value.Value, error) {
			if len(a) == 0 {
				return value.EmptyVector(), nil
			}
			coll, rest := a[0], a[1:]
			for _, x := range rest {
				var err error
				coll, err = conjOne(coll, x)
				if err != nil {
					return nil, err
				}
			}
			return coll, nil
		}},
		{"peek", fixed(1), func(a []value.Value) (value.Value, error) {
			switch c := a[0].(type) {
			case *value.List:
				return c.Peek(), nil
			case *value.Vector:
				return c.Peek(), nil
			case value.Nil:
				return value.NilValue, nil
			}
			return nil, wrongType("peek", a[0])
		}},
		{"pop", fixed(1), func(a []value.Value) (value.Value, error) {
			switch c := a[0].(type) {
			case *value.List:
				p, ok := c.Pop()
				if !ok {
					return nil, clerr.New(clerr.KindIllegalArgument, "pop: empty list")
				}
				return p, nil
			case *value.Vector:
				return c.Pop()
			}
			return nil, wrongType("pop", a[0])
		}},
		{"nth", fixedRange(2, 3), func(a []value.Value) (value.Value, error) {
			i, ok := a[1].(value.Int)
			if !ok {
				return nil, wrongType("nth", a[1])
			}
			if v, ok := a[0].(*value.Vector); ok {
				if r, ok := v.Nth(int(i)); ok {
					return r, nil
				}
				if len(a) == 3 {
					return a[2], nil
				}
				return nil, clerr.New(clerr.KindLookup, "nth: index out of bounds")
			}
			s := toSeq(a[0])
			for j := value.Int(0); s != nil; j++ {
				if j == i {
					return s.First(), nil
				}
				s = toSeq(s.Rest())
			}
			if len(a) == 3 {
				return a[2], nil
			}
			return nil, clerr.New(clerr.KindLookup, "nth: index out of bounds")
		}},
		{"count", fixed(1), func(a []value.Value) (value.Value, error) {
			if c, ok := a[0].(value.Counted); ok {
				return value.Int(c.Count()), nil
			}
			return value.Int(len(seqSlice(a[0]))), nil
		}},
		{"map", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			f := a[0]
			cols := make([][]value.Value, len(a)-1)
			minLen := -1
			for i, c := range a[1:] {
				cols[i] = seqSlice(c)
				if minLen == -1 || len(cols[i]) < minLen {
					minLen = len(cols[i])
				}
			}
			out := make([]value.Value, 0, minLen)
			for i := 0; i < minLen; i++ {
				args := make([]value.Value, len(cols))
				for j := range cols {
					args[j] = cols[j][i]
				}
				r, err := callFn("map", f, args)
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			}
			return lazySeqOf(out), nil
		}},
		{"mapv", variadicFrom(2), func(a []value.Value) (value.Value, error) {
			f := a[0]
			cols := make([][]value.Value, len(a)-1)
			minLen := -1
			for i, c := range a[1:] {
				cols[i] = seqSlice(c)
				if minLen == -1 || len(cols[i]) < minLen {
					minLen = len(cols[i])
				}
			}
			out := make([]value.Value, 0, minLen)
			for i := 0; i < minLen; i++ {
				args := make([]value.Value, len(cols))
				for j := range cols {
					args[j] = cols[j][i]
				}
				r, err := callFn("mapv", f, args)
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			}
			return value.NewVector(out), nil
		}},
		{"filter", fixed(2), func(a []value.Value) (value.Value, error) {
			out, err := filterSlice(a[1], a[0], true)
			if err != nil {
				return nil, err
			}
			return lazySeqOf(out), nil
		}},
		{"filterv", fixed(2), func(a []value.Value) (value.Value, error) {
			out, err := filterSlice(a[1], a[0], true)
			if err != nil {
				return nil, err
			}
			return value.NewVector(out), nil
		}},
		{"remove", fixed(2), func(a []value.Value) (value.Value, error) {
			out, err := filterSlice(a[1], a[0], false)
			if err != nil {
				return nil, err
			}
			return lazySeqOf(out), nil
		}},
		{"keep", fixed(2), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[1])
			out := []value.Value{}
			for _, x := range items {
				r, err := callFn("keep", a[0], []value.Value{x})
				if err != nil {
					return nil, err
				}
				if value.Truthy(r) {
					out = append(out, r)
				}
			}
			return lazySeqOf(out), nil
		}},
		{"keep-indexed", fixed(2), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[1])
			out := []value.Value{}
			for i, x := range items {
				r, err := callFn("keep-indexed", a[0], []value.Value{value.Int(i), x})
				if err != nil {
					return nil, err
				}
				if value.Truthy(r) {
					out = append(out, r)
				}
			}
			return lazySeqOf(out), nil
		}},
		{"map-indexed", fixed(2), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[1])
			out := make([]value.Value, len(items))
			for i, x := range items {
				r, err := callFn("map-indexed", a[0], []value.Value{value.Int(i), x})
				if err != nil {
					return nil, err
				}
				out[i] = r
			}
			return lazySeqOf(out), nil
		}},
		{"reduce", fixedRange(2, 3), func(a []value.Value) (value.Value, error) {
			f := a[0]
			var acc value.Value
			var s value.Seq
			// Walks the seq directly rather than seqSlice, so reduce over an
			// infinite producer (e.g. (range) with no args) can still
			// terminate early via a Reduced sentinel instead of draining
			// forever before the loop even starts.
			if len(a) == 3 {
				acc = a[1]
				s = toSeq(a[2])
			} else {
				s = toSeq(a[1])
				if s == nil {
					return callFn("reduce", f, nil)
				}
				acc = s.First()
				s = toSeq(s.Rest())
			}
			for s != nil {
				r, err := callFn("reduce", f, []value.Value{acc, s.First()})
				if err != nil {
					return nil, err
				}
				if red, ok := r.(*value.Reduced); ok {
					return red.Val, nil
				}
				acc = r
				s = toSeq(s.Rest())
			}
			return acc, nil
		}},
		{"reduce-kv", fixed(3), func(a []value.Value) (value.Value, error) {
			f, acc := a[0], a[1]
			pairs, err := collPairs(a[2])
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				r, err := callFn("reduce-kv", f, []value.Value{acc, p[0], p[1]})
				if err != nil {
					return nil, err
				}
				if red, ok := r.(*value.Reduced); ok {
					return red.Val, nil
				}
				acc = r
			}
			return acc, nil
		}},
		{"transduce", fixedRange(3, 4), func(a []value.Value) (value.Value, error) {
			xf, rf := a[0], a[1]
			var acc value.Value
			var s value.Seq
			// Same infinite-source concern as reduce above: S2-style
			// (transduce (comp (map inc) (filter odd?) (take 3)) + 0 (range))
			// must terminate via the take-stage's Reduced, not by first
			// collecting every element of an unbounded range.
			if len(a) == 4 {
				acc = a[2]
				s = toSeq(a[3])
			} else {
				s = toSeq(a[2])
				acc = value.NilValue
			}
			step, err := callFn("transduce", xf, []value.Value{rf})
			if err != nil {
				return nil, err
			}
			for s != nil {
				r, err := callFn("transduce", step, []value.Value{acc, s.First()})
				if err != nil {
					return nil, err
				}
				if red, ok := r.(*value.Reduced); ok {
					acc = red.Val
					break
				}
				acc = r
				s = toSeq(s.Rest())
			}
			return callFn("transduce", step, []value.Value{acc})
		}},
		{"into", fixedRange(1, 2), func(a []value.Value) (value.Value, error) {
			to := a[0]
			if len(a) == 1 {
				return to, nil
			}
			items := seqSlice(a[1])
			var err error
			for _, x := range items {
				to, err = conjOne(to, x)
				if err != nil {
					return nil, err
				}
			}
			return to, nil
		}},
		{"sequence", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			return lazySeqOf(seqSlice(a[len(a)-1])), nil
		}},
		{"iterate", fixed(2), func(a []value.Value) (value.Value, error) {
			return iterateSeq(a[0], a[1]), nil
		}},
		{"range", fixedRange(0, 3), func(a []value.Value) (value.Value, error) {
			var start, end, step int64 = 0, 0, 1
			hasEnd := false
			switch len(a) {
			case 0:
				return rangeSeq(0, 1, true), nil
			case 1:
				end, hasEnd = int64(a[0].(value.Int)), true
			case 2:
				start, end, hasEnd = int64(a[0].(value.Int)), int64(a[1].(value.Int)), true
			case 3:
				start, end, hasEnd = int64(a[0].(value.Int)), int64(a[1].(value.Int)), true
				step = int64(a[2].(value.Int))
			}
			if !hasEnd || step == 0 {
				return nil, clerr.New(clerr.KindIllegalArgument, "range: invalid bounds")
			}
			out := []value.Value{}
			if step > 0 {
				for i := start; i < end; i += step {
					out = append(out, value.Int(i))
				}
			} else {
				for i := start; i > end; i += step {
					out = append(out, value.Int(i))
				}
			}
			return lazySeqOf(out), nil
		}},
		{"repeat", fixedRange(1, 2), func(a []value.Value) (value.Value, error) {
			if len(a) == 1 {
				return repeatInf(a[0]), nil
			}
			n, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("repeat", a[0])
			}
			out := make([]value.Value, n)
			for i := range out {
				out[i] = a[1]
			}
			return lazySeqOf(out), nil
		}},
		{"repeatedly", fixedRange(1, 2), func(a []value.Value) (value.Value, error) {
			if len(a) == 1 {
				return repeatedlyInf(a[0]), nil
			}
			n, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("repeatedly", a[0])
			}
			out := make([]value.Value, 0, n)
			for i := value.Int(0); i < n; i++ {
				r, err := callFn("repeatedly", a[1], nil)
				if err != nil {
					return nil, err
				}
				out = append(out, r)
			}
			return lazySeqOf(out), nil
		}},
		{"cycle", fixed(1), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[0])
			if len(items) == 0 {
				return value.NilValue, nil
			}
			return cycleSeq(items, 0), nil
		}},
		{"lazy-seq*", fixed(1), func(a []value.Value) (value.Value, error) {
			thunk, ok := a[0].(value.Fn)
			if !ok {
				return nil, wrongType("lazy-seq*", a[0])
			}
			return value.NewLazySeq(func() (value.Seq, error) {
				r, err := thunk.Call(nil)
				if err != nil {
					return nil, err
				}
				return toSeq(r), nil
			}), nil
		}},
		{"take", fixed(2), func(a []value.Value) (value.Value, error) {
			n, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("take", a[0])
			}
			// Walks the seq directly rather than seqSlice, so (take n (range))
			// and friends terminate instead of draining an infinite source.
			out := []value.Value{}
			s := toSeq(a[1])
			for i := value.Int(0); i < n && s != nil; i++ {
				out = append(out, s.First())
				s = toSeq(s.Rest())
			}
			return lazySeqOf(out), nil
		}},
		{"drop", fixed(2), func(a []value.Value) (value.Value, error) {
			n, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("drop", a[0])
			}
			s := toSeq(a[1])
			for i := value.Int(0); i < n && s != nil; i++ {
				s = toSeq(s.Rest())
			}
			if s == nil {
				return value.NilValue, nil
			}
			return s, nil
		}},
		{"take-while", fixed(2), func(a []value.Value) (value.Value, error) {
			out := []value.Value{}
			s := toSeq(a[1])
			for s != nil {
				r, err := callFn("take-while", a[0], []value.Value{s.First()})
				if err != nil {
					return nil, err
				}
				if !value.Truthy(r) {
					break
				}
				out = append(out, s.First())
				s = toSeq(s.Rest())
			}
			return lazySeqOf(out), nil
		}},
		{"drop-while", fixed(2), func(a []value.Value) (value.Value, error) {
			s := toSeq(a[1])
			for s != nil {
				r, err := callFn("drop-while", a[0], []value.Value{s.First()})
				if err != nil {
					return nil, err
				}
				if !value.Truthy(r) {
					break
				}
				s = toSeq(s.Rest())
			}
			if s == nil {
				return value.NilValue, nil
			}
			return s, nil
		}},
		{"take-last", fixed(2), func(a []value.Value) (value.Value, error) {
			n, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("take-last", a[0])
			}
			items := seqSlice(a[1])
			if int(n) < len(items) {
				items = items[len(items)-int(n):]
			}
			return lazySeqOf(items), nil
		}},
		{"drop-last", fixedRange(1, 2), func(a []value.Value) (value.Value, error) {
			n, coll := 1, a[0]
			if len(a) == 2 {
				i, ok := a[0].(value.Int)
				if !ok {
					return nil, wrongType("drop-last", a[0])
				}
				n, coll = int(i), a[1]
			}
			items := seqSlice(coll)
			if n < len(items) {
				items = items[:len(items)-n]
			} else {
				items = nil
			}
			return lazySeqOf(items), nil
		}},
		{"partition", fixedRange(2, 4), func(a []value.Value) (value.Value, error) {
			n, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("partition", a[0])
			}
			step := n
			items := seqSlice(a[len(a)-1])
			if len(a) >= 3 {
				if s, ok := a[1].(value.Int); ok {
					step = s
				}
			}
			out := []value.Value{}
			for i := 0; i+int(n) <= len(items); i += int(step) {
				out = append(out, value.NewVector(append([]value.Value{}, items[i:i+int(n)]...)))
			}
			return lazySeqOf(out), nil
		}},
		{"partition-all", fixedRange(2, 3), func(a []value.Value) (value.Value, error) {
			n, ok := a[0].(value.Int)
			if !ok {
				return nil, wrongType("partition-all", a[0])
			}
			step := n
			if len(a) == 3 {
				if s, ok := a[1].(value.Int); ok {
					step = s
				}
			}
			items := seqSlice(a[len(a)-1])
			out := []value.Value{}
			for i := 0; i < len(items); i += int(step) {
				end := i + int(n)
				if end > len(items) {
					end = len(items)
				}
				out = append(out, value.NewVector(append([]value.Value{}, items[i:end]...)))
			}
			return lazySeqOf(out), nil
		}},
		{"partition-by", fixed(2), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[1])
			out := []value.Value{}
			var cur []value.Value
			var curKey value.Value
			for i, x := range items {
				k, err := callFn("partition-by", a[0], []value.Value{x})
				if err != nil {
					return nil, err
				}
				if i > 0 && !value.Equal(k, curKey) {
					out = append(out, value.NewVector(cur))
					cur = nil
				}
				cur = append(cur, x)
				curKey = k
			}
			if len(cur) > 0 {
				out = append(out, value.NewVector(cur))
			}
			return lazySeqOf(out), nil
		}},
		{"group-by", fixed(2), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[1])
			m := value.Map(value.EmptyArrayMap())
			for _, x := range items {
				k, err := callFn("group-by", a[0], []value.Value{x})
				if err != nil {
					return nil, err
				}
				existing, ok := m.Get(k)
				var bucket *value.Vector
				if ok {
					bucket = existing.(*value.Vector)
				} else {
					bucket = value.EmptyVector()
				}
				m = m.Assoc(k, bucket.Conj(x))
			}
			return m, nil
		}},
		{"distinct", fixed(1), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[0])
			out := []value.Value{}
			seen := value.EmptySet()
			for _, x := range items {
				if !seen.Contains(x) {
					seen = seen.Conj(x)
					out = append(out, x)
				}
			}
			return lazySeqOf(out), nil
		}},
		{"distinct?", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			seen := value.EmptySet()
			for _, x := range a {
				if seen.Contains(x) {
					return value.Bool(false), nil
				}
				seen = seen.Conj(x)
			}
			return value.Bool(true), nil
		}},
		{"frequencies", fixed(1), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[0])
			m := value.Map(value.EmptyArrayMap())
			for _, x := range items {
				n := value.Int(0)
				if existing, ok := m.Get(x); ok {
					n = existing.(value.Int)
				}
				m = m.Assoc(x, n+1)
			}
			return m, nil
		}},
		{"flatten", fixed(1), func(a []value.Value) (value.Value, error) {
			var out []value.Value
			var walk func(value.Value)
			walk = func(v value.Value) {
				switch v.(type) {
				case *value.List, *value.Vector, value.Seq:
					for _, x := range seqSlice(v) {
						walk(x)
					}
				default:
					out = append(out, v)
				}
			}
			for _, x := range seqSlice(a[0]) {
				walk(x)
			}
			return lazySeqOf(out), nil
		}},
		{"interleave", variadicFrom(1), func(a []value.Value) (value.Value, error) {
			cols := make([][]value.Value, len(a))
			minLen := -1
			for i, c := range a {
				cols[i] = seqSlice(c)
				if minLen == -1 || len(cols[i]) < minLen {
					minLen = len(cols[i])
				}
			}
			out := []value.Value{}
			for i := 0; i < minLen; i++ {
				for _, col := range cols {
					out = append(out, col[i])
				}
			}
			return lazySeqOf(out), nil
		}},
		{"interpose", fixed(2), func(a []value.Value) (value.Value, error) {
			items := seqSlice(a[1])
			out := []value.Value{}
			for i, x := range items {
				if i > 0 {
					out = append(out, a[0])
				}
				out = append(out, x)
			}
			return lazySeqOf(out), nil
		}},
	})
}

// iterateSeq, rangeSeq, repeatInf, repeatedlyInf and cycleSeq build genuinely
// unbounded lazy-seqs on top of value.LazySeq, the same way a thunked
// lazy-seq* chain would if it were written in the core itself -- each cell's
// tail is deferred until a consumer like take/take-while actually walks it.
func iterateSeq(f, x value.Value) value.Seq {
	return value.NewCons(x, value.NewLazySeq(func() (value.Seq, error) {
		nextVal, err := callFn("iterate", f, []value.Value{x})
		if err != nil {
			return nil, err
		}
		return iterateSeq(f, nextVal), nil
	}))
}

func rangeSeq(start, step int64, infinite bool) value.Seq {
	return value.NewCons(value.Int(start), value.NewLazySeq(func() (value.Seq, error) {
		return rangeSeq(start+step, step, infinite), nil
	}))
}

func repeatInf(x value.Value) value.Seq {
	return value.NewCons(x, value.NewLazySeq(func() (value.Seq, error) {
		return repeatInf(x), nil
	}))
}

func repeatedlyInf(f value.Value) value.Seq {
	return value.NewLazySeq(func() (value.Seq, error) {
		x, err := callFn("repeatedly", f, nil)
		if err != nil {
			return nil, err
		}
		return value.NewCons(x, repeatedlyInf(f)), nil
	})
}

func cycleSeq(items []value.Value, i int) value.Seq {
	return value.NewCons(items[i], value.NewLazySeq(func() (value.Seq, error) {
		return cycleSeq(items, (i+1)%len(items)), nil
	}))
}

func filterSlice(coll, pred value.Value, keepTruthy bool) ([]value.Value, error) {
	items := seqSlice(coll)
	out := []value.Value{}
	for _, x := range items {
		r, err := callFn("filter", pred, []value.Value{x})
		if err != nil {
			return nil, err
		}
		if value.Truthy(r) == keepTruthy {
			out = append(out, x)
		}
	}
	return out, nil
}

func conjOne(coll, x value.Value) (value.Value, error) {
	switch c := coll.(type) {
	case *value.List:
		return c.Conj(x), nil
	case *value.Vector:
		return c.Conj(x), nil
	case *value.HashSet:
		return c.Conj(x), nil
	case value.Map:
		pair, ok := x.(*value.Vector)
		if !ok || pair.Count() != 2 {
			return nil, clerr.New(clerr.KindIllegalArgument, "conj on a map requires a [k v] pair")
		}
		k, _ := pair.Nth(0)
		v, _ := pair.Nth(1)
		return c.Assoc(k, v), nil
	case value.Nil:
		return value.EmptyList().Conj(x), nil
	}
	return nil, wrongType("conj", coll)
}

func collPairs(v value.Value) ([][2]value.Value, error) {
	switch c := v.(type) {
	case value.Map:
		return c.Items(), nil
	case *value.Vector:
		out := make([][2]value.Value, c.Count())
		for i := range out {
			item, _ := c.Nth(i)
			out[i] = [2]value.Value{value.Int(i), item}
		}
		return out, nil
	}
	return nil, wrongType("reduce-kv", v)
}
