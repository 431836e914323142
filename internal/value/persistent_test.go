package value

import (
	"testing"

	"github.com/kr/pretty"
)

// requireValueEqual compares two values with the package's own Equal (not
// reflect.DeepEqual, which would trip over the unexported backing slices/
// trie nodes persistent collections use); on mismatch it renders both sides
// with pretty.Diff so a nested Vector/Map/Set failure shows exactly which
// branch diverged instead of two opaque %#v dumps.
func requireValueEqual(t *testing.T, got, want Value) {
	t.Helper()
	if !Equal(got, want) {
		t.Errorf("value mismatch:\n%s", pretty.Diff(want, got))
	}
}

func TestVectorConjAssocEqual(t *testing.T) {
	v := NewVector([]Value{Int(1), Int(2), Int(3)})
	v2 := v.Conj(Int(4))
	requireValueEqual(t, v2, NewVector([]Value{Int(1), Int(2), Int(3), Int(4)}))

	v3, err := v2.Assoc(0, Int(9))
	if err != nil {
		t.Fatalf("Assoc: %v", err)
	}
	requireValueEqual(t, v3, NewVector([]Value{Int(9), Int(2), Int(3), Int(4)}))
}

func TestArrayMapAssocEqual(t *testing.T) {
	m := Map(EmptyArrayMap())
	m = m.Assoc(Keyword{Name: "a"}, Int(1))
	m = m.Assoc(Keyword{Name: "b"}, Int(2))

	want := Map(NewArrayMap([][2]Value{
		{Keyword{Name: "a"}, Int(1)},
		{Keyword{Name: "b"}, Int(2)},
	}))
	requireValueEqual(t, m, want)
}

func TestHashSetEqualIgnoresOrder(t *testing.T) {
	a := NewSet([]Value{Int(1), Int(2), Int(3)})
	b := NewSet([]Value{Int(3), Int(1), Int(2)})
	requireValueEqual(t, a, b)
}

func TestNestedCollectionMismatchReported(t *testing.T) {
	got := NewVector([]Value{Int(1), NewVector([]Value{Int(2), Int(3)})})
	want := NewVector([]Value{Int(1), NewVector([]Value{Int(2), Int(4)})})
	if Equal(got, want) {
		t.Fatal("expected nested vectors with differing leaves to compare unequal")
	}
	diff := pretty.Diff(want, got)
	if len(diff) == 0 {
		t.Error("pretty.Diff found no difference between structurally distinct vectors")
	}
}
