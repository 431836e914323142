package value

import (
	"math"
	"testing"
)

func TestAddOverflowsToError(t *testing.T) {
	_, err := Add(Int(math.MaxInt64), Int(1))
	if err == nil {
		t.Fatal("expected an overflow error from unprimed +")
	}
}

func TestAddPPromotesOnOverflow(t *testing.T) {
	got, err := AddP(Int(math.MaxInt64), Int(1))
	if err != nil {
		t.Fatalf("AddP: %v", err)
	}
	bi, ok := got.(*BigInt)
	if !ok {
		t.Fatalf("AddP overflow result = %T, want *BigInt", got)
	}
	want := "9223372036854775808"
	if bi.V.String() != want {
		t.Errorf("AddP overflow result = %s, want %s", bi.V.String(), want)
	}
}

func TestDivExactYieldsInt(t *testing.T) {
	got, err := Div(Int(10), Int(2))
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if got != Int(5) {
		t.Errorf("Div(10, 2) = %v, want 5", got)
	}
}

func TestDivInexactYieldsRatio(t *testing.T) {
	got, err := Div(Int(1), Int(3))
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if _, ok := got.(*Ratio); !ok {
		t.Errorf("Div(1, 3) = %T, want *Ratio", got)
	}
}

func TestQuotRemMod(t *testing.T) {
	q, err := Quot(Int(7), Int(2))
	if err != nil || q != Int(3) {
		t.Errorf("Quot(7, 2) = %v, %v, want 3", q, err)
	}
	r, err := Rem(Int(7), Int(2))
	if err != nil || r != Int(1) {
		t.Errorf("Rem(7, 2) = %v, %v, want 1", r, err)
	}
	m, err := Mod(Int(-7), Int(2))
	if err != nil || m != Int(1) {
		t.Errorf("Mod(-7, 2) = %v, %v, want 1", m, err)
	}
}

func TestCompareAndMinMax(t *testing.T) {
	c, err := Compare(Int(1), Int(2))
	if err != nil || c >= 0 {
		t.Errorf("Compare(1, 2) = %d, %v, want < 0", c, err)
	}
	mn, err := Min(Int(1), Int(2))
	if err != nil || mn != Int(1) {
		t.Errorf("Min(1, 2) = %v, %v, want 1", mn, err)
	}
	mx, err := Max(Int(1), Int(2))
	if err != nil || mx != Int(2) {
		t.Errorf("Max(1, 2) = %v, %v, want 2", mx, err)
	}
}

func TestIncDec(t *testing.T) {
	got, err := Inc(Int(1))
	if err != nil || got != Int(2) {
		t.Errorf("Inc(1) = %v, %v, want 2", got, err)
	}
	got, err = Dec(Int(1))
	if err != nil || got != Int(0) {
		t.Errorf("Dec(1) = %v, %v, want 0", got, err)
	}
}

func TestNumEqualAcrossKinds(t *testing.T) {
	if !NumEqual(Int(1), Float(1.0)) {
		t.Error("NumEqual(1, 1.0) = false, want true")
	}
	if NumEqual(Int(1), Int(2)) {
		t.Error("NumEqual(1, 2) = true, want false")
	}
}

func TestAbs(t *testing.T) {
	got, err := Abs(Int(-5))
	if err != nil || got != Int(5) {
		t.Errorf("Abs(-5) = %v, %v, want 5", got, err)
	}
}
