package value

import (
	"math"
	"math/big"

	"github.com/clojurewasm/corelisp/internal/clerr"
)

// Arith implements spec.md section 4.3's numeric tower: `+ - * / = < <= > >=
// quot rem mod abs min max`, with promotion integer -> float -> big-int ->
// ratio -> big-decimal, and the unprimed/primed overflow split. The
// per-operator dispatch mirrors the teacher's evalBigIntInfixExpression /
// evalRationalInfixExpression (internal/evaluator/expressions_operators.go):
// a shared binary entry point switches on the dominant kind and calls the
// matching big.Int/big.Rat-flavored helper.

const maxInt64 = int64(math.MaxInt64)
const minInt64 = int64(math.MinInt64)

func dominant(a, b numeric) numKind {
	if rank(a.kind) >= rank(b.kind) {
		return a.kind
	}
	return b.kind
}

// Add is the unprimed `+`: integer overflow is an error.
func Add(a, b Value) (Value, error) {
	return binOp(a, b, "+", false)
}

// AddP is the primed `+'`: integer overflow auto-promotes to big-int.
func AddP(a, b Value) (Value, error) {
	return binOp(a, b, "+", true)
}

func Sub(a, b Value) (Value, error) { return binOp(a, b, "-", false) }
func SubP(a, b Value) (Value, error) { return binOp(a, b, "-", true) }
func Mul(a, b Value) (Value, error) { return binOp(a, b, "*", false) }
func MulP(a, b Value) (Value, error) { return binOp(a, b, "*", true) }

// Div implements `/`: two integers yield a ratio unless the denominator
// divides the numerator exactly (spec.md section 4.3).
func Div(a, b Value) (Value, error) {
	an, aok := asNumeric(a)
	bn, bok := asNumeric(b)
	if !aok || !bok {
		return nil, clerr.Type("/ expects numbers")
	}
	switch dominant(an, bn) {
	case kindFloat:
		return Float(an.asFloat() / bn.asFloat()), nil
	case kindBigDec:
		return nil, clerr.New(clerr.KindUnsupportedOperation, "/ on big-decimal is not supported")
	case kindRatio:
		ra, rb := an.asRatio(), bn.asRatio()
		if rb.Num.Sign() == 0 {
			return nil, clerr.Arithmetic("divide by zero")
		}
		num := new(big.Int).Mul(ra.Num, rb.Den)
		den := new(big.Int).Mul(ra.Den, rb.Num)
		r := NewRatio(num, den)
		if r.IsWhole() {
			return bigIntOrInt(r.Num), nil
		}
		return r, nil
	default:
		num := an.asBigInt()
		den := bn.asBigInt()
		if den.Sign() == 0 {
			return nil, clerr.Arithmetic("divide by zero")
		}
		r := NewRatio(num, den)
		if r.IsWhole() {
			return bigIntOrInt(r.Num), nil
		}
		return r, nil
	}
}

func binOp(a, b Value, op string, primed bool) (Value, error) {
	an, aok := asNumeric(a)
	bn, bok := asNumeric(b)
	if !aok || !bok {
		return nil, clerr.Type(op + " expects numbers")
	}
	switch dominant(an, bn) {
	case kindFloat:
		return Float(floatOp(an.asFloat(), bn.asFloat(), op)), nil
	case kindBigDec:
		return decOp(an.asBigDec(), bn.asBigDec(), op)
	case kindRatio:
		return ratioOp(an.asRatio(), bn.asRatio(), op)
	case kindBigInt:
		return bigIntOp(an.asBigInt(), bn.asBigInt(), op), nil
	default:
		return intOp(an.i, bn.i, op, primed)
	}
}

func floatOp(a, b float64, op string) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	}
	panic("unknown float op " + op)
}

func bigIntOp(a, b *big.Int, op string) Value {
	var r *big.Int
	switch op {
	case "+":
		r = new(big.Int).Add(a, b)
	case "-":
		r = new(big.Int).Sub(a, b)
	case "*":
		r = new(big.Int).Mul(a, b)
	default:
		panic("unknown bigint op " + op)
	}
	return bigIntOrInt(r)
}

func ratioOp(a, b *Ratio, op string) (Value, error) {
	var num, den *big.Int
	switch op {
	case "+":
		num = new(big.Int).Add(new(big.Int).Mul(a.Num, b.Den), new(big.Int).Mul(b.Num, a.Den))
		den = new(big.Int).Mul(a.Den, b.Den)
	case "-":
		num = new(big.Int).Sub(new(big.Int).Mul(a.Num, b.Den), new(big.Int).Mul(b.Num, a.Den))
		den = new(big.Int).Mul(a.Den, b.Den)
	case "*":
		num = new(big.Int).Mul(a.Num, b.Num)
		den = new(big.Int).Mul(a.Den, b.Den)
	default:
		panic("unknown ratio op " + op)
	}
	r := NewRatio(num, den)
	if r.IsWhole() {
		return bigIntOrInt(r.Num), nil
	}
	return r, nil
}

func decOp(a, b *BigDecimal, op string) (Value, error) {
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	au := scaleTo(a, scale)
	bu := scaleTo(b, scale)
	var r *big.Int
	switch op {
	case "+":
		r = new(big.Int).Add(au, bu)
	case "-":
		r = new(big.Int).Sub(au, bu)
	case "*":
		r = new(big.Int).Mul(au, bu)
		scale = a.Scale + b.Scale
		return &BigDecimal{Unscaled: r, Scale: scale}, nil
	default:
		return nil, clerr.New(clerr.KindUnsupportedOperation, op+" on big-decimal is not supported")
	}
	return &BigDecimal{Unscaled: r, Scale: scale}, nil
}

func scaleTo(d *BigDecimal, scale int32) *big.Int {
	if d.Scale == scale {
		return d.Unscaled
	}
	return new(big.Int).Mul(d.Unscaled, pow10(scale-d.Scale))
}

// intOp performs int64 arithmetic with explicit overflow checks: unprimed
// ops error on overflow, primed ops fall back to big-int (spec.md section
// 4.3: "Primed operators ... auto-promote on overflow; unprimed overflow is
// an error").
func intOp(a, b int64, op string, primed bool) (Value, error) {
	switch op {
	case "+":
		r := a + b
		overflow := (b > 0 && r < a) || (b < 0 && r > a)
		if overflow {
			if primed {
				return bigIntOrInt(new(big.Int).Add(big.NewInt(a), big.NewInt(b))), nil
			}
			return nil, clerr.Arithmetic("integer overflow")
		}
		return Int(r), nil
	case "-":
		r := a - b
		overflow := (b < 0 && r < a) || (b > 0 && r > a)
		if overflow {
			if primed {
				return bigIntOrInt(new(big.Int).Sub(big.NewInt(a), big.NewInt(b))), nil
			}
			return nil, clerr.Arithmetic("integer overflow")
		}
		return Int(r), nil
	case "*":
		if a == 0 || b == 0 {
			return Int(0), nil
		}
		r := a * b
		if r/b != a {
			if primed {
				return bigIntOrInt(new(big.Int).Mul(big.NewInt(a), big.NewInt(b))), nil
			}
			return nil, clerr.Arithmetic("integer overflow")
		}
		return Int(r), nil
	}
	panic("unknown int op " + op)
}

// Quot, Rem, Mod convert both operands to big integers first (ratios to
// their integer quotient, floats and other numbers by truncation), so they
// accept any number and always return an integer.
func Quot(a, b Value) (Value, error) {
	an, bn, err := intLikePair(a, b, "quot")
	if err != nil {
		return nil, err
	}
	if bn.Sign() == 0 {
		return nil, clerr.Arithmetic("divide by zero")
	}
	return bigIntOrInt(new(big.Int).Quo(an, bn)), nil
}

func Rem(a, b Value) (Value, error) {
	an, bn, err := intLikePair(a, b, "rem")
	if err != nil {
		return nil, err
	}
	if bn.Sign() == 0 {
		return nil, clerr.Arithmetic("divide by zero")
	}
	return bigIntOrInt(new(big.Int).Rem(an, bn)), nil
}

func Mod(a, b Value) (Value, error) {
	an, bn, err := intLikePair(a, b, "mod")
	if err != nil {
		return nil, err
	}
	if bn.Sign() == 0 {
		return nil, clerr.Arithmetic("divide by zero")
	}
	m := new(big.Int).Mod(an, bn)
	if m.Sign() != 0 && bn.Sign() < 0 {
		m.Add(m, bn)
	}
	return bigIntOrInt(m), nil
}

func intLikePair(a, b Value, op string) (*big.Int, *big.Int, error) {
	an, aok := asNumeric(a)
	bn, bok := asNumeric(b)
	if !aok || !bok {
		return nil, nil, clerr.Type(op + " expects numbers")
	}
	return an.asBigInt(), bn.asBigInt(), nil
}

// Compare orders two numeric values for `< <= > >=` and sort, NaN ordering
// left to the caller since NaN is unordered by spec.md's equality rule.
func Compare(a, b Value) (int, error) {
	an, aok := asNumeric(a)
	bn, bok := asNumeric(b)
	if !aok || !bok {
		return 0, clerr.Type("compare expects numbers")
	}
	if an.kind == kindFloat || bn.kind == kindFloat {
		af, bf := an.asFloat(), bn.asFloat()
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if an.kind == kindRatio || bn.kind == kindRatio {
		ra, rb := an.asRatio(), bn.asRatio()
		left := new(big.Int).Mul(ra.Num, rb.Den)
		right := new(big.Int).Mul(rb.Num, ra.Den)
		return left.Cmp(right), nil
	}
	return an.asBigInt().Cmp(bn.asBigInt()), nil
}

func Abs(v Value) (Value, error) {
	n, ok := asNumeric(v)
	if !ok {
		return nil, clerr.Type("abs expects a number")
	}
	switch n.kind {
	case kindInt:
		if n.i == minInt64 {
			return bigIntOrInt(new(big.Int).Abs(big.NewInt(n.i))), nil
		}
		if n.i < 0 {
			return Int(-n.i), nil
		}
		return v, nil
	case kindFloat:
		return Float(math.Abs(n.f)), nil
	case kindBigInt:
		return bigIntOrInt(new(big.Int).Abs(n.big)), nil
	case kindRatio:
		return NewRatio(new(big.Int).Abs(n.ratio.Num), n.ratio.Den), nil
	case kindBigDec:
		return &BigDecimal{Unscaled: new(big.Int).Abs(n.dec.Unscaled), Scale: n.dec.Scale}, nil
	}
	return v, nil
}

func Min(a, b Value) (Value, error) {
	c, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

func Max(a, b Value) (Value, error) {
	c, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

// Inc/Dec are the unary step used by `inc`/`dec` and `inc'`/`dec'`.
func Inc(v Value) (Value, error)  { return Add(v, Int(1)) }
func IncP(v Value) (Value, error) { return AddP(v, Int(1)) }
func Dec(v Value) (Value, error)  { return Sub(v, Int(1)) }
func DecP(v Value) (Value, error) { return SubP(v, Int(1)) }

// NumEqual is the numeric-tower `=` used by value.Equal once both operands
// are confirmed numeric.
func NumEqual(a, b Value) bool {
	an, aok := asNumeric(a)
	bn, bok := asNumeric(b)
	if !aok || !bok {
		return false
	}
	return numericEqual(an, bn)
}
