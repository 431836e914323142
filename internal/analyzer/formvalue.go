package analyzer

import (
	"github.com/clojurewasm/corelisp/internal/form"
	"github.com/clojurewasm/corelisp/internal/value"
)

// formToValue converts a Form into the runtime data it denotes, the bridge
// that lets a user-defined macro (an ordinary Fn) run over unevaluated
// syntax the same way it runs over any other data.
func formToValue(f form.Form) value.Value {
	switch x := f.(type) {
	case nil:
		return value.NilValue
	case *form.NilForm:
		return value.NilValue
	case *form.BoolForm:
		return value.Bool(x.Value)
	case *form.IntForm:
		return value.Int(x.Value)
	case *form.FloatForm:
		return value.Float(x.Value)
	case *form.BigIntForm:
		return &value.BigInt{V: x.Value}
	case *form.BigDecForm:
		return &value.BigDecimal{Unscaled: x.Unscaled, Scale: x.Scale}
	case *form.RatioForm:
		return value.NewRatio(x.Num, x.Den)
	case *form.CharForm:
		return value.Char(x.Value)
	case *form.StringForm:
		return value.String(x.Value)
	case *form.SymbolForm:
		return value.Symbol{NS: x.NS, Name: x.Name}
	case *form.KeywordForm:
		return value.Keyword{NS: x.NS, Name: x.Name}
	case *form.ListForm:
		items := make([]value.Value, len(x.Items))
		for i, it := range x.Items {
			items[i] = formToValue(it)
		}
		return value.NewListFrom(items)
	case *form.VectorForm:
		items := make([]value.Value, len(x.Items))
		for i, it := range x.Items {
			items[i] = formToValue(it)
		}
		return value.NewVector(items)
	case *form.SetForm:
		items := make([]value.Value, len(x.Items))
		for i, it := range x.Items {
			items[i] = formToValue(it)
		}
		return value.NewSet(items)
	case *form.MapForm:
		pairs := make([][2]value.Value, 0, len(x.Pairs)/2)
		for i := 0; i+1 < len(x.Pairs); i += 2 {
			pairs = append(pairs, [2]value.Value{formToValue(x.Pairs[i]), formToValue(x.Pairs[i+1])})
		}
		return value.NewArrayMap(pairs)
	default:
		return value.NilValue
	}
}

// valueToForm converts macro-expansion output data back into a Form the
// analyzer continues walking -- the other half of the macro bridge.
func valueToForm(v value.Value) form.Form {
	switch x := v.(type) {
	case nil:
		return form.Nil()
	case value.Nil:
		return form.Nil()
	case value.Bool:
		return form.Bool(bool(x))
	case value.Int:
		return form.Int(int64(x))
	case value.Float:
		return form.Form(&form.FloatForm{Value: float64(x)})
	case *value.BigInt:
		return &form.BigIntForm{Value: x.V}
	case *value.BigDecimal:
		return &form.BigDecForm{Unscaled: x.Unscaled, Scale: x.Scale}
	case *value.Ratio:
		return &form.RatioForm{Num: x.Num, Den: x.Den}
	case value.Char:
		return &form.CharForm{Value: rune(x)}
	case value.String:
		return form.Str(string(x))
	case value.Symbol:
		return form.SymNS(x.NS, x.Name)
	case value.Keyword:
		return form.KwNS(x.NS, x.Name)
	case value.Seq:
		var items []form.Form
		for s := value.Seq(x); s != nil; s = value.Next(s.Rest()) {
			items = append(items, valueToForm(s.First()))
		}
		return form.List(items...)
	case *value.Vector:
		src := x.Items()
		items := make([]form.Form, len(src))
		for i, it := range src {
			items[i] = valueToForm(it)
		}
		return form.Vec(items...)
	case *value.HashSet:
		src := x.Elements()
		items := make([]form.Form, len(src))
		for i, it := range src {
			items[i] = valueToForm(it)
		}
		return &form.SetForm{Items: items}
	case value.Map:
		pairs := []form.Form{}
		for _, kv := range x.Items() {
			pairs = append(pairs, valueToForm(kv[0]), valueToForm(kv[1]))
		}
		return form.Mp(pairs...)
	default:
		return form.Nil()
	}
}
