package value

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ToCty converts v into a cty value. Numbers become cty numbers, text
// becomes cty strings and sequences become tuples. Custom leaf values are
// carried as numbers when they expose an integer, and as their text form
// otherwise.
func ToCty(v Value) cty.Value {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case String:
		return cty.StringVal(x.Text)
	case Literal:
		return cty.StringVal(x.Text)
	case Sequence:
		items := x.Elements()
		if len(items) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, len(items))
		for i, item := range items {
			vals[i] = ToCty(item)
		}
		return cty.TupleVal(vals)
	}
	if n, ok := AsInt(v); ok {
		return cty.NumberIntVal(n)
	}
	return cty.StringVal(PlainText(v))
}

// FromCty converts a cty value back into an RPL value. Objects and maps are
// rejected; callers that expect nested records handle them first.
func FromCty(cv cty.Value) (Value, error) {
	if cv.IsNull() {
		return nil, fmt.Errorf("null values are not supported")
	}
	if !cv.IsKnown() {
		return nil, fmt.Errorf("unknown values are not supported")
	}
	ty := cv.Type()
	switch {
	case ty == cty.String:
		return String{Text: cv.AsString()}, nil
	case ty == cty.Number:
		bf := cv.AsBigFloat()
		if !bf.IsInt() {
			return nil, fmt.Errorf("number %s is not an integer", bf.Text('g', -1))
		}
		n, acc := bf.Int64()
		if acc != big.Exact {
			return nil, fmt.Errorf("number %s does not fit in 64 bits", bf.Text('g', -1))
		}
		return Number{Int: n}, nil
	case ty == cty.Bool:
		if cv.True() {
			return Number{Int: 1}, nil
		}
		return Number{Int: 0}, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		items := make([]Value, 0, cv.LengthInt())
		for it := cv.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := FromCty(ev)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", len(items), err)
			}
			items = append(items, item)
		}
		return List{Items: items}, nil
	}
	return nil, fmt.Errorf("cannot convert %s to an RPL value", ty.FriendlyName())
}
