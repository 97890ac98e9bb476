package hclconfig

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// stringList evaluates expr as a single string or a list of strings. A
// missing attribute gives nil.
func stringList(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	val, err := evaluate(expr, evalCtx)
	if err != nil || val.IsNull() {
		return nil, err
	}
	if val.Type() == cty.String {
		return []string{val.AsString()}, nil
	}
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("expected a string or a list of strings, got %s", val.Type().FriendlyName())
	}
	listVal, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s to a list of strings: %w", val.Type().FriendlyName(), err)
	}
	var out []string
	if err := gocty.FromCtyValue(listVal, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// objectAttrs evaluates expr as an object or a map and returns its
// attributes. A missing attribute gives nil.
func objectAttrs(expr hcl.Expression, evalCtx *hcl.EvalContext) (map[string]cty.Value, error) {
	val, err := evaluate(expr, evalCtx)
	if err != nil || val.IsNull() {
		return nil, err
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", ty.FriendlyName())
	}
	if val.LengthInt() == 0 {
		return nil, nil
	}
	return val.AsValueMap(), nil
}

func evaluate(expr hcl.Expression, evalCtx *hcl.EvalContext) (cty.Value, error) {
	if expr == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("value is not known")
	}
	return val, nil
}
