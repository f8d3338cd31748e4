// This file contains the conversions between native Go values and cty.Value
// at the proxy boundary. Client code hands Set plain Go values; the host
// contract speaks cty.

package proxy

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// NativeValue reduces whatever Get returned to a plain Go value: handles are
// evaluated, cty values are converted, anything else (declared fields, local
// attributes) passes through untouched.
func NativeValue(ctx context.Context, v any) (any, error) {
	switch tv := v.(type) {
	case *Parm:
		return tv.Native(ctx)
	case *Tuple:
		return tv.Native(ctx)
	case cty.Value:
		return fromCty(tv)
	default:
		return v, nil
	}
}

// toCty converts a native Go value into its corresponding cty.Value. A
// cty.Value passes through unchanged so callers can be explicit about typing
// when they need to.
func toCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}
	if p, ok := v.(*Parm); ok {
		// A handle is not a value; evaluation needs a context, so the caller
		// must do it.
		return cty.NilVal, fmt.Errorf("cannot convert *proxy.Parm %q directly; pass its evaluated value instead", p.Name())
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, ty)
}

// fromCty recursively converts a cty.Value to its most natural Go
// counterpart. Numbers become float64, objects and maps become
// map[string]any, lists and tuples become []any.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			nativeVal, err := fromCty(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nativeVal)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			keyStr := key.AsString()
			nativeVal, err := fromCty(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", keyStr, err)
			}
			goMap[keyStr] = nativeVal
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for native conversion: %s", ty.FriendlyName())
	}
}
