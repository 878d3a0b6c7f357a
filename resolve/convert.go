package resolve

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	ctyValueType     = reflect.TypeOf(cty.Value{})
	mapStringAnyType = reflect.TypeOf(map[string]any(nil))
)

// assign writes an evaluated value into a schema field, converting to the
// field's type. Conversion failures are *TypeError.
func assign(fieldVal reflect.Value, val cty.Value, path string) error {
	ft := fieldVal.Type()

	// cty.Value targets take the evaluated value untouched.
	if ft == ctyValueType {
		fieldVal.Set(reflect.ValueOf(val))
		return nil
	}
	if val.IsNull() {
		return nil
	}
	// Generic targets get the most natural Go representation.
	if ft.Kind() == reflect.Interface && ft.NumMethod() == 0 {
		native, err := Native(val)
		if err != nil {
			return &TypeError{Field: path, Expected: "a plain value", Actual: val.Type().FriendlyName()}
		}
		if native != nil {
			fieldVal.Set(reflect.ValueOf(native))
		}
		return nil
	}
	if ft == mapStringAnyType {
		native, err := Native(val)
		if err != nil {
			return &TypeError{Field: path, Expected: "object", Actual: val.Type().FriendlyName()}
		}
		m, ok := native.(map[string]any)
		if !ok {
			return &TypeError{Field: path, Expected: "object", Actual: val.Type().FriendlyName()}
		}
		fieldVal.Set(reflect.ValueOf(m))
		return nil
	}

	want, err := gocty.ImpliedType(reflect.Zero(ft).Interface())
	if err != nil {
		return fmt.Errorf("unsupported schema field type %s for %q: %w", ft, path, err)
	}
	converted, convErr := convert.Convert(val, want)
	if convErr != nil {
		return &TypeError{Field: path, Expected: want.FriendlyName(), Actual: val.Type().FriendlyName()}
	}
	if err := gocty.FromCtyValue(converted, fieldVal.Addr().Interface()); err != nil {
		return &TypeError{Field: path, Expected: want.FriendlyName(), Actual: val.Type().FriendlyName()}
	}
	return nil
}

// assignResolved writes a FieldResolver's output into a schema field.
func assignResolved(fieldVal reflect.Value, out any, path string) error {
	if out == nil {
		return nil
	}
	ov := reflect.ValueOf(out)
	if ov.Type().AssignableTo(fieldVal.Type()) {
		fieldVal.Set(ov)
		return nil
	}
	if ov.Type().ConvertibleTo(fieldVal.Type()) {
		fieldVal.Set(ov.Convert(fieldVal.Type()))
		return nil
	}
	return fmt.Errorf("resolver for %q produced %T where %s is required", path, out, fieldVal.Type())
}

// Native recursively converts a cty value to its most natural Go
// counterpart: string, float64, bool, []any or map[string]any.
func Native(v cty.Value) (any, error) {
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
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := Native(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := Native(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported type %s for a plain Go value", ty.FriendlyName())
	}
}
