package resolve

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"

	"github.com/defstack/defstack/scope"
)

// thunkCapture holds everything needed to resolve a deferred field later:
// the raw expression or block body, the field's Spec, and the FieldSet it
// was captured under.
type thunkCapture struct {
	path   string
	expr   hcl.Expression
	body   hcl.Body
	spec   Spec
	fields FieldSet
}

// deferredField is how the decoder hands a capture to a Thunk without
// knowing its type parameter.
type deferredField interface {
	capture(c *thunkCapture)
}

// Thunk defers resolution of a schema field. The decoder captures the raw
// declaration instead of evaluating it; Resolve performs the scope check
// and decode against the context given then, typically one extended with
// per-item bindings the declaration site could not provide.
type Thunk[T any] struct {
	cap *thunkCapture
}

func (t *Thunk[T]) capture(c *thunkCapture) { t.cap = c }

// IsSet reports whether the declaration provided this field at all.
func (t Thunk[T]) IsSet() bool { return t.cap != nil }

// Resolve materializes the deferred value against rctx. An unset thunk
// resolves to the zero value. The field's RequiredScope is checked first,
// so a missing per-item binding surfaces as a *ScopeError naming it.
func (t Thunk[T]) Resolve(rctx *scope.Context) (T, error) {
	var out T
	if t.cap == nil {
		return out, nil
	}
	if err := checkScope(rctx, t.cap.path, t.cap.spec, t.cap.expr); err != nil {
		return out, err
	}

	if t.cap.body != nil {
		if err := decodeBody(rctx, t.cap.body, reflect.ValueOf(&out), t.cap.fields, t.cap.path); err != nil {
			return out, err
		}
		return out, nil
	}

	val, diags := t.cap.expr.Value(rctx.EvalContext())
	if diags.HasErrors() {
		return out, fmt.Errorf("evaluating %q: %s", t.cap.path, diags.Error())
	}
	if err := assign(reflect.ValueOf(&out).Elem(), val, t.cap.path); err != nil {
		return out, err
	}
	return out, nil
}

var deferredFieldType = reflect.TypeOf((*deferredField)(nil)).Elem()

func isThunk(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(deferredFieldType)
}

// thunkTarget returns the field's deferred handle when the field is a
// Thunk.
func thunkTarget(v reflect.Value) (deferredField, bool) {
	if !v.CanAddr() {
		return nil, false
	}
	d, ok := v.Addr().Interface().(deferredField)
	return d, ok
}
