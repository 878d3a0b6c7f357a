package resolve

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/defstack/defstack/scope"
)

// Body decodes an HCL body into target, a non-nil pointer to a schema
// struct, evaluating attribute expressions against rctx. Defaults preset on
// the target survive when their attribute is omitted.
func Body(rctx *scope.Context, body hcl.Body, target any, fields FieldSet) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("resolution target must be a non-nil struct pointer, got %T", target)
	}
	return decodeBody(rctx, body, v, fields, "")
}

// Expr evaluates a single expression against the scope with the same
// missing-root handling as schema attributes. path names the value in
// errors.
func Expr(rctx *scope.Context, path string, expr hcl.Expression) (cty.Value, error) {
	if missing := scope.MissingRoots(expr, rctx); len(missing) > 0 {
		return cty.NilVal, &ScopeError{Field: path, Missing: missing}
	}
	val, diags := expr.Value(rctx.EvalContext())
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating %q: %s", path, diags.Error())
	}
	return val, nil
}

func decodeBody(rctx *scope.Context, body hcl.Body, ptr reflect.Value, fields FieldSet, prefix string) error {
	structVal := ptr.Elem()

	plan, err := planOf(structVal.Type())
	if err != nil {
		return err
	}

	var content *hcl.BodyContent
	var diags hcl.Diagnostics
	if plan.remain >= 0 {
		var rest hcl.Body
		content, rest, diags = body.PartialContent(plan.schema)
		if !diags.HasErrors() {
			structVal.Field(plan.remain).Set(reflect.ValueOf(rest))
		}
	} else {
		content, diags = body.Content(plan.schema)
	}
	if diags.HasErrors() {
		return fmt.Errorf("invalid declaration body: %s", diags.Error())
	}

	for _, ap := range plan.attrs {
		if err := decodeAttr(rctx, content, ap, structVal.Field(ap.index), fields, prefix); err != nil {
			return err
		}
	}
	for _, bp := range plan.blocks {
		if err := decodeBlocks(rctx, content, bp, structVal.Field(bp.index), fields, prefix); err != nil {
			return err
		}
	}
	return nil
}

func decodeAttr(rctx *scope.Context, content *hcl.BodyContent, ap attrPlan, fieldVal reflect.Value, fields FieldSet, prefix string) error {
	path := joinPath(prefix, ap.name)
	spec := fields[path]
	attr := content.Attributes[ap.name]

	// A thunk field captures its expression without evaluating anything.
	if th, ok := thunkTarget(fieldVal); ok {
		if attr != nil {
			th.capture(&thunkCapture{path: path, expr: attr.Expr, spec: spec, fields: fields})
		}
		return nil
	}

	if spec.Resolver != nil {
		field := Field{Path: path}
		if attr != nil {
			field.Expr = attr.Expr
		}
		if err := checkScope(rctx, path, spec, field.Expr); err != nil {
			return err
		}
		out, err := spec.Resolver(rctx, field)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", path, err)
		}
		return assignResolved(fieldVal, out, path)
	}

	if attr == nil {
		if ap.optional {
			return nil
		}
		return fmt.Errorf("%s: missing required attribute %q", content.MissingItemRange, path)
	}

	if err := checkScope(rctx, path, spec, attr.Expr); err != nil {
		return err
	}
	val, diags := attr.Expr.Value(rctx.EvalContext())
	if diags.HasErrors() {
		return fmt.Errorf("evaluating %q: %s", path, diags.Error())
	}
	return assign(fieldVal, val, path)
}

func decodeBlocks(rctx *scope.Context, content *hcl.BodyContent, bp blockPlan, fieldVal reflect.Value, fields FieldSet, prefix string) error {
	path := joinPath(prefix, bp.name)
	spec := fields[path]
	blocks := content.Blocks.OfType(bp.name)

	// A thunk field captures the raw block body for later resolution.
	if th, ok := thunkTarget(fieldVal); ok {
		switch len(blocks) {
		case 0:
			return nil
		case 1:
			th.capture(&thunkCapture{path: path, body: blocks[0].Body, spec: spec, fields: fields})
			return nil
		default:
			return fmt.Errorf("duplicate block %q at %s", path, blocks[1].DefRange)
		}
	}

	if len(spec.RequiredScope) > 0 {
		if err := checkScope(rctx, path, spec, nil); err != nil {
			return err
		}
	}

	if bp.repeated {
		slice := reflect.MakeSlice(fieldVal.Type(), 0, len(blocks))
		for _, block := range blocks {
			elemPtr := reflect.New(bp.elem)
			if err := decodeBlock(rctx, block, elemPtr, fields, path); err != nil {
				return err
			}
			if bp.elemIsPtr {
				slice = reflect.Append(slice, elemPtr)
			} else {
				slice = reflect.Append(slice, elemPtr.Elem())
			}
		}
		fieldVal.Set(slice)
		return nil
	}

	switch len(blocks) {
	case 0:
		if bp.required {
			return fmt.Errorf("%s: missing required block %q", content.MissingItemRange, path)
		}
		return nil
	case 1:
		if bp.elemIsPtr {
			elemPtr := reflect.New(bp.elem)
			if err := decodeBlock(rctx, blocks[0], elemPtr, fields, path); err != nil {
				return err
			}
			fieldVal.Set(elemPtr)
			return nil
		}
		return decodeBlock(rctx, blocks[0], fieldVal.Addr(), fields, path)
	default:
		return fmt.Errorf("duplicate block %q at %s", path, blocks[1].DefRange)
	}
}

// decodeBlock fills a block struct: labels first, then the body.
func decodeBlock(rctx *scope.Context, block *hcl.Block, elemPtr reflect.Value, fields FieldSet, path string) error {
	plan, err := planOf(elemPtr.Elem().Type())
	if err != nil {
		return err
	}
	for i, idx := range plan.labelIdx {
		elemPtr.Elem().Field(idx).SetString(block.Labels[i])
	}
	if err := decodeBody(rctx, block.Body, elemPtr, fields, path); err != nil {
		return fmt.Errorf("in block at %s: %w", block.DefRange, err)
	}
	return nil
}

// checkScope verifies the field's declared RequiredScope and, when expr is
// non-nil, every variable root it references.
func checkScope(rctx *scope.Context, path string, spec Spec, expr hcl.Expression) error {
	var missing []string
	seen := map[string]struct{}{}
	record := func(root string) {
		if _, dup := seen[root]; dup {
			return
		}
		seen[root] = struct{}{}
		missing = append(missing, root)
	}

	for _, root := range spec.RequiredScope {
		if !rctx.Has(root) {
			record(root)
		}
	}
	if expr != nil {
		for _, root := range scope.MissingRoots(expr, rctx) {
			record(root)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ScopeError{Field: path, Missing: missing}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
