package resolve

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// structPlan is the decode plan implied by a schema struct's `ds` tags,
// paired with the hcl.BodySchema that frames matching bodies.
type structPlan struct {
	schema   *hcl.BodySchema
	attrs    []attrPlan
	blocks   []blockPlan
	labelIdx []int
	remain   int
}

type attrPlan struct {
	index    int
	name     string
	optional bool
}

type blockPlan struct {
	index     int
	name      string
	repeated  bool
	required  bool
	elem      reflect.Type
	elemIsPtr bool
}

var bodyType = reflect.TypeOf((*hcl.Body)(nil)).Elem()

func planOf(t reflect.Type) (*structPlan, error) {
	plan := &structPlan{schema: &hcl.BodySchema{}, remain: -1}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("ds")
		if tag == "" || tag == "-" {
			continue
		}
		name, kind, optional, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("schema field %s.%s: %w", t.Name(), f.Name, err)
		}

		switch kind {
		case tagRemain:
			if f.Type != bodyType {
				return nil, fmt.Errorf("schema field %s.%s: remain requires hcl.Body", t.Name(), f.Name)
			}
			plan.remain = i

		case tagLabel:
			if f.Type.Kind() != reflect.String {
				return nil, fmt.Errorf("schema field %s.%s: label requires string", t.Name(), f.Name)
			}
			plan.labelIdx = append(plan.labelIdx, i)

		case tagBlock, tagBlocks:
			bp := blockPlan{index: i, name: name, repeated: kind == tagBlocks}
			header := hcl.BlockHeaderSchema{Type: name}

			if isThunk(f.Type) {
				if bp.repeated {
					return nil, fmt.Errorf("schema field %s.%s: a deferred field captures a single block", t.Name(), f.Name)
				}
				plan.schema.Blocks = append(plan.schema.Blocks, header)
				plan.blocks = append(plan.blocks, bp)
				continue
			}

			elem := f.Type
			if bp.repeated {
				if elem.Kind() != reflect.Slice {
					return nil, fmt.Errorf("schema field %s.%s: blocks requires a slice", t.Name(), f.Name)
				}
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Pointer {
				bp.elemIsPtr = true
				elem = elem.Elem()
			} else if !bp.repeated {
				bp.required = true
			}
			if elem.Kind() != reflect.Struct {
				return nil, fmt.Errorf("schema field %s.%s: block requires a struct type", t.Name(), f.Name)
			}
			bp.elem = elem

			labels, err := labelNamesOf(elem)
			if err != nil {
				return nil, err
			}
			header.LabelNames = labels
			plan.schema.Blocks = append(plan.schema.Blocks, header)
			plan.blocks = append(plan.blocks, bp)

		default: // attribute
			if isThunk(f.Type) {
				optional = true
			}
			plan.attrs = append(plan.attrs, attrPlan{index: i, name: name, optional: optional})
			plan.schema.Attributes = append(plan.schema.Attributes, hcl.AttributeSchema{Name: name})
		}
	}
	return plan, nil
}

// labelNamesOf returns the label attribute names of a block struct, in
// field order.
func labelNamesOf(t reflect.Type) ([]string, error) {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("ds")
		if tag == "" || tag == "-" {
			continue
		}
		name, kind, _, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("schema field %s.%s: %w", t.Name(), f.Name, err)
		}
		if kind == tagLabel {
			names = append(names, name)
		}
	}
	return names, nil
}

type tagKind int

const (
	tagAttr tagKind = iota
	tagLabel
	tagBlock
	tagBlocks
	tagRemain
)

func parseTag(tag string) (name string, kind tagKind, optional bool, err error) {
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		switch opt {
		case "optional":
			optional = true
		case "label":
			kind = tagLabel
		case "block":
			kind = tagBlock
		case "blocks":
			kind = tagBlocks
		case "remain":
			kind = tagRemain
		default:
			return "", 0, false, fmt.Errorf("unknown ds tag option %q", opt)
		}
	}
	if name == "" && kind != tagRemain {
		return "", 0, false, fmt.Errorf("ds tag %q has no name", tag)
	}
	return name, kind, optional, nil
}
