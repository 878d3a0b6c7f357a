// Package resolve decodes a component declaration body into a Go schema
// struct, evaluating attribute expressions against a scope.Context.
//
// Schema structs drive the decoder through `ds` struct tags:
//
//	Field string            `ds:"field"`            // required attribute
//	Group string            `ds:"group,optional"`   // optional attribute
//	Op    *OpSchema         `ds:"op,block"`         // optional single block
//	Rows  []RowSchema       `ds:"row,blocks"`       // repeated blocks
//	Key   string            `ds:"key,label"`        // block label
//	Rest  hcl.Body          `ds:",remain"`          // leftover body
//
// A field of type cty.Value receives the evaluated value as-is; other types
// are converted through go-cty, and a failed conversion is a *TypeError. An
// expression referencing a variable root that is not bound in the scope is a
// *ScopeError before anything is evaluated.
//
// A FieldSet attaches per-field behavior by dotted path: a RequiredScope
// that must be bound before the field resolves, or a FieldResolver that
// produces the value itself. Fields typed Thunk[T] are not resolved at
// decode time at all: the raw expression or block is captured and resolved
// later against a (usually extended) scope via Thunk.Resolve.
package resolve
