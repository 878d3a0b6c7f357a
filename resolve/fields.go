package resolve

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/defstack/defstack/scope"
)

// Field hands a FieldResolver what the declaration provides for one schema
// field. Expr is nil when the attribute was omitted, letting the resolver
// supply a derived default.
type Field struct {
	Path string
	Expr hcl.Expression
}

// FieldResolver produces a field's Go value directly instead of the default
// evaluate-and-convert path. The returned value must be assignable to the
// schema field. Resolvers apply to attributes only.
type FieldResolver func(rctx *scope.Context, field Field) (any, error)

// Spec attaches resolution behavior to a single schema field.
type Spec struct {
	// RequiredScope lists variable roots that must be bound before the
	// field may resolve, independent of what its expressions reference.
	RequiredScope []string

	// Resolver, when set, produces the field value.
	Resolver FieldResolver
}

// FieldSet maps dotted field paths (e.g. "op.name") to their Spec. Paths
// inside repeated blocks carry no index; the Spec applies to every instance.
type FieldSet map[string]Spec
