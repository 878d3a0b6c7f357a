// Package component defines the contract between the composer and the typed
// component implementations it loads from declarations.
package component

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/defstack/defstack/defs"
)

// Component is a fully resolved component instance, ready to materialize
// its definitions. Implementations are produced by a registered type's
// Build function and must not retain the LoadContext beyond the call.
type Component interface {
	BuildDefs(lctx *LoadContext) (*defs.Definitions, error)
}

// Scoped is an optional capability: a component that contributes extra
// scope bindings. The composer extends the load context's scope with these
// before calling BuildDefs, making them visible to the component's own
// deferred fields.
type Scoped interface {
	AdditionalScope() map[string]cty.Value
}

// Resources is the set of externally supplied resource objects available to
// components while building. It is read-only from a component's point of
// view.
type Resources map[string]any

// Get returns the named resource and whether it exists.
func (r Resources) Get(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}
