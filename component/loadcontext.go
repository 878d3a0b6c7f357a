package component

import (
	"context"
	"log/slog"

	"github.com/zclconf/go-cty/cty"

	"github.com/defstack/defstack/decl"
	"github.com/defstack/defstack/internal/ctxlog"
	"github.com/defstack/defstack/scope"
)

// LoadContext carries everything a component sees while loading and
// building: its position in the declaration tree, the scope in effect
// there, the external resources, and the identity of the build unit it
// belongs to. Contexts are immutable; derivation returns copies.
type LoadContext struct {
	ctx       context.Context
	node      decl.Node
	scope     *scope.Context
	resources Resources
	unitID    string
}

// NewLoadContext returns the root load context for one build unit.
func NewLoadContext(ctx context.Context, node decl.Node, sc *scope.Context, res Resources, unitID string) *LoadContext {
	return &LoadContext{ctx: ctx, node: node, scope: sc, resources: res, unitID: unitID}
}

// Context returns the build's context.Context, which carries the logger and
// cancellation.
func (l *LoadContext) Context() context.Context { return l.ctx }

// Node returns the declaration node this context is positioned at.
func (l *LoadContext) Node() decl.Node { return l.node }

// Scope returns the resolution scope in effect at this position.
func (l *LoadContext) Scope() *scope.Context { return l.scope }

// Resources returns the externally supplied resources.
func (l *LoadContext) Resources() Resources { return l.resources }

// UnitID identifies the build unit, derived from its directory. Duplicate
// errors and cache entries are keyed by it.
func (l *LoadContext) UnitID() string { return l.unitID }

// Logger returns the logger carried by the build context.
func (l *LoadContext) Logger() *slog.Logger { return ctxlog.FromContext(l.ctx) }

// ForNode derives a context positioned at node, inheriting everything else.
func (l *LoadContext) ForNode(node decl.Node) *LoadContext {
	out := *l
	out.node = node
	return &out
}

// WithScope derives a context whose scope is extended with vars.
func (l *LoadContext) WithScope(vars map[string]cty.Value) *LoadContext {
	out := *l
	out.scope = l.scope.Extend(vars)
	return &out
}
