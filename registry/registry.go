// Package registry holds the component types an application instance knows
// how to load. A Registry is explicit state: it is built once at startup
// from plugins and passed to the composer, never consulted through a
// global.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/internal/ctxlog"
	"github.com/defstack/defstack/resolve"
	"github.com/defstack/defstack/scope"
	"github.com/defstack/defstack/typekey"
)

// Plugin is the interface a component package implements to contribute its
// types to a registry.
type Plugin interface {
	Register(r *Registry) error
}

// Type describes one registered component type: how to produce its schema
// struct (with defaults preset), how its fields resolve, and how to build
// the component from a resolved schema.
type Type struct {
	Key       typekey.Key
	NewSchema func() any
	Fields    resolve.FieldSet
	Build     func(rctx *scope.Context, schema any) (component.Component, error)
}

// Registry maps type keys to component types for a single application
// instance.
type Registry struct {
	types map[typekey.Key]*Type
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{types: make(map[typekey.Key]*Type)}
}

// RegisterType adds a component type. A malformed type is an error the
// plugin should surface; registering the same key twice is a programmer
// error and panics.
func (r *Registry) RegisterType(t *Type) error {
	switch {
	case t == nil:
		return fmt.Errorf("component type is nil")
	case t.Key.IsZero():
		return fmt.Errorf("component type has no key")
	case t.NewSchema == nil:
		return fmt.Errorf("component type %q has no schema factory", t.Key)
	case t.Build == nil:
		return fmt.Errorf("component type %q has no build function", t.Key)
	}
	if _, exists := r.types[t.Key]; exists {
		panic(fmt.Sprintf("component type %q already registered", t.Key))
	}
	slog.Debug("Registering component type.", "key", t.Key.String())
	r.types[t.Key] = t
	return nil
}

// Lookup returns the type registered under key.
func (r *Registry) Lookup(key typekey.Key) (*Type, bool) {
	t, ok := r.types[key]
	return t, ok
}

// Keys returns every registered key, sorted.
func (r *Registry) Keys() []typekey.Key {
	keys := make([]typekey.Key, 0, len(r.types))
	for key := range r.types {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }

// Discover builds a Registry from the given plugins. A plugin that fails to
// register is skipped with a warning; whatever it registered before failing
// stands, so a partial registry is a legal outcome.
func Discover(ctx context.Context, plugins ...Plugin) *Registry {
	logger := ctxlog.FromContext(ctx)
	reg := New()
	for _, p := range plugins {
		if err := p.Register(reg); err != nil {
			logger.Warn("Skipping component plugin.", "plugin", fmt.Sprintf("%T", p), "error", err)
			continue
		}
	}
	logger.Debug("Component type discovery complete.", "types", reg.Len())
	return reg
}
