// Package scope models the hierarchical variable scope that declaration
// expressions are evaluated against. A Context is an immutable link in a
// parent chain: lookups fall back to the parent, and extending a scope
// returns a child without touching the original. Deeper bindings shadow
// shallower ones by root name.
package scope

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Context is one link of a scope chain. The zero value is not usable; start
// from New.
type Context struct {
	parent *Context
	vars   map[string]cty.Value
}

// New returns a root scope holding the given bindings. The map is copied.
func New(vars map[string]cty.Value) *Context {
	return &Context{vars: copyVars(vars)}
}

// Extend returns a child scope whose bindings shadow the receiver's. The
// receiver is never modified. Extending with an empty map returns the
// receiver unchanged.
func (c *Context) Extend(vars map[string]cty.Value) *Context {
	if len(vars) == 0 {
		return c
	}
	return &Context{parent: c, vars: copyVars(vars)}
}

// Lookup returns the binding for name, consulting parents when the local
// link has none.
func (c *Context) Lookup(name string) (cty.Value, bool) {
	for s := c; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return cty.NilVal, false
}

// Has reports whether name is bound anywhere in the chain.
func (c *Context) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Roots returns every bound root name in the chain, sorted.
func (c *Context) Roots() []string {
	seen := map[string]struct{}{}
	for s := c; s != nil; s = s.parent {
		for name := range s.vars {
			seen[name] = struct{}{}
		}
	}
	roots := make([]string, 0, len(seen))
	for name := range seen {
		roots = append(roots, name)
	}
	sort.Strings(roots)
	return roots
}

// EvalContext flattens the chain into a single hcl.EvalContext carrying the
// standard function set. Shadowing is applied during flattening, so the
// result is self-contained.
func (c *Context) EvalContext() *hcl.EvalContext {
	flat := map[string]cty.Value{}
	var fill func(s *Context)
	fill = func(s *Context) {
		if s == nil {
			return
		}
		fill(s.parent)
		for name, v := range s.vars {
			flat[name] = v
		}
	}
	fill(c)

	return &hcl.EvalContext{
		Variables: flat,
		Functions: Functions(),
	}
}

func copyVars(vars map[string]cty.Value) map[string]cty.Value {
	out := make(map[string]cty.Value, len(vars))
	for name, v := range vars {
		out[name] = v
	}
	return out
}
