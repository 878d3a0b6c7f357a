package composer

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/decl"
	"github.com/defstack/defstack/registry"
	"github.com/defstack/defstack/resolve"
	"github.com/defstack/defstack/scope"
)

// loadedComponent pairs a built component with the load context in effect
// at its leaf and the name that attributes its definitions in merge errors
// (the leaf directory relative to the components root).
type loadedComponent struct {
	comp component.Component
	lctx *component.LoadContext
	name string
}

// loadNode loads every component under the context's node, preserving child
// order. Folders first extend the scope with their folder.hcl bindings so
// the extension is visible to the whole subtree.
func loadNode(lctx *component.LoadContext, reg *registry.Registry, root string) ([]loadedComponent, error) {
	switch n := lctx.Node().(type) {
	case *decl.Leaf:
		loaded, err := loadLeaf(lctx, n, reg, root)
		if err != nil {
			return nil, err
		}
		return []loadedComponent{loaded}, nil

	case *decl.Folder:
		scoped := lctx
		if len(n.ScopeExprs) > 0 {
			vars, err := evalFolderScope(lctx.Scope(), n)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", filepath.Join(n.Path, decl.FolderFileName), err)
			}
			scoped = lctx.WithScope(vars)
		}
		var out []loadedComponent
		for _, child := range n.Children {
			loaded, err := loadNode(scoped.ForNode(child), reg, root)
			if err != nil {
				return nil, err
			}
			out = append(out, loaded...)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported declaration node %T", lctx.Node())
	}
}

// loadLeaf resolves a leaf's schema against the scope in effect and builds
// its component through the registered type.
func loadLeaf(lctx *component.LoadContext, leaf *decl.Leaf, reg *registry.Registry, root string) (loadedComponent, error) {
	typ, ok := reg.Lookup(leaf.TypeKey)
	if !ok {
		return loadedComponent{}, &registry.UnknownTypeError{Key: leaf.TypeKey, Path: leaf.File}
	}

	schema := typ.NewSchema()
	if err := resolve.Body(lctx.Scope(), leaf.Body, schema, typ.Fields); err != nil {
		return loadedComponent{}, fmt.Errorf("resolving %s: %w", leaf.File, err)
	}

	comp, err := typ.Build(lctx.Scope(), schema)
	if err != nil {
		return loadedComponent{}, fmt.Errorf("constructing component at %s: %w", leaf.File, err)
	}

	name, err := filepath.Rel(root, leaf.Path)
	if err != nil {
		name = leaf.Path
	}
	return loadedComponent{comp: comp, lctx: lctx, name: filepath.ToSlash(name)}, nil
}

// evalFolderScope evaluates a folder's scope attributes against the
// inherited scope. Attributes see only the parent scope, not each other.
func evalFolderScope(sc *scope.Context, folder *decl.Folder) (map[string]cty.Value, error) {
	names := make([]string, 0, len(folder.ScopeExprs))
	for name := range folder.ScopeExprs {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make(map[string]cty.Value, len(names))
	for _, name := range names {
		val, err := resolve.Expr(sc, "scope."+name, folder.ScopeExprs[name])
		if err != nil {
			return nil, err
		}
		vars[name] = val
	}
	return vars, nil
}
