package decl

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/defstack/defstack/typekey"
)

// Names of the files this package recognizes inside a declaration tree.
const (
	ComponentFileName = "component.hcl"
	FolderFileName    = "folder.hcl"
)

// Node is a position in the declaration tree: either a *Leaf or a *Folder.
type Node interface {
	// DirPath returns the directory this node was loaded from.
	DirPath() string

	node()
}

// Leaf is a directory declaring a single component instance.
type Leaf struct {
	// Path is the leaf directory; File the component.hcl inside it.
	Path string
	File string

	// TypeKey identifies the declared component type.
	TypeKey typekey.Key

	// Body is the raw content of the component block, decoded later by the
	// resolution engine against the scope in effect at this position.
	Body hcl.Body

	// DefRange locates the component block for error reporting.
	DefRange hcl.Range
}

func (l *Leaf) DirPath() string { return l.Path }
func (l *Leaf) node()           {}

// Folder is a directory grouping child nodes. Children are ordered by
// directory name.
type Folder struct {
	Path     string
	Children []Node

	// ScopeExprs holds the attribute expressions of the folder.hcl scope
	// block, unevaluated. Nil when the folder carries no folder.hcl.
	ScopeExprs map[string]hcl.Expression
}

func (f *Folder) DirPath() string { return f.Path }
func (f *Folder) node()           {}

// LeafDecls flattens the tree under node into its leaves, in depth-first
// pre-order. The order is deterministic because folder children are sorted.
func LeafDecls(node Node) []*Leaf {
	switch n := node.(type) {
	case *Leaf:
		return []*Leaf{n}
	case *Folder:
		var leaves []*Leaf
		for _, child := range n.Children {
			leaves = append(leaves, LeafDecls(child)...)
		}
		return leaves
	default:
		return nil
	}
}
