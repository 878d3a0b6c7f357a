// Package decl models a directory tree of component declarations.
//
// A directory containing a component.hcl file is a leaf: it declares exactly
// one component instance and is terminal, so nothing beneath it is scanned.
// Any other directory is a folder whose child directories are scanned in
// sorted order; a folder may carry a folder.hcl file whose scope block
// extends the resolution scope for every descendant.
//
// The package only frames declarations. The component block body is kept as
// raw HCL for the resolution engine; this package never evaluates
// expressions.
package decl
