package decl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/defstack/defstack/internal/ctxlog"
	"github.com/defstack/defstack/internal/fsutil"
	"github.com/defstack/defstack/typekey"
)

// PathToNode loads the declaration tree rooted at path. A directory with a
// component.hcl becomes a *Leaf and its subdirectories are ignored; any
// other directory becomes a *Folder of its declaring children. When neither
// path nor any descendant declares a component, the error is a
// *NotFoundError.
func PathToNode(ctx context.Context, path string) (Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading declaration path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("declaration path %q is not a directory", path)
	}

	declFile := filepath.Join(path, ComponentFileName)
	if _, err := os.Stat(declFile); err == nil {
		return loadLeaf(ctx, path, declFile)
	}
	return loadFolder(ctx, path)
}

// loadLeaf parses a component.hcl into a Leaf. The file must contain exactly
// one component block.
func loadLeaf(ctx context.Context, dir, file string) (*Leaf, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding component declaration.", "path", file)

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", file, diags.Error())
	}

	content, diags := f.Body.Content(componentFileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %s", file, diags.Error())
	}

	blocks := content.Blocks.OfType("component")
	switch len(blocks) {
	case 1:
		// The single declaration this file exists for.
	case 0:
		return nil, fmt.Errorf("%s declares no component block", file)
	default:
		return nil, fmt.Errorf("%s: duplicate component block at %s; a leaf declares exactly one",
			file, blocks[1].DefRange)
	}
	block := blocks[0]

	key, err := typekey.Parse(block.Labels[0])
	if err != nil {
		return nil, fmt.Errorf("%s: invalid component type %q: %w", block.DefRange, block.Labels[0], err)
	}

	return &Leaf{
		Path:     dir,
		File:     file,
		TypeKey:  key,
		Body:     block.Body,
		DefRange: block.DefRange,
	}, nil
}

// loadFolder scans a directory's children in sorted order, keeping the ones
// that declare something. A folder with no declaring descendants is a
// NotFoundError even when it carries a folder.hcl.
func loadFolder(ctx context.Context, dir string) (*Folder, error) {
	scopeExprs, err := loadFolderScope(ctx, dir)
	if err != nil {
		return nil, err
	}

	childDirs, err := fsutil.ListChildDirs(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning declaration folder: %w", err)
	}

	var children []Node
	for _, childDir := range childDirs {
		child, err := PathToNode(ctx, childDir)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		children = append(children, child)
	}

	if len(children) == 0 {
		return nil, &NotFoundError{Path: dir}
	}
	return &Folder{Path: dir, Children: children, ScopeExprs: scopeExprs}, nil
}

// loadFolderScope reads the optional folder.hcl and returns the unevaluated
// scope attribute expressions, or nil when the file is absent.
func loadFolderScope(ctx context.Context, dir string) (map[string]hcl.Expression, error) {
	file := filepath.Join(dir, FolderFileName)
	if _, err := os.Stat(file); err != nil {
		return nil, nil
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding folder scope.", "path", file)

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", file, diags.Error())
	}

	content, diags := f.Body.Content(folderFileSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %s", file, diags.Error())
	}

	blocks := content.Blocks.OfType("scope")
	if len(blocks) == 0 {
		return nil, nil
	}
	if len(blocks) > 1 {
		return nil, fmt.Errorf("%s: duplicate scope block at %s", file, blocks[1].DefRange)
	}

	attrs, diags := blocks[0].Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s scope block: %s", file, diags.Error())
	}

	exprs := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprs[name] = attr.Expr
	}
	return exprs, nil
}
