package decl

import (
	"github.com/hashicorp/hcl/v2"
)

// componentFileSchema frames a component.hcl file: component blocks only,
// each labeled with its type key. Block bodies stay raw for the resolution
// engine.
var componentFileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "component", LabelNames: []string{"type"}},
	},
}

// folderFileSchema frames a folder.hcl file: at most one scope block whose
// attributes extend the scope of every descendant node.
var folderFileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "scope"},
	},
}
