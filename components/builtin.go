// Package components assembles the built-in component types compiled into
// the binary.
package components

import (
	"github.com/defstack/defstack/components/assets"
	"github.com/defstack/defstack/components/automation"
	"github.com/defstack/defstack/components/modelproject"
	"github.com/defstack/defstack/registry"
)

// Builtin is the definitive list of component type plugins every application
// instance registers by default.
func Builtin() []registry.Plugin {
	return []registry.Plugin{
		&assets.Plugin{},
		&modelproject.Plugin{},
		&automation.Plugin{},
	}
}
