// Package assets provides the core/assets component type: assets and
// resource objects declared inline, one block per entry.
package assets

import (
	"fmt"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/registry"
	"github.com/defstack/defstack/scope"
	"github.com/defstack/defstack/typekey"
)

// Schema is the declaration shape of core/assets.
//
//	component "assets" {
//	  group = "analytics"             # default group for every asset below
//	  asset "raw_orders" {
//	    description = "Raw order intake"
//	    deps        = ["ingest_orders"]
//	    tags        = { layer = "bronze" }
//	  }
//	  resource "warehouse" {
//	    config = { dsn = "duckdb:///var/lib/wh.db" }
//	  }
//	}
type Schema struct {
	Group     string          `ds:"group,optional"`
	Assets    []AssetBlock    `ds:"asset,blocks"`
	Resources []ResourceBlock `ds:"resource,blocks"`
}

// AssetBlock declares one asset.
type AssetBlock struct {
	Key         string            `ds:"key,label"`
	Description string            `ds:"description,optional"`
	Group       string            `ds:"group,optional"`
	Deps        []string          `ds:"deps,optional"`
	Tags        map[string]string `ds:"tags,optional"`
	Metadata    map[string]string `ds:"metadata,optional"`
}

// ResourceBlock declares one named resource configuration object.
type ResourceBlock struct {
	Name   string         `ds:"name,label"`
	Config map[string]any `ds:"config,optional"`
}

// Component is the resolved core/assets instance.
type Component struct {
	schema *Schema
}

// BuildDefs materializes the declared assets and resources.
func (c *Component) BuildDefs(lctx *component.LoadContext) (*defs.Definitions, error) {
	d := &defs.Definitions{}
	for _, a := range c.schema.Assets {
		group := a.Group
		if group == "" {
			group = c.schema.Group
		}
		d.Assets = append(d.Assets, &defs.Asset{
			Key:         a.Key,
			Description: a.Description,
			Group:       group,
			Deps:        a.Deps,
			Tags:        a.Tags,
			Metadata:    a.Metadata,
		})
	}
	if len(c.schema.Resources) > 0 {
		d.Resources = make(map[string]any, len(c.schema.Resources))
		for _, r := range c.schema.Resources {
			d.Resources[r.Name] = r.Config
		}
	}
	return d, nil
}

// Plugin registers the component type.
type Plugin struct{}

func (p *Plugin) Register(r *registry.Registry) error {
	return r.RegisterType(&registry.Type{
		Key:       typekey.MustParse("core/assets"),
		NewSchema: func() any { return &Schema{} },
		Build: func(rctx *scope.Context, schema any) (component.Component, error) {
			s := schema.(*Schema)
			if len(s.Assets) == 0 && len(s.Resources) == 0 {
				return nil, fmt.Errorf("an assets component declares at least one asset or resource")
			}
			return &Component{schema: s}, nil
		},
	})
}
