// Package modelproject provides the core/model_project component type. It
// turns a model project manifest (a YAML inventory of models and their
// dependency edges) into one asset per selected model plus a job that
// materializes the selection.
//
//	component "model_project" {
//	  manifest   = "manifest.yaml"        # relative to the component directory
//	  select     = ["orders*"]            # optional glob patterns over model names
//	  exclude    = ["*_tmp"]
//	  key_prefix = "jaffle_"              # prepended verbatim to every asset key
//
//	  op {
//	    name = "jaffle_refresh"           # job name; defaults to the project name
//	    tags = { team = "data" }
//	  }
//
//	  asset_attributes {                  # deferred: resolved once per model with
//	    group = node.group                # `node` bound to the model's attributes
//	    tags  = { model = node.name }
//	  }
//
//	  post_process {                      # applied to the built definitions
//	    select = ["jaffle_orders"]        # glob patterns over final asset keys
//	    tags   = { tier = "gold" }
//	  }
//	}
//
// Dependency edges are remapped through the same key prefix. An edge to a
// model excluded from the selection is dropped; an edge to a name the
// manifest does not know is kept verbatim, so it can resolve against assets
// contributed by other units.
package modelproject

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/registry"
	"github.com/defstack/defstack/resolve"
	"github.com/defstack/defstack/scope"
	"github.com/defstack/defstack/typekey"
)

// DefaultManifestName applies when a component omits the manifest path.
const DefaultManifestName = "manifest.yaml"

// Schema is the declaration shape of core/model_project.
type Schema struct {
	Manifest  string                    `ds:"manifest,optional"`
	Select    []string                  `ds:"select,optional"`
	Exclude   []string                  `ds:"exclude,optional"`
	KeyPrefix string                    `ds:"key_prefix,optional"`
	Op        *OpBlock                  `ds:"op,block"`
	Attrs     resolve.Thunk[AttrsBlock] `ds:"asset_attributes,block"`
	Post      []PostBlock               `ds:"post_process,blocks"`
}

// OpBlock customizes the job built over the selection.
type OpBlock struct {
	Name string            `ds:"name"`
	Tags map[string]string `ds:"tags,optional"`
}

// AttrsBlock overlays attributes onto every selected model's asset. Its
// expressions may reference `node`, which is bound per model at build time.
// Tags and metadata merge into the model's own, with the overlay winning per
// key; description and group replace when set.
type AttrsBlock struct {
	Description string            `ds:"description,optional"`
	Group       string            `ds:"group,optional"`
	Tags        map[string]string `ds:"tags,optional"`
	Metadata    map[string]string `ds:"metadata,optional"`
}

// PostBlock rewrites assets matching its selection after the unit's
// definitions are built.
type PostBlock struct {
	Select   []string          `ds:"select,optional"`
	Tags     map[string]string `ds:"tags,optional"`
	Metadata map[string]string `ds:"metadata,optional"`
}

var fields = resolve.FieldSet{
	"asset_attributes": {RequiredScope: []string{"node"}},
}

// postProcessorFn rewrites a unit's definitions in place.
type postProcessorFn func(*defs.Definitions) error

// Component is the resolved core/model_project instance.
type Component struct {
	manifestPath string
	selectPats   []string
	excludePats  []string
	keyPrefix    string
	op           *OpBlock
	attrs        resolve.Thunk[AttrsBlock]
	post         []postProcessorFn
}

func build(rctx *scope.Context, schema any) (component.Component, error) {
	s := schema.(*Schema)
	for _, pats := range [][]string{s.Select, s.Exclude} {
		if err := checkPatterns(pats); err != nil {
			return nil, err
		}
	}
	if s.Op != nil && s.Op.Name == "" {
		return nil, fmt.Errorf("op block requires a name")
	}
	c := &Component{
		manifestPath: s.Manifest,
		selectPats:   s.Select,
		excludePats:  s.Exclude,
		keyPrefix:    s.KeyPrefix,
		op:           s.Op,
		attrs:        s.Attrs,
	}
	for _, p := range s.Post {
		if err := checkPatterns(p.Select); err != nil {
			return nil, err
		}
		c.post = append(c.post, compilePostProcessor(p))
	}
	return c, nil
}

func checkPatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("invalid selection pattern %q", p)
		}
	}
	return nil
}

func compilePostProcessor(p PostBlock) postProcessorFn {
	return func(d *defs.Definitions) error {
		for _, a := range d.Assets {
			match := len(p.Select) == 0
			if !match {
				ok, err := matchAny(p.Select, a.Key)
				if err != nil {
					return err
				}
				match = ok
			}
			if !match {
				continue
			}
			a.Tags = mergeStringMaps(a.Tags, p.Tags)
			a.Metadata = mergeStringMaps(a.Metadata, p.Metadata)
		}
		return nil
	}
}

// BuildDefs loads the manifest, selects models, and materializes assets and
// the selection job.
func (c *Component) BuildDefs(lctx *component.LoadContext) (*defs.Definitions, error) {
	manifestPath := c.manifestPath
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(lctx.Node().DirPath(), manifestPath)
	}
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	selected, err := c.selectModels(manifest.Models)
	if err != nil {
		return nil, err
	}
	lctx.Logger().Debug("Model project loaded.",
		"manifest", manifestPath, "models", len(manifest.Models), "selected", len(selected))
	if len(selected) == 0 {
		return &defs.Definitions{}, nil
	}

	inProject := make(map[string]bool, len(manifest.Models))
	for _, m := range manifest.Models {
		inProject[m.Name] = true
	}
	isSelected := make(map[string]bool, len(selected))
	for _, m := range selected {
		isSelected[m.Name] = true
	}

	d := &defs.Definitions{}
	jobAssets := make([]string, 0, len(selected))
	for _, m := range selected {
		asset := &defs.Asset{
			Key:         c.keyPrefix + m.Name,
			Description: m.Description,
			Group:       m.Group,
			Deps:        c.mapDeps(m.DependsOn, inProject, isSelected),
			Tags:        copyStringMap(m.Tags),
			Metadata:    copyStringMap(m.Meta),
		}
		if c.attrs.IsSet() {
			rctx := lctx.Scope().Extend(map[string]cty.Value{"node": nodeValue(m)})
			attrs, err := c.attrs.Resolve(rctx)
			if err != nil {
				return nil, fmt.Errorf("resolving asset_attributes for model %q: %w", m.Name, err)
			}
			applyAttrs(asset, attrs)
		}
		d.Assets = append(d.Assets, asset)
		jobAssets = append(jobAssets, asset.Key)
	}

	job := &defs.Job{Name: manifest.Name, Assets: jobAssets}
	if c.op != nil {
		job.Name = c.op.Name
		job.Tags = c.op.Tags
	}
	d.Jobs = append(d.Jobs, job)

	for _, pp := range c.post {
		if err := pp(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// selectModels keeps manifest order: a model is in when it matches any
// select pattern (or none are given) and matches no exclude pattern.
func (c *Component) selectModels(models []Model) ([]Model, error) {
	selected := make([]Model, 0, len(models))
	for _, m := range models {
		in := len(c.selectPats) == 0
		if !in {
			ok, err := matchAny(c.selectPats, m.Name)
			if err != nil {
				return nil, err
			}
			in = ok
		}
		if in && len(c.excludePats) > 0 {
			ok, err := matchAny(c.excludePats, m.Name)
			if err != nil {
				return nil, err
			}
			in = !ok
		}
		if in {
			selected = append(selected, m)
		}
	}
	return selected, nil
}

func (c *Component) mapDeps(deps []string, inProject, isSelected map[string]bool) []string {
	if len(deps) == 0 {
		return nil
	}
	mapped := make([]string, 0, len(deps))
	for _, dep := range deps {
		switch {
		case isSelected[dep]:
			mapped = append(mapped, c.keyPrefix+dep)
		case inProject[dep]:
			// Edge into the excluded part of the project: the selection
			// subsets the graph, so the edge goes with it.
		default:
			mapped = append(mapped, dep)
		}
	}
	if len(mapped) == 0 {
		return nil
	}
	return mapped
}

func matchAny(patterns []string, name string) (bool, error) {
	for _, p := range patterns {
		ok, err := path.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("invalid selection pattern %q", p)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// nodeValue is the scope binding asset_attributes expressions see for one
// model.
func nodeValue(m Model) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"name":        cty.StringVal(m.Name),
		"description": cty.StringVal(m.Description),
		"group":       cty.StringVal(m.Group),
		"tags":        stringMapVal(m.Tags),
	})
}

func stringMapVal(m map[string]string) cty.Value {
	if len(m) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	vals := make(map[string]cty.Value, len(m))
	for k, v := range m {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}

func applyAttrs(a *defs.Asset, attrs AttrsBlock) {
	if attrs.Description != "" {
		a.Description = attrs.Description
	}
	if attrs.Group != "" {
		a.Group = attrs.Group
	}
	a.Tags = mergeStringMaps(a.Tags, attrs.Tags)
	a.Metadata = mergeStringMaps(a.Metadata, attrs.Metadata)
}

func mergeStringMaps(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Plugin registers the component type.
type Plugin struct{}

func (p *Plugin) Register(r *registry.Registry) error {
	return r.RegisterType(&registry.Type{
		Key:       typekey.MustParse("core/model_project"),
		NewSchema: func() any { return &Schema{Manifest: DefaultManifestName} },
		Fields:    fields,
		Build:     build,
	})
}
