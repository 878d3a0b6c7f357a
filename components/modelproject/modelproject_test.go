package modelproject

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/decl"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/registry"
	"github.com/defstack/defstack/resolve"
	"github.com/defstack/defstack/scope"
	"github.com/defstack/defstack/typekey"
)

const jaffleManifest = `
name: jaffle
models:
  - name: stg_orders
    group: staging
  - name: orders
    description: Order facts
    group: marts
    depends_on: [stg_orders, orders_tmp, external_raw]
    tags:
      materialized: table
  - name: orders_tmp
    group: scratch
    depends_on: [stg_orders]
`

// buildInDir writes the manifest into a component directory and runs the
// full type pipeline: schema resolution, build, BuildDefs.
func buildInDir(t *testing.T, rctx *scope.Context, manifest, src string) (*defs.Definitions, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644))

	f, diags := hclsyntax.ParseConfig([]byte(src), "component.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), "parse: %s", diags)

	reg := registry.New()
	require.NoError(t, (&Plugin{}).Register(reg))
	typ, ok := reg.Lookup(typekey.MustParse("core/model_project"))
	require.True(t, ok)

	schema := typ.NewSchema()
	if err := resolve.Body(rctx, f.Body, schema, typ.Fields); err != nil {
		return nil, err
	}
	comp, err := typ.Build(rctx, schema)
	if err != nil {
		return nil, err
	}
	lctx := component.NewLoadContext(context.Background(), &decl.Leaf{Path: dir}, rctx, nil, "unit")
	return comp.BuildDefs(lctx)
}

func TestBuildDefs(t *testing.T) {
	t.Parallel()

	d, err := buildInDir(t, scope.New(nil), jaffleManifest, `
exclude    = ["*_tmp"]
key_prefix = "jaffle_"

op {
  name = "jaffle_refresh"
  tags = { team = "data" }
}

asset_attributes {
  tags = { model = node.name }
}

post_process {
  select = ["jaffle_orders"]
  tags   = { tier = "gold" }
}
`)
	require.NoError(t, err)

	require.Len(t, d.Assets, 2, "orders_tmp is excluded")

	stg := d.AssetByKey("jaffle_stg_orders")
	require.NotNil(t, stg)
	assert.Equal(t, "staging", stg.Group)
	assert.Equal(t, map[string]string{"model": "stg_orders"}, stg.Tags)
	assert.Empty(t, stg.Deps)

	orders := d.AssetByKey("jaffle_orders")
	require.NotNil(t, orders)
	assert.Equal(t, "Order facts", orders.Description)
	assert.Equal(t, []string{"jaffle_stg_orders", "external_raw"}, orders.Deps,
		"selected deps get the prefix, excluded deps drop, foreign deps stay")
	assert.Equal(t, map[string]string{
		"materialized": "table",
		"model":        "orders",
		"tier":         "gold",
	}, orders.Tags, "model tags, asset_attributes, and post_process all land")

	job := d.JobByName("jaffle_refresh")
	require.NotNil(t, job)
	assert.Equal(t, []string{"jaffle_stg_orders", "jaffle_orders"}, job.Assets, "manifest order")
	assert.Equal(t, map[string]string{"team": "data"}, job.Tags)
}

func TestBuildDefsDefaults(t *testing.T) {
	t.Parallel()

	d, err := buildInDir(t, scope.New(nil), jaffleManifest, ``)
	require.NoError(t, err)

	assert.Len(t, d.Assets, 3, "no selection keeps every model")
	assert.NotNil(t, d.AssetByKey("orders"), "no prefix by default")

	job := d.JobByName("jaffle")
	require.NotNil(t, job, "default job name is the project name")
	assert.Len(t, job.Assets, 3)
}

func TestSelectPatterns(t *testing.T) {
	t.Parallel()

	d, err := buildInDir(t, scope.New(nil), jaffleManifest, `select = ["stg_*"]`)
	require.NoError(t, err)

	require.Len(t, d.Assets, 1)
	assert.Equal(t, "stg_orders", d.Assets[0].Key)
}

func TestEmptySelection(t *testing.T) {
	t.Parallel()

	d, err := buildInDir(t, scope.New(nil), jaffleManifest, `select = ["nothing_matches_*"]`)
	require.NoError(t, err)
	assert.True(t, d.IsEmpty(), "no assets and no job for an empty selection")
}

func TestAssetAttributesSeeOuterScope(t *testing.T) {
	t.Parallel()

	rctx := scope.New(map[string]cty.Value{"env": cty.StringVal("prod")})
	d, err := buildInDir(t, rctx, jaffleManifest, `
select = ["orders"]

asset_attributes {
  group    = upper(node.group)
  metadata = { env = env }
}
`)
	require.NoError(t, err)

	orders := d.AssetByKey("orders")
	require.NotNil(t, orders)
	assert.Equal(t, "MARTS", orders.Group, "attribute overlay replaces the model group")
	assert.Equal(t, map[string]string{"env": "prod"}, orders.Metadata)
}

func TestAssetAttributesScopeError(t *testing.T) {
	t.Parallel()

	_, err := buildInDir(t, scope.New(nil), jaffleManifest, `
select = ["orders"]

asset_attributes {
  group = shard.name
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `asset_attributes for model "orders"`)

	var scopeErr *resolve.ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, []string{"shard"}, scopeErr.Missing)
}

func TestMissingManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f, diags := hclsyntax.ParseConfig([]byte(``), "component.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors())

	reg := registry.New()
	require.NoError(t, (&Plugin{}).Register(reg))
	typ, _ := reg.Lookup(typekey.MustParse("core/model_project"))

	schema := typ.NewSchema()
	require.NoError(t, resolve.Body(scope.New(nil), f.Body, schema, typ.Fields))
	comp, err := typ.Build(scope.New(nil), schema)
	require.NoError(t, err)

	lctx := component.NewLoadContext(context.Background(), &decl.Leaf{Path: dir}, scope.New(nil), nil, "unit")
	_, err = comp.BuildDefs(lctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading model manifest")
}

func TestBuildRejectsBadPatterns(t *testing.T) {
	t.Parallel()

	_, err := buildInDir(t, scope.New(nil), jaffleManifest, `select = ["[unclosed"]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid selection pattern "[unclosed"`)
}
