package composer

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_CacheSkipsUnchangedUnits(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a/component.hcl": `component "test/stub" { keys = ["raw"] }`,
		"b/component.hcl": `component "test/stub" { keys = ["clean"] }`,
	})

	var builds atomic.Int64
	reg := stubRegistry(t, &builds)
	cache := NewCache()

	first, err := Build(context.Background(), root, reg, nil, WithCache(cache))
	require.NoError(t, err)
	require.Equal(t, int64(2), builds.Load())
	assert.Equal(t, 2, cache.Len())

	// Unchanged files: both units reuse the cache, BuildDefs is not
	// re-invoked, and the result is identical.
	second, err := Build(context.Background(), root, reg, nil, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, int64(2), builds.Load())
	assert.Equal(t, first.AssetKeys(), second.AssetKeys())

	// Editing one unit rebuilds exactly that unit.
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "b", "component.hcl"),
		[]byte(`component "test/stub" { keys = ["clean_rebuilt"] }`), 0o644))

	third, err := Build(context.Background(), root, reg, nil, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, int64(3), builds.Load())
	assert.Equal(t, []string{"clean_rebuilt", "raw"}, third.AssetKeys())
}

func TestBuild_FailedBuildCommitsNothing(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a/component.hcl": `component "test/stub" { keys = ["x"] }`,
		"b/component.hcl": `component "test/stub" { keys = ["x"] }`,
	})

	var builds atomic.Int64
	reg := stubRegistry(t, &builds)
	cache := NewCache()

	// Both units build fine; the merge fails on the duplicate key. The
	// cache must stay empty: entries are only committed after a fully
	// successful build.
	_, err := Build(context.Background(), root, reg, nil, WithCache(cache))
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "b", "component.hcl"),
		[]byte(`component "test/stub" { keys = ["y_fixed"] }`), 0o644))

	merged, err := Build(context.Background(), root, reg, nil, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y_fixed"}, merged.AssetKeys())
	assert.Equal(t, 2, cache.Len())
}

func TestCache_InvalidateForcesRebuild(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a/component.hcl": `component "test/stub" { keys = ["raw"] }`,
		"b/component.hcl": `component "test/stub" { keys = ["clean"] }`,
	})

	var builds atomic.Int64
	reg := stubRegistry(t, &builds)
	cache := NewCache()

	_, err := Build(context.Background(), root, reg, nil, WithCache(cache))
	require.NoError(t, err)
	require.Equal(t, int64(2), builds.Load())

	cache.Invalidate(filepath.Join(root, "a"))

	_, err = Build(context.Background(), root, reg, nil, WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, int64(3), builds.Load(), "only the invalidated unit rebuilds")
}

func TestFingerprintUnit(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a/component.hcl": `component "test/stub" { keys = ["raw"] }`,
		"a/manifest.yaml": "models:\n  - name: orders\n",
	})
	unit := filepath.Join(root, "a")

	before, err := fingerprintUnit(unit)
	require.NoError(t, err)
	again, err := fingerprintUnit(unit)
	require.NoError(t, err)
	assert.Equal(t, before, again, "fingerprint is stable without changes")

	// Data files participate too, not just declarations.
	require.NoError(t, os.WriteFile(
		filepath.Join(unit, "manifest.yaml"),
		[]byte("models:\n  - name: orders\n  - name: users\n"), 0o644))

	after, err := fingerprintUnit(unit)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}
