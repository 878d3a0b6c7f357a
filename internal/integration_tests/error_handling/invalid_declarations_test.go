package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/defstack/defstack/internal/testutil"
)

// Malformed HCL fails the build with the file named in the error.
func TestErrorHandling_InvalidHCLIsRejected(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"broken/component.hcl": `
component "assets" {
  asset "x" {
`,
	}

	result := testutil.RunBuildTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "component.hcl")
}

// A declaration file must hold exactly one component block.
func TestErrorHandling_TwoComponentBlocksRejected(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"double/component.hcl": `
component "assets" {
  asset "a" {}
}

component "assets" {
  asset "b" {}
}
`,
	}

	result := testutil.RunBuildTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "duplicate component block")
}

// An asset depending on a key no unit contributes fails composite validation.
func TestErrorHandling_DanglingDependency(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"warehouse/component.hcl": `
component "assets" {
  asset "orders" {
    deps = ["ghost"]
  }
}
`,
	}

	result := testutil.RunBuildTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), `asset "orders" depends on undefined asset "ghost"`)
}

// Cross-unit dependency cycles are reported with the keys along the cycle.
func TestErrorHandling_DependencyCycle(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"a/component.hcl": `
component "assets" {
  asset "left" {
    deps = ["right"]
  }
}
`,
		"b/component.hcl": `
component "assets" {
  asset "right" {
    deps = ["left"]
  }
}
`,
	}

	result := testutil.RunBuildTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "asset dependency cycle")
	assert.Contains(t, result.Err.Error(), "left")
	assert.Contains(t, result.Err.Error(), "right")
}
