package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUnit(t *testing.T, root, unit, content string) {
	t.Helper()
	dir := filepath.Join(root, unit)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "component.hcl"), []byte(content), 0o644))
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}

	err := run(out, errW, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "expected help text on the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}

	err := run(out, errW, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_BuildsComponentsRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeUnit(t, root, "warehouse", `
component "assets" {
  asset "orders" {
    description = "Order facts"
  }
}
`)

	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}
	require.NoError(t, run(out, errW, []string{"--output", "json", root}))

	var got struct {
		Status string   `json:"status"`
		Assets []string `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), "stdout should be clean JSON: %s", out.String())
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, []string{"orders"}, got.Assets)
}

func TestRun_HumanSummary(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeUnit(t, root, "warehouse", `
component "assets" {
  asset "orders" {}
}
`)

	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}
	require.NoError(t, run(out, errW, []string{root}))
	assert.Contains(t, out.String(), "Build succeeded.")
}

func TestRun_DuplicateAssetFailsBuild(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, unit := range []string{"first", "second"} {
		writeUnit(t, root, unit, `
component "assets" {
  asset "orders" {}
}
`)
	}

	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}
	err := run(out, errW, []string{root})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate asset "orders"`)
	assert.Contains(t, err.Error(), `"first"`)
	assert.Contains(t, err.Error(), `"second"`)
}

func TestRun_MalformedDeclaration(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeUnit(t, root, "broken", `component "assets" { asset "x" {`)

	out := &bytes.Buffer{}
	errW := &bytes.Buffer{}
	err := run(out, errW, []string{root})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "component.hcl")
}
