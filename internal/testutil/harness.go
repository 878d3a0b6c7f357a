// Package testutil provides a standardized harness for tests that need a
// real components root on disk and a full build run against it.
package testutil

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/internal/app"
	"github.com/defstack/defstack/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteTree writes files into root. Keys are slash-separated paths relative
// to root ("a/component.hcl"); parent directories are created as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// HarnessResult holds the outcomes of a full build run.
type HarnessResult struct {
	Defs      *defs.Definitions
	LogOutput string
	Err       error
	App       *app.App
	Root      string
}

type buildOptions struct {
	resources component.Resources
	plugins   []registry.Plugin
	workers   int
}

// BuildOption customizes a harness run.
type BuildOption func(*buildOptions)

// WithResources supplies external resources to the build.
func WithResources(res component.Resources) BuildOption {
	return func(o *buildOptions) { o.resources = res }
}

// WithPlugins replaces the built-in component types for the run.
func WithPlugins(plugins ...registry.Plugin) BuildOption {
	return func(o *buildOptions) { o.plugins = plugins }
}

// WithWorkers sets the worker count for the run.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) { o.workers = n }
}

// RunBuildTest writes the given files into a fresh components root and runs
// a full build against it using a default background context.
func RunBuildTest(t *testing.T, files map[string]string, opts ...BuildOption) *HarnessResult {
	t.Helper()
	return RunBuildTestWithContext(context.Background(), t, files, opts...)
}

// RunBuildTestWithContext is RunBuildTest with a caller-provided context.
func RunBuildTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts ...BuildOption) *HarnessResult {
	t.Helper()

	o := &buildOptions{workers: 1}
	for _, opt := range opts {
		opt(o)
	}

	root := t.TempDir()
	WriteTree(t, root, files)

	cfg, err := app.NewConfig(app.Config{
		RootPath:  root,
		LogLevel:  "debug",
		LogFormat: "text",
		Workers:   o.workers,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := app.New(io.Discard, logBuffer, cfg, o.plugins...)
	d, buildErr := testApp.Build(ctx, o.resources)

	if os.Getenv("DEFSTACK_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Defs:      d,
		LogOutput: logBuffer.String(),
		Err:       buildErr,
		App:       testApp,
		Root:      root,
	}
}
