package testutil

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/registry"
	"github.com/defstack/defstack/scope"
	"github.com/defstack/defstack/typekey"
)

// ExecutionRecord holds the start and end times of a single build call.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two execution windows intersect.
func (r *ExecutionRecord) Overlaps(other *ExecutionRecord) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// CountingPlugin registers the test/counted component type, which emits one
// asset per entry in its keys argument. Every BuildDefs call increments
// Builds, making cache behavior observable.
//
//	component "test/counted" {
//	  keys = ["a"]
//	}
type CountingPlugin struct {
	Builds *atomic.Int64
}

func (p *CountingPlugin) Register(r *registry.Registry) error {
	return r.RegisterType(&registry.Type{
		Key:       typekey.MustParse("test/counted"),
		NewSchema: func() any { return &countedSchema{} },
		Build: func(rctx *scope.Context, schema any) (component.Component, error) {
			return &countedComponent{schema: schema.(*countedSchema), builds: p.Builds}, nil
		},
	})
}

type countedSchema struct {
	Keys []string `ds:"keys"`
}

type countedComponent struct {
	schema *countedSchema
	builds *atomic.Int64
}

func (c *countedComponent) BuildDefs(lctx *component.LoadContext) (*defs.Definitions, error) {
	if c.builds != nil {
		c.builds.Add(1)
	}
	d := &defs.Definitions{}
	for _, key := range c.schema.Keys {
		d.Assets = append(d.Assets, &defs.Asset{Key: key})
	}
	return d, nil
}

// SleeperPlugin registers the test/sleeper component type, which sleeps
// through its build and records the execution window per declared id. It is
// shared by concurrency tests that assert on overlapping builds.
//
//	component "test/sleeper" {
//	  id = "a"
//	}
type SleeperPlugin struct {
	sleep          time.Duration
	completionChan chan<- string

	mu      sync.Mutex
	records map[string]*ExecutionRecord
}

// NewSleeperPlugin creates a sleeper plugin for testing. completionChan may
// be nil.
func NewSleeperPlugin(completionChan chan<- string, sleep time.Duration) *SleeperPlugin {
	return &SleeperPlugin{
		sleep:          sleep,
		completionChan: completionChan,
		records:        make(map[string]*ExecutionRecord),
	}
}

// Record returns the execution window recorded for id, or nil.
func (p *SleeperPlugin) Record(id string) *ExecutionRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records[id]
}

func (p *SleeperPlugin) Register(r *registry.Registry) error {
	return r.RegisterType(&registry.Type{
		Key:       typekey.MustParse("test/sleeper"),
		NewSchema: func() any { return &sleeperSchema{} },
		Build: func(rctx *scope.Context, schema any) (component.Component, error) {
			return &sleeperComponent{id: schema.(*sleeperSchema).ID, plugin: p}, nil
		},
	})
}

type sleeperSchema struct {
	ID string `ds:"id"`
}

type sleeperComponent struct {
	id     string
	plugin *SleeperPlugin
}

func (c *sleeperComponent) BuildDefs(lctx *component.LoadContext) (*defs.Definitions, error) {
	start := time.Now()
	time.Sleep(c.plugin.sleep)
	end := time.Now()

	c.plugin.mu.Lock()
	c.plugin.records[c.id] = &ExecutionRecord{Start: start, End: end}
	c.plugin.mu.Unlock()

	if c.plugin.completionChan != nil {
		c.plugin.completionChan <- c.id
	}
	return &defs.Definitions{Assets: []*defs.Asset{{Key: c.id}}}, nil
}

// NoOpPlugin registers the test/noop component type, which takes no
// arguments and contributes nothing. It is useful for tests that need a
// valid declaration tree but should fail before or after the build phase
// for other reasons.
type NoOpPlugin struct{}

func (p *NoOpPlugin) Register(r *registry.Registry) error {
	return r.RegisterType(&registry.Type{
		Key:       typekey.MustParse("test/noop"),
		NewSchema: func() any { return &struct{}{} },
		Build: func(rctx *scope.Context, schema any) (component.Component, error) {
			return noopComponent{}, nil
		},
	})
}

type noopComponent struct{}

func (noopComponent) BuildDefs(lctx *component.LoadContext) (*defs.Definitions, error) {
	return &defs.Definitions{}, nil
}
