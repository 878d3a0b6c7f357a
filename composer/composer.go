package composer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/decl"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/internal/ctxlog"
	"github.com/defstack/defstack/internal/fsutil"
	"github.com/defstack/defstack/registry"
	"github.com/defstack/defstack/scope"
)

// externalUnit attributes the caller-supplied resources in merge errors.
const externalUnit = "external"

type options struct {
	cache   *Cache
	workers int
}

// Option adjusts how Build runs.
type Option func(*options)

// WithCache reuses unchanged units from (and commits fresh results to) c.
func WithCache(c *Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithWorkers lets up to n units build concurrently. Values below 2 keep
// the default sequential behavior; the merge is a single ordered pass
// either way, so n never changes the outcome.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 1 {
			o.workers = n
		}
	}
}

// unitResult is one build unit's outcome: its contribution to the merge and
// what the cache should remember about it.
type unitResult struct {
	dir         string
	fingerprint string
	units       []defs.Unit
	fromCache   bool
}

// Build is the public entry point: it builds every unit under root using
// the registered component types, merges all contributions with the
// external resources, validates the composite, and returns it. Nothing is
// cached unless the whole build succeeds.
func Build(ctx context.Context, root string, reg *registry.Registry, resources component.Resources, opts ...Option) (*defs.Definitions, error) {
	logger := ctxlog.FromContext(ctx)
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	unitDirs, err := fsutil.ListChildDirs(root)
	if err != nil {
		return nil, fmt.Errorf("listing build units: %w", err)
	}
	logger.Debug("Discovered build units.", "root", root, "units", len(unitDirs))

	results := make([]*unitResult, len(unitDirs))
	if o.workers > 1 && len(unitDirs) > 1 {
		err = buildUnitsParallel(ctx, unitDirs, reg, resources, root, &o, results)
	} else {
		err = buildUnitsSequential(ctx, unitDirs, reg, resources, root, &o, results)
	}
	if err != nil {
		return nil, err
	}

	// Single sequential merge pass in unit order, external resources last.
	var units []defs.Unit
	for _, res := range results {
		if res != nil {
			units = append(units, res.units...)
		}
	}
	units = append(units, defs.Unit{Name: externalUnit, Defs: &defs.Definitions{Resources: resources}})

	merged, err := defs.Merge(units...)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	if o.cache != nil {
		o.cache.commit(results)
	}

	logger.Info("Component build complete.",
		"units", len(unitDirs),
		"assets", len(merged.Assets),
		"jobs", len(merged.Jobs),
		"resources", len(merged.Resources),
		"schedules", len(merged.Schedules),
		"sensors", len(merged.Sensors),
	)
	return merged, nil
}

func buildUnitsSequential(ctx context.Context, dirs []string, reg *registry.Registry, resources component.Resources, root string, o *options, results []*unitResult) error {
	for i, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := buildUnit(ctx, dir, reg, resources, root, o.cache)
		if err != nil {
			return err
		}
		results[i] = res
	}
	return nil
}

// buildUnitsParallel fans unit indices out to a bounded pool. The first
// failure cancels the pool; remaining indices drain without building.
// Results land at their unit's index so the later merge stays ordered.
func buildUnitsParallel(parent context.Context, dirs []string, reg *registry.Registry, resources component.Resources, root string, o *options, results []*unitResult) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	workers := o.workers
	if workers > len(dirs) {
		workers = len(dirs)
	}

	indexCh := make(chan int)
	errs := make([]error, len(dirs))
	var wg sync.WaitGroup

	for workerID := 0; workerID < workers; workerID++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			logger := ctxlog.FromContext(ctx).With("workerID", workerID)
			for i := range indexCh {
				if ctx.Err() != nil {
					continue
				}
				logger.Debug("Worker picked up build unit.", "unit", filepath.Base(dirs[i]))
				res, err := buildUnit(ctx, dirs[i], reg, resources, root, o.cache)
				if err != nil {
					errs[i] = err
					cancel()
					continue
				}
				results[i] = res
			}
		}(workerID)
	}

	for i := range dirs {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	// Report the first failure in unit order for a deterministic error.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return parent.Err()
}

// buildUnit produces one unit's contribution: a cache hit short-circuits
// everything; otherwise the unit's declaration tree is loaded, each
// component built, and one defs.Unit collected per component.
func buildUnit(ctx context.Context, dir string, reg *registry.Registry, resources component.Resources, root string, cache *Cache) (*unitResult, error) {
	unitID := filepath.Base(dir)
	logger := ctxlog.FromContext(ctx).With("unit", unitID)

	fingerprint, err := fingerprintUnit(dir)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting unit %q: %w", unitID, err)
	}

	if cache != nil {
		if cached, ok := cache.lookup(dir, fingerprint); ok {
			logger.Debug("Unit unchanged, reusing cached definitions.")
			return &unitResult{dir: dir, fingerprint: fingerprint, units: cached, fromCache: true}, nil
		}
	}

	node, err := decl.PathToNode(ctx, dir)
	if err != nil {
		var notFound *decl.NotFoundError
		if errors.As(err, &notFound) {
			logger.Debug("Unit declares no components, skipping.")
			return &unitResult{dir: dir, fingerprint: fingerprint}, nil
		}
		return nil, err
	}

	lctx := component.NewLoadContext(ctx, node, scope.New(nil), resources, unitID)
	loaded, err := loadNode(lctx, reg, root)
	if err != nil {
		return nil, fmt.Errorf("loading unit %q: %w", unitID, err)
	}

	units := make([]defs.Unit, 0, len(loaded))
	for _, lc := range loaded {
		buildCtx := lc.lctx
		if scoped, ok := lc.comp.(component.Scoped); ok {
			buildCtx = buildCtx.WithScope(scoped.AdditionalScope())
		}
		d, err := lc.comp.BuildDefs(buildCtx)
		if err != nil {
			return nil, fmt.Errorf("building definitions for %q: %w", lc.name, err)
		}
		units = append(units, defs.Unit{Name: lc.name, Defs: d})
	}

	logger.Debug("Unit built.", "components", len(loaded))
	return &unitResult{dir: dir, fingerprint: fingerprint, units: units}, nil
}
