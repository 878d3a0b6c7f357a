package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/defstack/defstack/component"
	"github.com/defstack/defstack/components"
	"github.com/defstack/defstack/composer"
	"github.com/defstack/defstack/defs"
	"github.com/defstack/defstack/internal/ctxlog"
	"github.com/defstack/defstack/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: an isolated logger, the component type registry, and a build
// cache that survives across Build calls.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	cache    *composer.Cache
}

// New is the constructor for the main application. Logs go to logW so that
// outW stays clean for machine-readable output. When no plugins are given,
// the built-in component types are registered.
func New(outW, logW io.Writer, cfg *Config, plugins ...registry.Plugin) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(plugins) == 0 {
		plugins = components.Builtin()
	}
	reg := registry.Discover(ctx, plugins...)
	logger.Debug("Component types registered.", "count", reg.Len())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		cache:    composer.NewCache(),
	}
}

// Build composes the definitions for the configured components root,
// merging in the given external resources.
func (a *App) Build(ctx context.Context, resources component.Resources) (*defs.Definitions, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Composing definitions.", "root", a.config.RootPath, "workers", a.config.Workers)

	d, err := composer.Build(ctx, a.config.RootPath, a.registry, resources,
		composer.WithCache(a.cache),
		composer.WithWorkers(a.config.Workers),
	)
	if err != nil {
		return nil, fmt.Errorf("composing definitions: %w", err)
	}

	a.logger.Info("Definitions composed.",
		"assets", len(d.Assets),
		"jobs", len(d.Jobs),
		"resources", len(d.Resources),
		"schedules", len(d.Schedules),
		"sensors", len(d.Sensors),
	)
	return d, nil
}

// Registry returns the application's registry. This is primarily for testing
// and for embedders that register additional types.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Cache returns the build cache, so long-lived embedders can invalidate
// units in response to file events.
func (a *App) Cache() *composer.Cache {
	return a.cache
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
