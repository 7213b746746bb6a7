package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vk/dashwire/internal/block"
	"github.com/vk/dashwire/internal/compiler"
	"github.com/vk/dashwire/internal/config"
	"github.com/vk/dashwire/internal/ctxlog"
	"github.com/vk/dashwire/internal/depgraph"
	"github.com/vk/dashwire/internal/localruntime"
	"github.com/vk/dashwire/internal/metric"
	"github.com/vk/dashwire/internal/registry"
)

// AppConfig holds all the necessary configuration for an App instance to run.
type AppConfig struct {
	DashboardPath string
	Listen        string
	LogFormat     string
	LogLevel      string
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *config.Model
	metrics  *metric.Metrics
	graph    *depgraph.Store
	runtime  *localruntime.Runtime
	cc       *compiler.CompilationContext
	blocks   []block.Block
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration errors at this stage are programmer or declaration errors,
// so it panics; callers recover at the outermost layer.
func NewApp(outW io.Writer, appConfig *AppConfig, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, appConfig.DashboardPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(ctx, cfgModel); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	metrics := metric.New()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Warn("Metrics registration failed, continuing without metrics.", "error", err)
		metrics = nil
	}

	cc := compiler.NewContext()
	cc.UseMetrics(metrics)

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfgModel,
		metrics:  metrics,
		graph:    depgraph.New(),
		runtime:  localruntime.New(),
		cc:       cc,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Runtime returns the application's local runtime. This is primarily for
// testing.
func (a *App) Runtime() *localruntime.Runtime {
	return a.runtime
}
