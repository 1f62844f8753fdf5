package app

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/specialistvlad/quantcost/internal/config"
	"github.com/specialistvlad/quantcost/internal/costfn"
	"github.com/specialistvlad/quantcost/internal/propagate"
	"github.com/specialistvlad/quantcost/internal/report"
)

// App encapsulates the application's dependencies and configuration. The cost
// function is resolved when the App is built, so an unknown name fails before
// any report is read.
type App struct {
	in     io.Reader
	outW   io.Writer
	logger *slog.Logger
	config *Config

	registry *costfn.Registry
	engine   *propagate.Engine
	// layout is nil when it is detected per report.
	layout report.Layout
}

// NewApp is the constructor for the main application. Results go to outW,
// logs to logW.
func NewApp(in io.Reader, outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	registry, err := NewRegistry(cfg.CostFunctions)
	if err != nil {
		return nil, err
	}

	fn, err := registry.Resolve(cfg.CostFunction)
	if err != nil {
		return nil, err
	}
	logger.Debug("Cost function resolved.", "cost_function", cfg.CostFunction.String(), "kind", cfg.CostFunction.Kind.String())

	engine, err := propagate.New(fn, propagate.Options{
		DefaultBitwidth:  cfg.DefaultBitwidth,
		PropagatePenalty: cfg.PropagatePenalty,
	})
	if err != nil {
		return nil, err
	}

	layout, err := report.LayoutByName(cfg.Layout)
	if err != nil {
		return nil, err
	}

	return &App{
		in:       in,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: registry,
		engine:   engine,
		layout:   layout,
	}, nil
}

// NewRegistry returns the preset registry extended with the configured
// expression cost functions.
func NewRegistry(defs map[string]*config.CostFunctionDefinition) (*costfn.Registry, error) {
	registry := costfn.NewRegistry()

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := defs[name]
		fn, err := costfn.FromExpression(def.Name, def.Expression)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(def.Name, def.Description, fn); err != nil {
			return nil, fmt.Errorf("failed to register cost function: %w", err)
		}
	}
	return registry, nil
}

// CostFunctions lists every cost function the App can resolve.
func (a *App) CostFunctions() []costfn.Entry {
	return a.registry.Entries()
}
