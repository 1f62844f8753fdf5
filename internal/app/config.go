package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/quantcost/internal/config"
	"github.com/specialistvlad/quantcost/internal/costfn"
	"github.com/specialistvlad/quantcost/internal/report"
	"github.com/specialistvlad/quantcost/internal/result"
)

// Stdin is the source name that reads the report from standard input.
const Stdin = "-"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Sources are report files, or directories of them in batch mode. Stdin
	// reads one report from standard input.
	Sources []string
	// ProfilerCommand runs the profiler instead of reading a report.
	ProfilerCommand []string
	InputShape      []int
	// Batch estimates every source concurrently.
	Batch bool

	ModelName         string
	Layout            string
	CostFunction      costfn.Spec
	CostFunctions     map[string]*config.CostFunctionDefinition
	DefaultBitwidth   int
	TraceQuantization bool
	PropagatePenalty  bool

	OutputFormat string
	LogFormat    string
	LogLevel     string
	WorkerCount  int
}

func NewConfig(cfg Config) (*Config, error) {
	switch {
	case len(cfg.Sources) == 0 && len(cfg.ProfilerCommand) == 0:
		return nil, errors.New("a report path or a profiler command is required")
	case len(cfg.Sources) > 0 && len(cfg.ProfilerCommand) > 0:
		return nil, errors.New("a report path and a profiler command are mutually exclusive")
	case cfg.Batch && len(cfg.ProfilerCommand) > 0:
		return nil, errors.New("batch mode reads captured reports and cannot run a profiler command")
	case cfg.Batch && slices.Contains(cfg.Sources, Stdin):
		return nil, errors.New("batch mode cannot read from stdin")
	case !cfg.Batch && len(cfg.Sources) > 1:
		return nil, fmt.Errorf("expected one report, got %d: use batch mode for several", len(cfg.Sources))
	}

	if cfg.CostFunction.Kind == costfn.KindPreset && cfg.CostFunction.Name == "" {
		cfg.CostFunction = costfn.Preset(costfn.ACE)
	}
	if cfg.DefaultBitwidth <= 0 {
		return nil, fmt.Errorf("default bitwidth must be positive, got %d", cfg.DefaultBitwidth)
	}
	if _, err := report.LayoutByName(cfg.Layout); err != nil {
		return nil, err
	}
	format, err := result.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	cfg.OutputFormat = string(format)

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", cfg.WorkerCount)
	}

	return &cfg, nil
}
