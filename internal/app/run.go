package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/fsutil"
	"github.com/specialistvlad/quantcost/internal/profiler"
	"github.com/specialistvlad/quantcost/internal/result"
)

// ReportExtensions are the file extensions batch mode picks up from
// directories.
var ReportExtensions = []string{".txt", ".log"}

// Run executes the configured estimate and writes the results to the output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting estimate.", "cost_function", a.config.CostFunction.String(), "default_bitwidth", a.config.DefaultBitwidth)

	var results []*result.Result
	if a.config.Batch {
		paths, err := fsutil.FindFiles(a.config.Sources, ReportExtensions...)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no report files (%v) found in %v", ReportExtensions, a.config.Sources)
		}
		logger.Info("Estimating reports.", "count", len(paths), "workers", a.config.WorkerCount)

		results, err = a.Batch(ctx, paths)
		if err != nil {
			return err
		}
	} else {
		res, err := a.Estimate(ctx, a.profiler())
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	return result.Write(a.outW, result.Format(a.config.OutputFormat), results...)
}

func (a *App) profiler() profiler.Profiler {
	if len(a.config.ProfilerCommand) > 0 {
		return &profiler.CommandProfiler{Command: a.config.ProfilerCommand}
	}
	if src := a.config.Sources[0]; src != Stdin {
		return &profiler.FileProfiler{Path: src}
	}
	return &profiler.ReaderProfiler{R: a.in}
}
