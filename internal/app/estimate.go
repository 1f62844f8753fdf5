package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/module"
	"github.com/specialistvlad/quantcost/internal/profiler"
	"github.com/specialistvlad/quantcost/internal/quant"
	"github.com/specialistvlad/quantcost/internal/report"
	"github.com/specialistvlad/quantcost/internal/result"
)

// Estimate captures one report from p and returns its cost tree. It logs
// through the logger carried by ctx. A cost function error is returned
// unchanged.
func (a *App) Estimate(ctx context.Context, p profiler.Profiler) (*result.Result, error) {
	capture, err := p.Profile(ctx, a.config.InputShape)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, "source", capture.Source)
	logger := ctxlog.FromContext(ctx)

	var notices []string
	section := report.Prepare(ctx, capture.Lines, a.config.ModelName)
	if !section.Found {
		notices = append(notices, fmt.Sprintf("%s (model %q): the report was treated as empty", report.ErrModelSectionNotFound, a.config.ModelName))
	}

	layout := a.layout
	if layout == nil {
		layout = report.DetectLayout(ctx, section.Lines)
	}

	tree, err := report.Parse(ctx, section.Lines, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", capture.Source, err)
	}
	if err := quant.Annotate(ctx, tree, a.config.TraceQuantization); err != nil {
		return nil, err
	}

	total, err := a.engine.Run(ctx, tree)
	if err != nil {
		return nil, err
	}

	totals := capture.Totals
	if !capture.HasTotals {
		totals = rootTotals(tree)
		if !tree.Empty() {
			notices = append(notices, "the report states no totals: root module figures are shown instead")
		}
	}

	res, err := result.Assemble(tree, result.Meta{
		Source:          capture.Source,
		Layout:          layout.Name(),
		CostFunction:    a.config.CostFunction.String(),
		DefaultBitwidth: a.config.DefaultBitwidth,
		Totals:          totals,
		Notices:         notices,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Estimate complete.", "modules", tree.Len(), "total_cost", total, "layout", layout.Name())
	return res, nil
}

// Batch estimates every report file concurrently, at most WorkerCount at a
// time. Results keep the order of paths. The first failure cancels the rest.
func (a *App) Batch(ctx context.Context, paths []string) ([]*result.Result, error) {
	results := make([]*result.Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	for i, path := range paths {
		g.Go(func() error {
			res, err := a.Estimate(gctx, &profiler.FileProfiler{Path: path})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func rootTotals(tree *module.Tree) report.Totals {
	if tree.Empty() {
		return report.Totals{}
	}
	root := tree.Node(tree.Root())
	return report.Totals{MACs: root.MACs, Params: root.Params, FLOPs: root.FLOPs}
}
