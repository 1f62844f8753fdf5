package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/specialistvlad/quantcost/internal/app"
	"github.com/specialistvlad/quantcost/internal/config"
	"github.com/specialistvlad/quantcost/internal/costfn"
	"github.com/specialistvlad/quantcost/internal/profiler"
	"github.com/specialistvlad/quantcost/internal/propagate"
	"github.com/specialistvlad/quantcost/internal/report"
)

// estimateOptions are the flags shared by estimate and batch. Flags left at
// their default are overridden by the configuration file's estimate block.
type estimateOptions struct {
	modelName         string
	layout            string
	costFunction      string
	defaultBitwidth   int
	traceQuantization bool
	propagatePenalty  bool
	inputShape        string
	profilerCommand   string
	output            string
	workers           int
}

func addEstimateFlags(flags *pflag.FlagSet, o *estimateOptions) {
	flags.StringVarP(&o.modelName, "model-name", "m", "", "Text identifying the model's listing in the report. Empty picks the first listing.")
	flags.StringVar(&o.layout, "layout", report.LayoutAuto, "Report layout. Options: 'auto', 'calflops', 'ptflops'.")
	flags.StringVarP(&o.costFunction, "cost-function", "f", costfn.ACE, "Cost function name, a preset or one defined in the configuration.")
	flags.IntVarP(&o.defaultBitwidth, "default-bitwidth", "b", propagate.DefaultBitwidth, "Bit-width of operands without a quantizer.")
	flags.BoolVar(&o.traceQuantization, "trace-quantization", false, "Keep quantizer modules in the output tree.")
	flags.BoolVar(&o.propagatePenalty, "propagate-penalty", false, "Also propagate cost increases to ancestors, not only savings.")
	flags.StringVarP(&o.output, "output", "o", "json", "Output format. Options: 'json', 'yaml', 'table'.")
}

// BuildEstimateCmd returns the command estimating a single report.
func BuildEstimateCmd(root *rootOptions) *cobra.Command {
	o := &estimateOptions{workers: 1}

	cmd := &cobra.Command{
		Use:   "estimate [REPORT]",
		Short: "Estimate the cost of one profiler report",
		Long: `Estimate the cost of one profiler report. REPORT is a captured report file,
or "-" to read it from stdin. Without REPORT, --profiler-cmd runs the profiler
and reads its output; "{input_shape}" in the command is replaced by
--input-shape.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd.Flags(), root.model.Estimate, root, args, false)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	addEstimateFlags(cmd.Flags(), o)
	cmd.Flags().StringVarP(&o.profilerCommand, "profiler-cmd", "p", "", "Command printing the report on stdout, split on spaces.")
	cmd.Flags().StringVarP(&o.inputShape, "input-shape", "s", "", "Input shape passed to the profiler, for example 1,3,224,224.")

	return cmd
}

// BuildBatchCmd returns the command estimating many captured reports.
func BuildBatchCmd(root *rootOptions) *cobra.Command {
	o := &estimateOptions{}

	cmd := &cobra.Command{
		Use:   "batch REPORT...",
		Short: "Estimate the cost of many captured reports concurrently",
		Long: `Estimate the cost of many captured reports concurrently. Each REPORT is a
file or a directory searched for .txt and .log files. Results keep the order of
the sorted file list.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd.Flags(), root.model.Estimate, root, args, true)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	addEstimateFlags(cmd.Flags(), o)
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 4, "Number of reports estimated concurrently.")

	return cmd
}

// config merges the flags with the configuration file and validates the
// result.
func (o *estimateOptions) config(flags *pflag.FlagSet, est *config.Estimate, root *rootOptions, args []string, batch bool) (*app.Config, error) {
	if est == nil {
		est = &config.Estimate{}
	}
	setString(flags, "model-name", &o.modelName, est.ModelName)
	setString(flags, "layout", &o.layout, est.Layout)
	setString(flags, "cost-function", &o.costFunction, est.CostFunction)
	setString(flags, "output", &o.output, est.OutputFormat)
	if !flags.Changed("default-bitwidth") && est.DefaultBitwidth != nil {
		o.defaultBitwidth = *est.DefaultBitwidth
	}
	if !flags.Changed("trace-quantization") && est.TraceQuantization != nil {
		o.traceQuantization = *est.TraceQuantization
	}
	if !flags.Changed("propagate-penalty") && est.PropagatePenalty != nil {
		o.propagatePenalty = *est.PropagatePenalty
	}

	shape := est.InputShape
	if flags.Changed("input-shape") {
		var err error
		if shape, err = profiler.ParseShape(o.inputShape); err != nil {
			return nil, usageError(err)
		}
	}

	// A report argument replaces the configured profiler command.
	var command []string
	switch {
	case flags.Changed("profiler-cmd"):
		command = strings.Fields(o.profilerCommand)
	case len(args) == 0 && !batch:
		command = est.ProfilerCommand
	}

	cfg, err := app.NewConfig(app.Config{
		Sources:           args,
		ProfilerCommand:   command,
		InputShape:        shape,
		Batch:             batch,
		ModelName:         o.modelName,
		Layout:            o.layout,
		CostFunction:      costfn.Preset(o.costFunction),
		CostFunctions:     root.model.CostFunctions,
		DefaultBitwidth:   o.defaultBitwidth,
		TraceQuantization: o.traceQuantization,
		PropagatePenalty:  o.propagatePenalty,
		OutputFormat:      o.output,
		LogFormat:         root.logFormat,
		LogLevel:          root.logLevel,
		WorkerCount:       o.workers,
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

func setString(flags *pflag.FlagSet, name string, dst *string, fromFile *string) {
	if !flags.Changed(name) && fromFile != nil {
		*dst = *fromFile
	}
}

// run builds the App and executes it. An unknown cost function is a usage
// error, anything failing later is not.
func run(cmd *cobra.Command, cfg *app.Config) error {
	a, err := app.NewApp(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg)
	if err != nil {
		if errors.Is(err, costfn.ErrUnknownCostFunction) {
			return usageError(err)
		}
		return err
	}
	return a.Run(cmd.Context())
}
