package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/quantcost/internal/config"
	"github.com/specialistvlad/quantcost/internal/ctxlog"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks err as a problem with the command line.
func usageError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: 2, Message: err.Error()}
}

// rootOptions are the persistent flags and the configuration they load.
type rootOptions struct {
	configPaths []string
	logFormat   string
	logLevel    string

	model *config.Model
}

// NewCommand builds the quantcost command tree. Results go to the command's
// output stream, logs and errors to its error stream.
func NewCommand(loader config.Loader) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "quantcost",
		Short: "Estimate the compute cost of quantized models from profiler reports",
		Long: `quantcost reads the per-module report printed by calflops or ptflops,
rebuilds the module hierarchy, applies the bit-widths declared by quantizer
modules and propagates a cost function over the tree.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.logFormat = strings.ToLower(opts.logFormat)
			if opts.logFormat != "text" && opts.logFormat != "json" {
				return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
			}
			opts.logLevel = strings.ToLower(opts.logLevel)
			switch opts.logLevel {
			case "debug", "info", "warn", "error":
			default:
				return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
			}

			ctxlog.FromContext(cmd.Context()).Debug("Loading configuration.", "paths", opts.configPaths)
			model, err := loader.Load(cmd.Context(), opts.configPaths...)
			if err != nil {
				return usageError(fmt.Errorf("failed to load configuration: %w", err))
			}
			opts.model = model
			return nil
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.PersistentFlags().StringSliceVarP(&opts.configPaths, "config", "c", nil, "HCL configuration file or directory (repeatable).")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	rootCmd.AddCommand(BuildEstimateCmd(opts))
	rootCmd.AddCommand(BuildBatchCmd(opts))
	rootCmd.AddCommand(BuildPresetsCmd(opts))

	return rootCmd
}

// usageArgs turns an argument count error into a usage error.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
