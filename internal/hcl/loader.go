package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/quantcost/internal/config"
	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Estimates     []*estimateBlock     `hcl:"estimate,block"`
	CostFunctions []*costFunctionBlock `hcl:"cost_function,block"`
}

type estimateBlock struct {
	ModelName         *string  `hcl:"model_name,optional"`
	Layout            *string  `hcl:"layout,optional"`
	CostFunction      *string  `hcl:"cost_function,optional"`
	DefaultBitwidth   *int     `hcl:"default_bitwidth,optional"`
	TraceQuantization *bool    `hcl:"trace_quantization,optional"`
	PropagatePenalty  *bool    `hcl:"propagate_penalty,optional"`
	InputShape        []int    `hcl:"input_shape,optional"`
	ProfilerCommand   []string `hcl:"profiler_command,optional"`
	OutputFormat      *string  `hcl:"output_format,optional"`
}

type costFunctionBlock struct {
	Name        string         `hcl:"name,label"`
	Description *string        `hcl:"description,optional"`
	Expression  hcl.Expression `hcl:"expression"`
}

// Load parses every .hcl file under paths and merges them into one model.
// At most one estimate block may exist across all files, and cost function
// names must be unique.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		CostFunctions: make(map[string]*config.CostFunctionDefinition),
	}
	if len(paths) == 0 {
		return model, nil
	}

	hclFiles, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	estimateFile := ""

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Estimates {
			if estimateFile != "" {
				return nil, fmt.Errorf("duplicate estimate block in %s: first defined in %s", file, estimateFile)
			}
			estimateFile = file
			model.Estimate = translateEstimate(block)
		}

		for _, block := range root.CostFunctions {
			if prev, ok := model.CostFunctions[block.Name]; ok {
				return nil, fmt.Errorf("duplicate cost_function %q at %s: already defined at %s", block.Name, block.Expression.Range(), prev.Expression.Range())
			}
			def, err := translateCostFunction(block)
			if err != nil {
				return nil, err
			}
			model.CostFunctions[def.Name] = def
		}
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "estimate", model.Estimate != nil, "cost_functions", len(model.CostFunctions))
	return model, nil
}

func translateEstimate(b *estimateBlock) *config.Estimate {
	return &config.Estimate{
		ModelName:         b.ModelName,
		Layout:            b.Layout,
		CostFunction:      b.CostFunction,
		DefaultBitwidth:   b.DefaultBitwidth,
		TraceQuantization: b.TraceQuantization,
		PropagatePenalty:  b.PropagatePenalty,
		InputShape:        b.InputShape,
		ProfilerCommand:   b.ProfilerCommand,
		OutputFormat:      b.OutputFormat,
	}
}

// translateCostFunction accepts the expression either written directly
// (`expression = macs * a * b`) or quoted (`expression = "macs * a * b"`).
// A quoted one is parsed here, so the model always holds the expression
// itself.
func translateCostFunction(b *costFunctionBlock) (*config.CostFunctionDefinition, error) {
	def := &config.CostFunctionDefinition{Name: b.Name, Expression: b.Expression}
	if b.Description != nil {
		def.Description = *b.Description
	}

	if len(b.Expression.Variables()) > 0 {
		return def, nil
	}
	v, diags := b.Expression.Value(nil)
	if !diags.HasErrors() && v.IsNull() {
		// gohcl decodes a missing attribute into a null expression.
		return nil, fmt.Errorf("cost_function %q: expression is required (%s)", b.Name, b.Expression.Range())
	}
	if diags.HasErrors() || !v.IsKnown() || !v.Type().Equals(cty.String) {
		return def, nil
	}

	src := v.AsString()
	expr, diags := hclsyntax.ParseExpression([]byte(src), b.Expression.Range().Filename, b.Expression.Range().Start)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse expression of cost_function %q: %w", b.Name, diags)
	}
	def.Expression = expr
	return def, nil
}
