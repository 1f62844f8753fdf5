package costfn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Variables available to a cost expression. bitwidth_a and bitwidth_b are
// long spellings of a and b.
const (
	VarMACs      = "macs"
	VarA         = "a"
	VarB         = "b"
	VarBitwidthA = "bitwidth_a"
	VarBitwidthB = "bitwidth_b"
)

var expressionFunctions = map[string]function.Function{
	"abs":    stdlib.AbsoluteFunc,
	"ceil":   stdlib.CeilFunc,
	"floor":  stdlib.FloorFunc,
	"log":    stdlib.LogFunc,
	"max":    stdlib.MaxFunc,
	"min":    stdlib.MinFunc,
	"pow":    stdlib.PowFunc,
	"signum": stdlib.SignumFunc,
}

// CompileExpression parses src, for example "macs * a * b / 2", into a Func.
func CompileExpression(name, src string) (Func, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "cost_function."+name, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse cost function %q: %w", name, diags)
	}
	return FromExpression(name, expr)
}

// FromExpression turns an already parsed expression into a Func. Variable
// references and function calls are checked here so a typo fails at load
// time rather than on the first module.
func FromExpression(name string, expr hcl.Expression) (Func, error) {
	if expr == nil {
		return nil, fmt.Errorf("cost function %q has no expression", name)
	}

	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		if !isExpressionVariable(root) {
			return nil, fmt.Errorf("cost function %q: unknown variable %q at %s, want one of %s",
				name, root, traversal.SourceRange(), strings.Join(expressionVariables(), ", "))
		}
		if len(traversal) > 1 {
			return nil, fmt.Errorf("cost function %q: %q is a number and has no attributes (%s)", name, root, traversal.SourceRange())
		}
	}

	if len(expr.Variables()) == 0 {
		v, diags := expr.Value(&hcl.EvalContext{Functions: expressionFunctions})
		if !diags.HasErrors() && v.IsNull() {
			return nil, fmt.Errorf("cost function %q: expression is null, want a number", name)
		}
	}

	if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
		called := make(map[string]struct{})
		walkForFunctions(syntaxExpr, called)
		for fn := range called {
			if _, ok := expressionFunctions[fn]; !ok {
				return nil, fmt.Errorf("cost function %q: unknown function %q, want one of %s",
					name, fn, strings.Join(functionNames(), ", "))
			}
		}
	}

	return func(macs int64, a, b int) (float64, error) {
		ctx := &hcl.EvalContext{
			Variables: map[string]cty.Value{
				VarMACs:      cty.NumberIntVal(macs),
				VarA:         cty.NumberIntVal(int64(a)),
				VarB:         cty.NumberIntVal(int64(b)),
				VarBitwidthA: cty.NumberIntVal(int64(a)),
				VarBitwidthB: cty.NumberIntVal(int64(b)),
			},
			Functions: expressionFunctions,
		}

		v, diags := expr.Value(ctx)
		if diags.HasErrors() {
			return 0, fmt.Errorf("cost function %q: %w", name, diags)
		}
		if v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.Number) {
			return 0, fmt.Errorf("cost function %q returned %s, want a number", name, describe(v))
		}
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	}, nil
}

func describe(v cty.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "an unknown value"
	default:
		return v.Type().FriendlyName()
	}
}

func isExpressionVariable(name string) bool {
	switch name {
	case VarMACs, VarA, VarB, VarBitwidthA, VarBitwidthB:
		return true
	}
	return false
}

func expressionVariables() []string {
	return []string{VarMACs, VarA, VarB, VarBitwidthA, VarBitwidthB}
}

func functionNames() []string {
	names := make([]string, 0, len(expressionFunctions))
	for n := range expressionFunctions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// walkForFunctions recursively walks the AST, looking only for function calls.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, functions)
		walkForFunctions(e.KeyExpr, functions)
		walkForFunctions(e.ValExpr, functions)
		walkForFunctions(e.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, functions)
		walkForFunctions(e.Each, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}
