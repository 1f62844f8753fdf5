package hcl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/quantcost/internal/costfn"
	"github.com/specialistvlad/quantcost/internal/testutil"
)

func TestLoad_FullConfig(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	root := testutil.WriteFiles(t, map[string]string{
		"quantcost.hcl": `
			estimate {
			  model_name         = "MultiTaskSwin"
			  layout             = "calflops"
			  cost_function      = "half_ace"
			  default_bitwidth   = 16
			  trace_quantization = true
			  propagate_penalty  = false
			  input_shape        = [1, 3, 224, 224]
			  profiler_command   = ["python", "profile.py", "--shape", "{input_shape}"]
			  output_format      = "yaml"
			}

			cost_function "half_ace" {
			  description = "ACE with packed operands"
			  expression  = "macs * a * b / 2"
			}
		`,
	})

	// --- Act ---
	model, err := NewLoader().Load(ctx, filepath.Join(root, "quantcost.hcl"))

	// --- Assert ---
	require.NoError(t, err)
	est := model.Estimate
	require.NotNil(t, est)
	assert.Equal(t, "MultiTaskSwin", *est.ModelName)
	assert.Equal(t, "calflops", *est.Layout)
	assert.Equal(t, "half_ace", *est.CostFunction)
	assert.Equal(t, 16, *est.DefaultBitwidth)
	assert.True(t, *est.TraceQuantization)
	assert.False(t, *est.PropagatePenalty)
	assert.Equal(t, []int{1, 3, 224, 224}, est.InputShape)
	assert.Equal(t, []string{"python", "profile.py", "--shape", "{input_shape}"}, est.ProfilerCommand)
	assert.Equal(t, "yaml", *est.OutputFormat)

	def := model.CostFunctions["half_ace"]
	require.NotNil(t, def)
	assert.Equal(t, "ACE with packed operands", def.Description)

	fn, err := costfn.FromExpression(def.Name, def.Expression)
	require.NoError(t, err)
	got, err := fn(100, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 800.0, got)
}

func TestLoad_PartialEstimate(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"a.hcl": `
			estimate {
			  cost_function = "ace"
			}
		`,
	})

	model, err := NewLoader().Load(t.Context(), root)

	require.NoError(t, err)
	require.NotNil(t, model.Estimate)
	assert.Equal(t, "ace", *model.Estimate.CostFunction)
	assert.Nil(t, model.Estimate.ModelName)
	assert.Nil(t, model.Estimate.DefaultBitwidth)
	assert.Nil(t, model.Estimate.TraceQuantization)
	assert.Empty(t, model.CostFunctions)
}

func TestLoad_UnquotedExpression(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"fns.hcl": `
			cost_function "bops" {
			  expression = macs * max(a, b)
			}
		`,
	})

	model, err := NewLoader().Load(t.Context(), root)

	require.NoError(t, err)
	def := model.CostFunctions["bops"]
	require.NotNil(t, def)
	assert.Empty(t, def.Description)
	fn, err := costfn.FromExpression(def.Name, def.Expression)
	require.NoError(t, err)
	got, err := fn(10, 4, 8)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got)
}

func TestLoad_MergesDirectory(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"conf/estimate.hcl": `
			estimate {
			  model_name = "TinyNet"
			}
		`,
		"conf/functions/one.hcl": `
			cost_function "one" {
			  expression = "macs"
			}
		`,
		"conf/functions/two.hcl": `
			cost_function "two" {
			  expression = "macs * 2"
			}
		`,
		"conf/README.md": "not hcl",
	})

	model, err := NewLoader().Load(t.Context(), filepath.Join(root, "conf"))

	require.NoError(t, err)
	require.NotNil(t, model.Estimate)
	assert.Len(t, model.CostFunctions, 2)
}

func TestLoad_NoPaths(t *testing.T) {
	model, err := NewLoader().Load(t.Context())

	require.NoError(t, err)
	assert.Nil(t, model.Estimate)
	assert.NotNil(t, model.CostFunctions)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		files       map[string]string
		errContains string
	}{
		{
			name:        "syntax error",
			files:       map[string]string{"bad.hcl": `estimate {`},
			errContains: "failed to parse HCL file",
		},
		{
			name: "unknown attribute",
			files: map[string]string{"bad.hcl": `
				estimate {
				  bitwidth = 8
				}
			`},
			errContains: "failed to decode HCL file",
		},
		{
			name: "wrong type",
			files: map[string]string{"bad.hcl": `
				estimate {
				  default_bitwidth = "eight"
				}
			`},
			errContains: "failed to decode HCL file",
		},
		{
			name: "duplicate estimate",
			files: map[string]string{
				"a.hcl": "estimate {}\n",
				"b.hcl": "estimate {}\n",
			},
			errContains: "duplicate estimate block",
		},
		{
			name: "duplicate cost function",
			files: map[string]string{
				"a.hcl": "cost_function \"x\" {\n  expression = \"macs\"\n}\n",
				"b.hcl": "cost_function \"x\" {\n  expression = \"macs * 2\"\n}\n",
			},
			errContains: `duplicate cost_function "x"`,
		},
		{
			name: "quoted expression does not parse",
			files: map[string]string{"bad.hcl": `
				cost_function "broken" {
				  expression = "macs * "
				}
			`},
			errContains: `failed to parse expression of cost_function "broken"`,
		},
		{
			name: "missing expression",
			files: map[string]string{"bad.hcl": `
				cost_function "empty" {
				  description = "nothing"
				}
			`},
			errContains: `cost_function "empty": expression is required`,
		},
		{
			name: "null expression",
			files: map[string]string{"bad.hcl": `
				cost_function "nothing" {
				  expression = null
				}
			`},
			errContains: `cost_function "nothing": expression is required`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.WriteFiles(t, tc.files)

			_, err := NewLoader().Load(t.Context(), root)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := NewLoader().Load(t.Context(), filepath.Join(t.TempDir(), "missing.hcl"))

	assert.ErrorContains(t, err, "error accessing path")
}
