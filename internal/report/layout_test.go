package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/quantcost/internal/module"
	"github.com/specialistvlad/quantcost/internal/testutil"
)

func TestCalflopsSummary(t *testing.T) {
	testCases := []struct {
		name      string
		line      string
		expected  Summary
		expectErr bool
	}{
		{
			name:     "summary on its own line",
			line:     "  1.2 K = 100% Params, 150 MACs = 100% MACs, 300 FLOPS = 50% FLOPs",
			expected: Summary{Params: 1200, MACs: 150, FLOPs: 300},
		},
		{
			name:     "summary followed by layer arguments",
			line:     "    9.41 K = 0.04% Params, 118.01 MMACs = 2.87% MACs, 237.03 MFLOPS = 2.87% FLOPs, in_features=10, out_features=100",
			expected: Summary{Params: 9410, MACs: 118_010_000, FLOPs: 237_030_000},
		},
		{
			name:     "inline on a declaration",
			line:     "  (fc2): Linear(200 = 16.67% Params, 50 MACs = 33.33% MACs, 100 FLOPS = 16.67% FLOPs, in_features=100, bias=True)",
			expected: Summary{Params: 200, MACs: 50, FLOPs: 100},
		},
		{
			name:     "quantizer with bitwidth",
			line:     "    (_input_quantizer): TensorQuantizer(0 = 0% Params, 0 MACs = 0% MACs, 0 FLOPS = 0% FLOPs, 4bit fake per-tensor amax=1.0000)",
			expected: Summary{Bitwidth: module.Bits(4)},
		},
		{
			name:      "too few fields",
			line:      "  1.2 K = 100% Params, 150 MACs = 100% MACs",
			expectErr: true,
		},
		{
			name:      "extra numeric field",
			line:      "  1.2 K = 100% Params, 150 MACs = 100% MACs, 300 FLOPS = 50% FLOPs, 12 ms = 3% Latency",
			expectErr: true,
		},
		{
			name:      "field without assignment",
			line:      "  1.2 K, 100% Params, 150 MACs = 100% MACs, 300 FLOPS = 50% FLOPs",
			expectErr: true,
		},
		{
			name:      "count out of range",
			line:      "  1.2 K = 100% Params, 99999999 TMACs = 100% MACs, 300 FLOPS = 50% FLOPs",
			expectErr: true,
		},
		{
			name:      "declaration without argument list",
			line:      "  (fc1): Params",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			got, err := Calflops{}.Summary(context.Background(), tc.line)

			// --- Assert ---
			if tc.expectErr {
				require.ErrorIs(t, err, ErrMalformedReport)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestPtflopsSummary(t *testing.T) {
	testCases := []struct {
		name      string
		line      string
		expected  Summary
		expectErr bool
	}{
		{
			name:     "root summary",
			line:     "  1.2 k, 100.000% Params, 150.0 Mac, 100.000% MACs, ",
			expected: Summary{Params: 1200, MACs: 150},
		},
		{
			name:     "inline with units",
			line:     "    (conv1): Conv2d(9.41 k, 0.037% Params, 118.01 MMac, 2.863% MACs, 3, 64, kernel_size=(7, 7))",
			expected: Summary{Params: 9410, MACs: 118_010_000},
		},
		{
			name:     "quantizer",
			line:     "    (_input_quantizer): TensorQuantizer(0, 0.000% Params, 0.0 Mac, 0.000% MACs, 8bit fake per-tensor)",
			expected: Summary{Bitwidth: module.Bits(8)},
		},
		{
			name:      "missing MACs pair",
			line:      "  1.2 k, 100.000% Params",
			expectErr: true,
		},
		{
			name:      "missing Params pair",
			line:      "  150.0 Mac, 100.000% MACs, Params",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Ptflops{}.Summary(context.Background(), tc.line)

			if tc.expectErr {
				require.ErrorIs(t, err, ErrMalformedReport)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSummary_UnknownUnitIsLogged(t *testing.T) {
	// --- Arrange ---
	ctx, logs := testutil.Context(t)

	// --- Act ---
	got, err := Calflops{}.Summary(ctx, "  3 parsecs = 1% Params, 4 MACs = 1% MACs, 5 FLOPS = 1% FLOPs")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Params)
	assert.Contains(t, logs.String(), "Unrecognized unit")
	assert.Contains(t, logs.String(), "parsecs")
}

func TestLayoutByName(t *testing.T) {
	l, err := LayoutByName("PTFLOPS")
	require.NoError(t, err)
	assert.Equal(t, PtflopsName, l.Name())

	l, err = LayoutByName(LayoutAuto)
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = LayoutByName("")
	require.NoError(t, err)
	assert.Nil(t, l)

	_, err = LayoutByName("fvcore")
	assert.ErrorContains(t, err, "unknown report layout")
}

func TestDetectLayout(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, CalflopsName, DetectLayout(ctx, testutil.Lines(testutil.CalflopsTinyNet)).Name())
	assert.Equal(t, PtflopsName, DetectLayout(ctx, testutil.Lines(testutil.PtflopsTinyNet)).Name())
	assert.Equal(t, CalflopsName, DetectLayout(ctx, []string{"nothing to see"}).Name(), "calflops is the default")
}

func TestRootName(t *testing.T) {
	name, ok := RootName("MultiTaskSwin(")
	require.True(t, ok)
	assert.Equal(t, "MultiTaskSwin", name)

	_, ok = RootName("  (fc1): Linear(")
	assert.False(t, ok)
	_, ok = RootName("Notations:")
	assert.False(t, ok)
}
