package propagate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/quantcost/internal/costfn"
	"github.com/specialistvlad/quantcost/internal/module"
	"github.com/specialistvlad/quantcost/internal/quant"
	"github.com/specialistvlad/quantcost/internal/report"
	"github.com/specialistvlad/quantcost/internal/testutil"
)

func ace(t *testing.T) costfn.Func {
	t.Helper()
	fn, err := costfn.NewRegistry().Resolve(costfn.Preset(costfn.ACE))
	require.NoError(t, err)
	return fn
}

func newEngine(t *testing.T, fn costfn.Func, opts Options) *Engine {
	t.Helper()
	e, err := New(fn, opts)
	require.NoError(t, err)
	return e
}

// quantizedTree builds root(150) -> {A(100, 4/4 bits), B(50)}.
func quantizedTree(t *testing.T) (*module.Tree, int, int) {
	t.Helper()
	tree := module.New(module.Module{Name: "root", MACs: 150})
	a, err := tree.AddChild(tree.Root(), module.Module{
		Name:           "A",
		MACs:           100,
		InputBitwidth:  module.Bits(4),
		WeightBitwidth: module.Bits(4),
	})
	require.NoError(t, err)
	b, err := tree.AddChild(tree.Root(), module.Module{Name: "B", MACs: 50})
	require.NoError(t, err)
	return tree, a, b
}

func TestRun_NoQuantizersCostsBaseline(t *testing.T) {
	// --- Arrange ---
	tree := module.New(module.Module{Name: "root", MACs: 300})
	block, err := tree.AddChild(tree.Root(), module.Module{Name: "block", MACs: 200})
	require.NoError(t, err)
	_, err = tree.AddChild(block, module.Module{Name: "conv", MACs: 120})
	require.NoError(t, err)
	_, err = tree.AddChild(tree.Root(), module.Module{Name: "head", MACs: 100})
	require.NoError(t, err)

	// --- Act ---
	total, err := newEngine(t, ace(t), Options{}).Run(context.Background(), tree)

	// --- Assert ---
	require.NoError(t, err)
	require.NoError(t, tree.Walk(func(_ int, m *module.Module) error {
		assert.Equal(t, float64(m.MACs)*32*32, m.Cost, m.Name)
		return nil
	}))
	assert.Equal(t, float64(300*32*32), total)
	assert.True(t, tree.Propagated)
}

func TestRun_QuantizationSavingReducesAncestors(t *testing.T) {
	// --- Arrange ---
	tree, a, b := quantizedTree(t)

	// --- Act ---
	total, err := newEngine(t, ace(t), Options{DefaultBitwidth: 32}).Run(context.Background(), tree)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 1600.0, tree.Node(a).Cost)
	assert.Equal(t, 51200.0, tree.Node(b).Cost)

	const diff = 100*32*32 - 100*4*4
	assert.Equal(t, float64(150*32*32-diff), tree.Node(tree.Root()).Cost)
	assert.Equal(t, 52800.0, total)
	assert.Less(t, total, float64(150*32*32))
}

func TestRun_SavingReachesEveryAncestor(t *testing.T) {
	tree := module.New(module.Module{Name: "root", MACs: 100})
	block, err := tree.AddChild(tree.Root(), module.Module{Name: "block", MACs: 100})
	require.NoError(t, err)
	leaf, err := tree.AddChild(block, module.Module{Name: "leaf", MACs: 100, InputBitwidth: module.Bits(8), WeightBitwidth: module.Bits(8)})
	require.NoError(t, err)

	_, err = newEngine(t, ace(t), Options{}).Run(context.Background(), tree)

	require.NoError(t, err)
	const diff = 100*32*32 - 100*8*8
	assert.Equal(t, float64(100*8*8), tree.Node(leaf).Cost)
	assert.Equal(t, float64(100*32*32-diff), tree.Node(block).Cost)
	assert.Equal(t, float64(100*32*32-diff), tree.Node(tree.Root()).Cost)
}

func TestRun_PenaltyIsOptIn(t *testing.T) {
	testCases := []struct {
		name       string
		penalty    bool
		expectRoot float64
	}{
		{name: "asymmetric by default", penalty: false, expectRoot: 100 * 4 * 4},
		{name: "penalty propagated when enabled", penalty: true, expectRoot: 100*4*4 + (100*8*8 - 100*4*4)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			// The default precision is 4 bits, so an 8-bit layer is more
			// expensive than its baseline.
			tree := module.New(module.Module{Name: "root", MACs: 100})
			_, err := tree.AddChild(tree.Root(), module.Module{Name: "wide", MACs: 100, InputBitwidth: module.Bits(8), WeightBitwidth: module.Bits(8)})
			require.NoError(t, err)

			// --- Act ---
			total, err := newEngine(t, ace(t), Options{DefaultBitwidth: 4, PropagatePenalty: tc.penalty}).Run(context.Background(), tree)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.expectRoot, total)
		})
	}
}

func TestRun_CostFunctionErrorIsUnchanged(t *testing.T) {
	// --- Arrange ---
	boom := errors.New("boom")
	fn := func(macs int64, a, b int) (float64, error) {
		if macs == 50 {
			return 0, boom
		}
		return float64(macs), nil
	}
	tree, _, _ := quantizedTree(t)

	// --- Act ---
	_, err := newEngine(t, fn, Options{}).Run(context.Background(), tree)

	// --- Assert ---
	assert.Equal(t, boom, err)
	assert.False(t, tree.Propagated)
}

func TestRun_CorruptTreeFailsFast(t *testing.T) {
	tree, a, _ := quantizedTree(t)
	tree.Node(tree.Root()).Parent = a

	_, err := newEngine(t, ace(t), Options{}).Run(context.Background(), tree)

	assert.ErrorIs(t, err, module.ErrCorruptTree)
}

func TestRun_SinglePassOnly(t *testing.T) {
	tree, _, _ := quantizedTree(t)
	e := newEngine(t, ace(t), Options{})

	first, err := e.Run(context.Background(), tree)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), tree)
	assert.ErrorIs(t, err, ErrAlreadyPropagated)
	assert.Equal(t, first, tree.Node(tree.Root()).Cost, "a rejected second pass leaves costs alone")
}

func TestRun_EmptyTree(t *testing.T) {
	tree := module.NewEmpty()

	total, err := newEngine(t, ace(t), Options{}).Run(context.Background(), tree)

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.True(t, tree.Propagated)
}

func TestRun_Fixtures(t *testing.T) {
	testCases := []struct {
		name     string
		fixture  string
		trace    bool
		expected float64
	}{
		{name: "calflops pruned", fixture: testutil.CalflopsTinyNet, expected: testutil.CalflopsTinyNetCost},
		{name: "calflops traced", fixture: testutil.CalflopsTinyNet, trace: true, expected: testutil.CalflopsTinyNetCost},
		{name: "ptflops pruned", fixture: testutil.PtflopsTinyNet, expected: testutil.PtflopsTinyNetCost},
		{name: "nested quantizers", fixture: testutil.NestedQuantizers, expected: 100*32*32 - (100*32*32 - 100*8*2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			ctx, _ := testutil.Context(t)
			section := report.Prepare(ctx, testutil.Lines(tc.fixture), "")
			tree, err := report.Parse(ctx, section.Lines, nil)
			require.NoError(t, err)
			require.NoError(t, quant.Annotate(ctx, tree, tc.trace))

			// --- Act ---
			total, err := newEngine(t, ace(t), Options{}).Run(ctx, tree)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.expected, total)
		})
	}
}

func TestNew(t *testing.T) {
	_, err := New(nil, Options{})
	assert.ErrorContains(t, err, "requires a cost function")

	_, err = New(ace(t), Options{DefaultBitwidth: -8})
	assert.ErrorContains(t, err, "must be positive")

	e, err := New(ace(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBitwidth, e.opts.DefaultBitwidth)
}
