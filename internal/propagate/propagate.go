// Package propagate assigns a quantization-aware cost to every module of a
// parsed tree.
//
// Each module's own cost is cost_fn(macs, input_bits, weight_bits). When that
// is cheaper than the same module at the default precision, the saving is
// subtracted from every ancestor, whose cost was taken from the profiler's
// aggregate count and so implicitly assumed full precision. A module that got
// more expensive is not charged to its ancestors unless PropagatePenalty is
// set.
package propagate

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/quantcost/internal/costfn"
	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/module"
)

// DefaultBitwidth is the operand precision assumed when none is annotated.
const DefaultBitwidth = 32

// ErrAlreadyPropagated is returned for a tree that has been through Run.
// Costs are not reset between passes, so a second pass would double-count.
var ErrAlreadyPropagated = errors.New("module tree already propagated")

// Options tune an Engine.
type Options struct {
	// DefaultBitwidth is used for unannotated operands and for the baseline.
	// Zero means DefaultBitwidth.
	DefaultBitwidth int
	// PropagatePenalty also charges ancestors when a module's quantized cost
	// exceeds its baseline.
	PropagatePenalty bool
}

// Engine runs one cost function over module trees. It holds no per-tree
// state and can be shared between goroutines.
type Engine struct {
	fn   costfn.Func
	opts Options
}

// New returns an Engine for fn.
func New(fn costfn.Func, opts Options) (*Engine, error) {
	if fn == nil {
		return nil, errors.New("propagation requires a cost function")
	}
	if opts.DefaultBitwidth == 0 {
		opts.DefaultBitwidth = DefaultBitwidth
	}
	if opts.DefaultBitwidth < 0 {
		return nil, fmt.Errorf("default bitwidth must be positive, got %d", opts.DefaultBitwidth)
	}
	return &Engine{fn: fn, opts: opts}, nil
}

// Run sets Cost on every module reachable from the root and returns the root's
// cost. An empty tree costs zero. Errors from the cost function are returned
// as they are; on any error the tree's costs are undefined.
func (e *Engine) Run(ctx context.Context, tree *module.Tree) (float64, error) {
	logger := ctxlog.FromContext(ctx)

	if tree.Propagated {
		return 0, ErrAlreadyPropagated
	}
	if err := tree.Validate(); err != nil {
		return 0, err
	}
	if tree.Empty() {
		tree.Propagated = true
		logger.Debug("Empty module tree, total cost is zero.")
		return 0, nil
	}

	if err := e.visit(ctx, tree, tree.Root()); err != nil {
		return 0, err
	}
	tree.Propagated = true

	total := tree.Node(tree.Root()).Cost
	logger.Debug("Cost propagation complete.", "total_cost", total, "default_bitwidth", e.opts.DefaultBitwidth)
	return total, nil
}

func (e *Engine) visit(ctx context.Context, tree *module.Tree, i int) error {
	m := tree.Node(i)
	d := e.opts.DefaultBitwidth
	a, b := bitsOr(m.InputBitwidth, d), bitsOr(m.WeightBitwidth, d)

	current, err := e.fn(m.MACs, a, b)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Cost function failed.", "module", m.Name, "macs", m.MACs, "a", a, "b", b)
		return err
	}
	baseline, err := e.fn(m.MACs, d, d)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Cost function failed.", "module", m.Name, "macs", m.MACs, "a", d, "b", d)
		return err
	}
	m.Cost = current

	for _, c := range m.Children {
		if err := e.visit(ctx, tree, c); err != nil {
			return err
		}
	}

	var delta float64
	switch {
	case current < baseline:
		delta = current - baseline
	case current > baseline && e.opts.PropagatePenalty:
		delta = current - baseline
	default:
		return nil
	}

	ancestors, err := tree.Ancestors(i)
	if err != nil {
		return err
	}
	for _, p := range ancestors {
		tree.Node(p).Cost += delta
	}
	ctxlog.FromContext(ctx).Debug("Propagated quantization delta.", "module", tree.Node(i).Name, "delta", delta, "ancestors", len(ancestors))
	return nil
}

func bitsOr(b *int, def int) int {
	if b == nil {
		return def
	}
	return *b
}
