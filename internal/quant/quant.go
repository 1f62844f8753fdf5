// Package quant folds quantizer pseudo-modules into bit-width attributes of
// the module that owns them.
//
// Profilers print a quantized layer's operand precision as synthetic children
// named "_input_quantizer" and "_weight_quantizer", each annotated "<n>bit".
// Annotate reads them once, stores the precisions on the owner, and unless
// tracing was requested detaches them so nothing downstream sees bookkeeping
// nodes.
package quant

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/module"
)

const (
	InputQuantizer  = "_input_quantizer"
	WeightQuantizer = "_weight_quantizer"
)

// IsQuantizer reports whether name is a quantizer pseudo-module.
func IsQuantizer(name string) bool {
	return name == InputQuantizer || name == WeightQuantizer
}

// Annotate sets InputBitwidth and WeightBitwidth on every real module from its
// direct quantizer children. A quantizer printed one level under the other
// kind (a known profiler quirk) is honoured when no direct one exists. With
// trace false the quantizer children are detached afterwards.
func Annotate(ctx context.Context, tree *module.Tree, trace bool) error {
	logger := ctxlog.FromContext(ctx)

	var owners []int
	_ = tree.Walk(func(i int, m *module.Module) error {
		if !IsQuantizer(m.Name) {
			owners = append(owners, i)
		}
		return nil
	})

	annotated, pruned := 0, 0
	for _, i := range owners {
		owner := tree.Node(i)
		owner.InputBitwidth, owner.WeightBitwidth = operandBits(tree, owner)
		if owner.InputBitwidth != nil || owner.WeightBitwidth != nil {
			annotated++
			logger.Debug("Annotated module precision.", "module", owner.Name,
				"input_bits", bitsAttr(owner.InputBitwidth), "weight_bits", bitsAttr(owner.WeightBitwidth))
		}
		if trace {
			continue
		}

		for _, c := range slices.Clone(owner.Children) {
			if !IsQuantizer(tree.Node(c).Name) {
				continue
			}
			if err := tree.Detach(i, c); err != nil {
				return fmt.Errorf("pruning quantizer under %q: %w", owner.Name, err)
			}
			pruned++
		}
	}

	logger.Debug("Quantizer annotation complete.", "annotated", annotated, "pruned", pruned, "trace", trace)
	return nil
}

// operandBits returns copies of the owner's input and weight precisions.
func operandBits(tree *module.Tree, owner *module.Module) (input, weight *int) {
	var nestedInput, nestedWeight *int
	for _, c := range owner.Children {
		q := tree.Node(c)
		switch q.Name {
		case InputQuantizer:
			input = q.Bitwidth
			if b := childBits(tree, q, WeightQuantizer); b != nil {
				nestedWeight = b
			}
		case WeightQuantizer:
			weight = q.Bitwidth
			if b := childBits(tree, q, InputQuantizer); b != nil {
				nestedInput = b
			}
		}
	}
	if input == nil {
		input = nestedInput
	}
	if weight == nil {
		weight = nestedWeight
	}
	return copyBits(input), copyBits(weight)
}

func childBits(tree *module.Tree, q *module.Module, name string) *int {
	for _, c := range q.Children {
		if n := tree.Node(c); n.Name == name && n.Bitwidth != nil {
			return n.Bitwidth
		}
	}
	return nil
}

func copyBits(b *int) *int {
	if b == nil {
		return nil
	}
	return module.Bits(*b)
}

func bitsAttr(b *int) any {
	if b == nil {
		return "default"
	}
	return *b
}
