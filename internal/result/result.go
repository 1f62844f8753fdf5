// Package result assembles a propagated module tree into its serializable
// form and encodes it as JSON, YAML or a table.
package result

import (
	"errors"

	"github.com/specialistvlad/quantcost/internal/module"
	"github.com/specialistvlad/quantcost/internal/report"
)

// ErrNotPropagated is returned when assembling a tree whose costs are not final.
var ErrNotPropagated = errors.New("module tree has not been propagated")

// Node is one module in output form. Parent is the parent's name, null for
// the root.
type Node struct {
	Name           string  `json:"name" yaml:"name"`
	Params         int64   `json:"params" yaml:"params"`
	MACs           int64   `json:"macs" yaml:"macs"`
	FLOPs          int64   `json:"flops" yaml:"flops"`
	Bitwidth       *int    `json:"bitwidth" yaml:"bitwidth"`
	InputBitwidth  *int    `json:"input_bitwidth,omitempty" yaml:"input_bitwidth,omitempty"`
	WeightBitwidth *int    `json:"weight_bitwidth,omitempty" yaml:"weight_bitwidth,omitempty"`
	Depth          int     `json:"depth" yaml:"depth"`
	Cost           float64 `json:"cost" yaml:"cost"`
	Parent         *string `json:"parent" yaml:"parent"`
	Children       []*Node `json:"children" yaml:"children"`
}

// Result is the outcome of one estimate.
type Result struct {
	Source          string        `json:"source,omitempty" yaml:"source,omitempty"`
	Layout          string        `json:"layout" yaml:"layout"`
	CostFunction    string        `json:"cost_function" yaml:"cost_function"`
	DefaultBitwidth int           `json:"default_bitwidth" yaml:"default_bitwidth"`
	TotalCost       float64       `json:"total_cost" yaml:"total_cost"`
	Totals          report.Totals `json:"totals" yaml:"totals"`
	Notices         []string      `json:"notices,omitempty" yaml:"notices,omitempty"`
	// Model is nil when the report had no model listing.
	Model *Node `json:"model" yaml:"model"`
}

// Meta is the run information copied into a Result.
type Meta struct {
	Source          string
	Layout          string
	CostFunction    string
	DefaultBitwidth int
	Totals          report.Totals
	Notices         []string
}

// Assemble converts a propagated tree. Detached modules are left out.
func Assemble(tree *module.Tree, meta Meta) (*Result, error) {
	if !tree.Propagated {
		return nil, ErrNotPropagated
	}

	r := &Result{
		Source:          meta.Source,
		Layout:          meta.Layout,
		CostFunction:    meta.CostFunction,
		DefaultBitwidth: meta.DefaultBitwidth,
		Totals:          meta.Totals,
		Notices:         meta.Notices,
	}
	if tree.Empty() {
		return r, nil
	}

	r.Model = buildNode(tree, tree.Root(), nil)
	r.TotalCost = r.Model.Cost
	return r, nil
}

func buildNode(tree *module.Tree, i int, parent *string) *Node {
	m := tree.Node(i)
	n := &Node{
		Name:           m.Name,
		Params:         m.Params,
		MACs:           m.MACs,
		FLOPs:          m.FLOPs,
		Bitwidth:       m.Bitwidth,
		InputBitwidth:  m.InputBitwidth,
		WeightBitwidth: m.WeightBitwidth,
		Depth:          m.Depth,
		Cost:           m.Cost,
		Parent:         parent,
		Children:       make([]*Node, 0, len(m.Children)),
	}
	name := m.Name
	for _, c := range m.Children {
		n.Children = append(n.Children, buildNode(tree, c, &name))
	}
	return n
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
