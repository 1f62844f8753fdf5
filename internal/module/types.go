package module

// NoParent is the parent index of the root module.
const NoParent = -1

// Module is one node of the hierarchy: a layer, a container of layers, or a
// quantizer pseudo-node annotating its owner's operand precision.
type Module struct {
	Name   string
	Params int64
	MACs   int64
	FLOPs  int64

	// Bitwidth is set only when the report annotated this line with a
	// "<n>bit" token, which in practice means quantizer pseudo-nodes.
	Bitwidth *int

	// InputBitwidth and WeightBitwidth are the operand precisions consumed
	// from quantizer children. Nil means the default precision applies.
	InputBitwidth  *int
	WeightBitwidth *int

	Depth int
	Cost  float64

	Parent   int
	Children []int

	// detached is set when the module was pruned from its parent.
	detached bool
}

// Bits returns a pointer to n, for populating the optional bit-width fields.
func Bits(n int) *int {
	return &n
}

// IsRoot reports whether the module has no parent.
func (m *Module) IsRoot() bool {
	return m.Parent == NoParent
}

// Detached reports whether the module was pruned from the hierarchy.
func (m *Module) Detached() bool {
	return m.detached
}
