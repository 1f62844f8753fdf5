package module

import (
	"errors"
	"fmt"
	"slices"
)

// ErrCorruptTree is returned when parent links and children lists disagree or
// a parent chain loops. It indicates a programming error, not bad input.
var ErrCorruptTree = errors.New("corrupt module tree")

// Tree is the arena holding every Module of one report.
type Tree struct {
	nodes []Module

	// Propagated is set by the propagation engine once costs are final.
	Propagated bool
}

// New creates a tree whose root is the given module. The root's Parent, Depth
// and Children are reset.
func New(root Module) *Tree {
	root.Parent = NoParent
	root.Depth = 0
	root.Children = nil
	return &Tree{nodes: []Module{root}}
}

// NewEmpty creates a tree with no modules, used when the report had no model
// section to parse.
func NewEmpty() *Tree {
	return &Tree{}
}

// Empty reports whether the tree has no root.
func (t *Tree) Empty() bool {
	return len(t.nodes) == 0
}

// Root returns the root index, or NoParent for an empty tree.
func (t *Tree) Root() int {
	if t.Empty() {
		return NoParent
	}
	return 0
}

// Len returns the number of modules in the arena, detached ones included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the module at index i. The pointer stays valid until the next
// AddChild call.
func (t *Tree) Node(i int) *Module {
	return &t.nodes[i]
}

// AddChild appends m as the last child of parent and returns its index. The
// child's depth is always parent depth + 1, whatever the caller put in m.
func (t *Tree) AddChild(parent int, m Module) (int, error) {
	if parent < 0 || parent >= len(t.nodes) {
		return NoParent, fmt.Errorf("%w: parent index %d out of range", ErrCorruptTree, parent)
	}
	if t.nodes[parent].detached {
		return NoParent, fmt.Errorf("%w: parent %q is detached", ErrCorruptTree, t.nodes[parent].Name)
	}

	m.Parent = parent
	m.Depth = t.nodes[parent].Depth + 1
	m.Children = nil
	m.detached = false

	idx := len(t.nodes)
	t.nodes = append(t.nodes, m)
	t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
	return idx, nil
}

// Detach removes child (and so its whole subtree) from parent's children.
// The module stays in the arena but is no longer reachable from the root.
func (t *Tree) Detach(parent, child int) error {
	p := &t.nodes[parent]
	pos := slices.Index(p.Children, child)
	if pos < 0 {
		return fmt.Errorf("%w: %q is not a child of %q", ErrCorruptTree, t.nodes[child].Name, p.Name)
	}
	p.Children = slices.Delete(p.Children, pos, pos+1)

	stack := []int{child}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[i].detached = true
		stack = append(stack, t.nodes[i].Children...)
	}
	return nil
}

// Walk visits every module reachable from the root in pre-order (a module
// before its children, children in report order). Returning an error from fn
// stops the walk.
func (t *Tree) Walk(fn func(i int, m *Module) error) error {
	if t.Empty() {
		return nil
	}
	var visit func(i int) error
	visit = func(i int) error {
		if err := fn(i, &t.nodes[i]); err != nil {
			return err
		}
		for _, c := range t.nodes[i].Children {
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(t.Root())
}

// Ancestors returns the strict ancestors of i, nearest first. A chain longer
// than the arena can only be a cycle and is reported as ErrCorruptTree.
func (t *Tree) Ancestors(i int) ([]int, error) {
	var out []int
	for p := t.nodes[i].Parent; p != NoParent; p = t.nodes[p].Parent {
		if len(out) >= len(t.nodes) {
			return nil, fmt.Errorf("%w: parent chain of %q does not reach the root", ErrCorruptTree, t.nodes[i].Name)
		}
		if p < 0 || p >= len(t.nodes) {
			return nil, fmt.Errorf("%w: parent index %d out of range", ErrCorruptTree, p)
		}
		out = append(out, p)
	}
	return out, nil
}

// Find returns the index of the first reachable module with the given name in
// pre-order, or NoParent.
func (t *Tree) Find(name string) int {
	found := NoParent
	errStop := errors.New("stop")
	_ = t.Walk(func(i int, m *Module) error {
		if m.Name == name {
			found = i
			return errStop
		}
		return nil
	})
	return found
}

// Validate checks the structural invariants: the root has no parent, every
// reachable child points back at the parent listing it, appears once, sits
// one level deeper, and every parent chain ends at the root.
func (t *Tree) Validate() error {
	if t.Empty() {
		return nil
	}
	if root := &t.nodes[0]; root.Parent != NoParent || root.Depth != 0 {
		return fmt.Errorf("%w: root %q has parent %d and depth %d", ErrCorruptTree, root.Name, root.Parent, root.Depth)
	}

	seen := make([]bool, len(t.nodes))
	seen[0] = true
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := &t.nodes[i]

		for _, c := range parent.Children {
			if c <= 0 || c >= len(t.nodes) {
				return fmt.Errorf("%w: %q lists child index %d", ErrCorruptTree, parent.Name, c)
			}
			if seen[c] {
				return fmt.Errorf("%w: %q is reachable more than once", ErrCorruptTree, t.nodes[c].Name)
			}
			seen[c] = true

			child := &t.nodes[c]
			if child.Parent != i {
				return fmt.Errorf("%w: %q is listed under %q but points at parent %d", ErrCorruptTree, child.Name, parent.Name, child.Parent)
			}
			if child.Depth != parent.Depth+1 {
				return fmt.Errorf("%w: %q has depth %d under %q at depth %d", ErrCorruptTree, child.Name, child.Depth, parent.Name, parent.Depth)
			}
			stack = append(stack, c)
		}
	}

	for i := range t.nodes {
		if i == 0 || t.nodes[i].detached {
			continue
		}
		if !seen[i] {
			return fmt.Errorf("%w: %q is not reachable from the root", ErrCorruptTree, t.nodes[i].Name)
		}
		if _, err := t.Ancestors(i); err != nil {
			return err
		}
	}
	return nil
}
