// Package layout implements the binary split tree that arranges panes
// within a tab.
//
// Trees are immutable values: every mutating operation returns a new
// root and rebuilds only the path from the root to the edited leaf,
// sharing all untouched subtrees with the input. Callers holding the
// old root keep observing the old shape, which lets a renderer walk a
// tree while the session layer computes the next one.
package layout

// Direction describes how a split divides its area.
type Direction string

const (
	// Horizontal stacks the two children top over bottom.
	Horizontal Direction = "horizontal"
	// Vertical places the two children side by side.
	Vertical Direction = "vertical"
)

// Node is a node in the split tree: either a *Leaf referencing a pane
// or a *Split owning two child subtrees.
type Node interface {
	node()
}

// Leaf references a single pane by id. It does not own the pane;
// ownership lives in the tab's pane registry.
type Leaf struct {
	PaneID string
}

// Split divides its area between two children. A comes before B in
// every traversal: left before right for vertical splits, top before
// bottom for horizontal ones.
type Split struct {
	Direction Direction
	// Ratio is the share of the area given to A, in (0, 1).
	Ratio float64
	A     Node
	B     Node
}

func (*Leaf) node()  {}
func (*Split) node() {}

// SplitLeaf replaces the leaf holding targetID with a split whose
// first child is the original leaf and whose second child is a new
// leaf for newID, at an even ratio. The returned tree shares every
// subtree not on the path to the target. Returns the input root and
// false when targetID is not present; the tree is never partially
// rewritten.
func SplitLeaf(root Node, targetID, newID string, dir Direction) (Node, bool) {
	switch n := root.(type) {
	case *Leaf:
		if n.PaneID != targetID {
			return root, false
		}
		return &Split{
			Direction: dir,
			Ratio:     0.5,
			A:         n,
			B:         &Leaf{PaneID: newID},
		}, true
	case *Split:
		if a, ok := SplitLeaf(n.A, targetID, newID, dir); ok {
			return &Split{Direction: n.Direction, Ratio: n.Ratio, A: a, B: n.B}, true
		}
		if b, ok := SplitLeaf(n.B, targetID, newID, dir); ok {
			return &Split{Direction: n.Direction, Ratio: n.Ratio, A: n.A, B: b}, true
		}
	}
	return root, false
}

// RemoveLeaf deletes the leaf holding paneID. The split node directly
// above the removed leaf collapses to the surviving sibling subtree,
// so no single-child splits are ever produced. Returns nil and false
// when paneID is not found, or when the root itself is the target
// leaf: a tree always keeps at least one leaf, and callers guard that
// case with CountLeaves before invoking.
func RemoveLeaf(root Node, paneID string) (Node, bool) {
	switch n := root.(type) {
	case *Leaf:
		return nil, false
	case *Split:
		if leaf, ok := n.A.(*Leaf); ok && leaf.PaneID == paneID {
			return n.B, true
		}
		if leaf, ok := n.B.(*Leaf); ok && leaf.PaneID == paneID {
			return n.A, true
		}
		if a, ok := RemoveLeaf(n.A, paneID); ok {
			return &Split{Direction: n.Direction, Ratio: n.Ratio, A: a, B: n.B}, true
		}
		if b, ok := RemoveLeaf(n.B, paneID); ok {
			return &Split{Direction: n.Direction, Ratio: n.Ratio, A: n.A, B: b}, true
		}
	}
	return nil, false
}

// CountLeaves returns the number of leaves in the tree.
func CountLeaves(root Node) int {
	switch n := root.(type) {
	case *Leaf:
		return 1
	case *Split:
		return CountLeaves(n.A) + CountLeaves(n.B)
	}
	return 0
}

// FirstLeaf returns the pane id of the depth-first-first leaf, always
// descending into A before B. This is the deterministic choice for a
// replacement active pane after the previous one is closed.
func FirstLeaf(root Node) (string, bool) {
	switch n := root.(type) {
	case *Leaf:
		return n.PaneID, true
	case *Split:
		if id, ok := FirstLeaf(n.A); ok {
			return id, true
		}
		return FirstLeaf(n.B)
	}
	return "", false
}

// Leaves returns all pane ids in depth-first order, A before B. The
// order is stable for a given tree shape and drives pane cycling.
func Leaves(root Node) []string {
	var ids []string
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Leaf:
			ids = append(ids, n.PaneID)
		case *Split:
			walk(n.A)
			walk(n.B)
		}
	}
	walk(root)
	return ids
}

// Contains reports whether the tree has a leaf for paneID.
func Contains(root Node, paneID string) bool {
	switch n := root.(type) {
	case *Leaf:
		return n.PaneID == paneID
	case *Split:
		return Contains(n.A, paneID) || Contains(n.B, paneID)
	}
	return false
}

// Equal reports structural equality: same shape, same directions and
// ratios, same pane ids at the same positions.
func Equal(a, b Node) bool {
	switch an := a.(type) {
	case *Leaf:
		bn, ok := b.(*Leaf)
		return ok && an.PaneID == bn.PaneID
	case *Split:
		bn, ok := b.(*Split)
		return ok && an.Direction == bn.Direction && an.Ratio == bn.Ratio &&
			Equal(an.A, bn.A) && Equal(an.B, bn.B)
	}
	return a == nil && b == nil
}
