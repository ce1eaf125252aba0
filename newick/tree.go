package newick

import (
	"bytes"
	"fmt"
	"strings"
)

// Tree corresponds to any value representable in a Newick format. Each
// tree value corresponds to a single node.
//
// A node owns its children: there are no parent pointers and no node is
// shared between two parents. The order of children is preserved by both the
// reader and the writer.
type Tree struct {
	// All children of this node, which may be empty.
	Children []Tree

	// The label of this node. If it's empty, then this node does
	// not have a name.
	Label string

	// The branch length of this node corresponding to the distance between
	// it and its parent node. If it's `nil`, then no distance exists.
	Length *float64
}

// NewLength returns a pointer to a copy of x. It is a convenience for
// setting Tree.Length.
func NewLength(x float64) *float64 {
	return &x
}

// Leaf returns a tree with a single labeled node.
func Leaf(label string, length float64) Tree {
	return Tree{Label: label, Length: NewLength(length)}
}

// IsLeaf returns true when the node has no children.
func (tree *Tree) IsLeaf() bool {
	return len(tree.Children) == 0
}

// BranchLength returns the branch length of this node, or 0 if the node
// has no branch length.
func (tree *Tree) BranchLength() float64 {
	if tree.Length == nil {
		return 0
	}
	return *tree.Length
}

// PreOrder visits every node of the tree in pre-order: a node, then each of
// its children from first to last. The depth of the root is 0. If f returns
// false, the children of that node are not visited.
func (tree *Tree) PreOrder(f func(t *Tree, depth int) bool) {
	var visit func(t *Tree, depth int)
	visit = func(t *Tree, depth int) {
		if !f(t, depth) {
			return
		}
		for i := range t.Children {
			visit(&t.Children[i], depth+1)
		}
	}
	visit(tree, 0)
}

// Leaves returns the leaves of the tree in pre-order.
func (tree *Tree) Leaves() []*Tree {
	var leaves []*Tree
	tree.PreOrder(func(t *Tree, depth int) bool {
		if t.IsLeaf() {
			leaves = append(leaves, t)
		}
		return true
	})
	return leaves
}

// Labels returns the labels of the leaves of the tree in pre-order.
func (tree *Tree) Labels() []string {
	leaves := tree.Leaves()
	labels := make([]string, len(leaves))
	for i, leaf := range leaves {
		labels[i] = leaf.Label
	}
	return labels
}

// RootDistances returns, for each leaf label, the sum of the branch lengths
// on the path from the root to that leaf. The root's own length is not
// counted.
func (tree *Tree) RootDistances() map[string]float64 {
	dists := make(map[string]float64)
	var visit func(t *Tree, acc float64)
	visit = func(t *Tree, acc float64) {
		if t.IsLeaf() {
			dists[t.Label] = acc
			return
		}
		for i := range t.Children {
			visit(&t.Children[i], acc+t.Children[i].BranchLength())
		}
	}
	visit(tree, 0)
	return dists
}

// TotalLength returns the sum of all branch lengths below the root.
func (tree *Tree) TotalLength() float64 {
	total := 0.0
	tree.PreOrder(func(t *Tree, depth int) bool {
		if depth > 0 {
			total += t.BranchLength()
		}
		return true
	})
	return total
}

// String recursively converts a tree to a string, with whitespace indenting
// to indicate depth.
func (tree *Tree) String() string {
	buf := new(bytes.Buffer)
	tree.PreOrder(func(t *Tree, depth int) bool {
		name, length := t.Label, ""
		if len(name) == 0 {
			name = "N/A"
		}
		if t.Length != nil {
			length = fmt.Sprintf(" (%f)", *t.Length)
		}
		fmt.Fprintf(buf, "%s%s%s\n", strings.Repeat("  ", depth), name, length)
		return true
	})
	return buf.String()
}
