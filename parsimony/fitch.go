package parsimony

import (
	"fmt"

	"github.com/TuftsBCB/phylo/distance"
	"github.com/TuftsBCB/phylo/msa"
	"github.com/TuftsBCB/phylo/newick"
	"github.com/TuftsBCB/seq"
)

// Bits of a state set. Letters use bits 0-25.
const (
	stopBit = 26
	gapBit  = 27
)

// stateBit returns the state set containing only the residue given.
// Residues that are not letters or '*' are gaps.
func stateBit(r seq.Residue) uint32 {
	r = distance.Normalize(r)
	switch {
	case r >= 'A' && r <= 'Z':
		return 1 << uint(r-'A')
	case r == '*':
		return 1 << stopBit
	}
	return 1 << gapBit
}

// leafStates returns the state sets of every column of every sequence.
func leafStates(aln seq.MSA) [][]uint32 {
	states := make([][]uint32, len(aln.Entries))
	for i, s := range aln.Entries {
		states[i] = make([]uint32, len(s.Residues))
		for c, r := range s.Residues {
			states[i][c] = stateBit(r)
		}
	}
	return states
}

// lowest returns the set containing only the lowest state in x.
func lowest(x uint32) uint32 {
	return x & -x
}

// combine replaces acc with the Fitch set of acc and other, column by
// column, and returns the number of columns where the sets were disjoint.
func combine(acc, other []uint32) int {
	cost := 0
	for c := range acc {
		if x := acc[c] & other[c]; x != 0 {
			acc[c] = x
		} else {
			acc[c] |= other[c]
			cost++
		}
	}
	return cost
}

// changes returns the number of columns in which two state assignments
// differ.
func changes(a, b []uint32) int {
	n := 0
	for c := range a {
		if a[c] != b[c] {
			n++
		}
	}
	return n
}

// node is a rooted view of a tree used for Fitch passes. Leaves have an id
// in [0, n) that indexes the alignment and no children.
type node struct {
	id       int
	children []*node
	set      []uint32
	state    []uint32
}

func (nd *node) isLeaf() bool {
	return len(nd.children) == 0
}

// up computes the Fitch set of every node below and including nd and returns
// the cost. Children are combined pairwise, from first to last.
func (nd *node) up(leaves [][]uint32) int {
	if nd.isLeaf() {
		nd.set = leaves[nd.id]
		return 0
	}
	cost := nd.children[0].up(leaves)
	nd.set = append([]uint32(nil), nd.children[0].set...)
	for _, child := range nd.children[1:] {
		cost += child.up(leaves)
		cost += combine(nd.set, child.set)
	}
	return cost
}

// down assigns one state to every column of every node below and including
// nd. The root (parent == nil) takes the lowest state of its set. Any other
// node keeps its parent's state when its set allows it, and its own lowest
// state otherwise.
func (nd *node) down(parent []uint32) {
	nd.state = make([]uint32, len(nd.set))
	for c, x := range nd.set {
		if parent != nil && parent[c]&x != 0 {
			nd.state[c] = parent[c]
		} else {
			nd.state[c] = lowest(x)
		}
	}
	for _, child := range nd.children {
		child.down(nd.state)
	}
}

// tree converts the rooted view into a Newick tree. Each branch length is
// the number of columns whose assigned state changes along the branch, so
// down must have been called.
func (nd *node) tree(names []string) newick.Tree {
	if nd.isLeaf() {
		return newick.Tree{Label: names[nd.id]}
	}
	t := newick.Tree{Children: make([]newick.Tree, len(nd.children))}
	for i, child := range nd.children {
		t.Children[i] = child.tree(names)
		t.Children[i].Length = newick.NewLength(
			float64(changes(nd.state, child.state)))
	}
	return t
}

// Score returns the Fitch parsimony score of a rooted tree for the given
// alignment. The leaf labels of the tree must be exactly the names of the
// sequences in the alignment. Children of multifurcating nodes are combined
// pairwise in order.
func Score(tree *newick.Tree, aln seq.MSA) (int, error) {
	if err := msa.Validate(aln); err != nil {
		return 0, err
	}
	index := make(map[string]int, len(aln.Entries))
	for i, s := range aln.Entries {
		index[s.Name] = i
	}

	seen := make([]bool, len(aln.Entries))
	var convert func(t *newick.Tree) (*node, error)
	convert = func(t *newick.Tree) (*node, error) {
		if t.IsLeaf() {
			i, ok := index[t.Label]
			if !ok {
				return nil, fmt.Errorf("Leaf '%s' is not in the alignment.",
					t.Label)
			}
			if seen[i] {
				return nil, fmt.Errorf("Leaf '%s' appears more than once.",
					t.Label)
			}
			seen[i] = true
			return &node{id: i}, nil
		}
		nd := &node{id: -1, children: make([]*node, len(t.Children))}
		for i := range t.Children {
			child, err := convert(&t.Children[i])
			if err != nil {
				return nil, err
			}
			nd.children[i] = child
		}
		return nd, nil
	}
	root, err := convert(tree)
	if err != nil {
		return 0, err
	}
	for i, ok := range seen {
		if !ok {
			return 0, fmt.Errorf("Sequence '%s' is not a leaf of the tree.",
				aln.Entries[i].Name)
		}
	}
	return root.up(leafStates(aln)), nil
}
