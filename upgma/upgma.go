// Package upgma builds rooted, ultrametric trees from distance matrices by
// average linkage clustering (UPGMA).
//
// Clustering is deterministic. When more than one pair of clusters is at the
// minimum distance, the pair whose combined, sorted list of member names is
// lexicographically smallest is merged first.
package upgma

import (
	"sort"

	"github.com/TuftsBCB/phylo/distance"
	"github.com/TuftsBCB/phylo/newick"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// negativeTolerance is the largest amount a branch length may fall below
// zero from rounding before it is reported as an error.
const negativeTolerance = 1e-12

type cluster struct {
	members []string // sorted
	height  float64
	size    int
	node    newick.Tree
}

// Build clusters the sequences of the distance matrix into a rooted binary
// tree. Every leaf is labeled with a sequence name and the root has no
// branch length. The distance from the root to every leaf is the same.
//
// At least two sequences are required. Otherwise, an error satisfying
// errors.Is(err, distance.ErrInsufficientSequences) is returned.
func Build(m *distance.Matrix) (*newick.Tree, error) {
	n := m.Len()
	if n < 2 {
		return nil, distance.Insufficient(2, n)
	}

	clusters := make([]*cluster, n)
	for i := 0; i < n; i++ {
		clusters[i] = &cluster{
			members: []string{m.Name(i)},
			size:    1,
			node:    newick.Tree{Label: m.Name(i)},
		}
	}
	dists := mat.NewSymDense(n, nil)
	dists.CopySym(m.Matrix())

	// Merged clusters are stored in the slot of the first cluster and the
	// slot of the second is set to nil.
	for remaining := n; remaining > 1; remaining-- {
		a, b := closest(clusters, dists)
		merged, err := merge(clusters[a], clusters[b], dists.At(a, b))
		if err != nil {
			return nil, err
		}
		for k, c := range clusters {
			if c == nil || k == a || k == b {
				continue
			}
			d := (float64(clusters[a].size)*dists.At(a, k) +
				float64(clusters[b].size)*dists.At(b, k)) /
				float64(clusters[a].size+clusters[b].size)
			dists.SetSym(a, k, d)
		}
		clusters[a], clusters[b] = merged, nil
	}
	for _, c := range clusters {
		if c != nil {
			return &c.node, nil
		}
	}
	panic("unreachable")
}

// closest returns the slots of the two clusters at the minimum distance,
// with a < b.
func closest(clusters []*cluster, dists mat.Symmetric) (int, int) {
	besta, bestb := -1, -1
	var bestMembers []string
	for i := range clusters {
		if clusters[i] == nil {
			continue
		}
		for j := i + 1; j < len(clusters); j++ {
			if clusters[j] == nil {
				continue
			}
			d := dists.At(i, j)
			if besta == -1 || d < dists.At(besta, bestb) {
				besta, bestb = i, j
				bestMembers = nil
				continue
			}
			if d > dists.At(besta, bestb) {
				continue
			}
			if bestMembers == nil {
				bestMembers = union(clusters[besta], clusters[bestb])
			}
			members := union(clusters[i], clusters[j])
			if compareNames(members, bestMembers) < 0 {
				besta, bestb, bestMembers = i, j, members
			}
		}
	}
	return besta, bestb
}

// merge joins two clusters under a new node at half of the distance between
// them.
func merge(c1, c2 *cluster, d float64) (*cluster, error) {
	if compareNames(c2.members, c1.members) < 0 {
		c1, c2 = c2, c1
	}
	height := d / 2
	children := make([]newick.Tree, 2)
	for i, c := range []*cluster{c1, c2} {
		length := height - c.height
		if length < 0 {
			if !scalar.EqualWithinAbs(length, 0, negativeTolerance) {
				return nil, distance.Evaluationf(
					"Negative branch length %g above cluster %v.",
					length, c.members)
			}
			length = 0
		}
		children[i] = c.node
		children[i].Length = newick.NewLength(length)
	}
	return &cluster{
		members: union(c1, c2),
		height:  height,
		size:    c1.size + c2.size,
		node:    newick.Tree{Children: children},
	}, nil
}

func union(c1, c2 *cluster) []string {
	members := make([]string, 0, len(c1.members)+len(c2.members))
	members = append(members, c1.members...)
	members = append(members, c2.members...)
	sort.Strings(members)
	return members
}

// compareNames compares two sorted lists of names lexicographically.
func compareNames(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		} else if a[i] > b[i] {
			return 1
		}
	}
	return len(a) - len(b)
}

// Height returns the distance from the root of tree to its first leaf. For
// a tree built by Build, this is the distance to every leaf.
func Height(tree *newick.Tree) float64 {
	h := 0.0
	for t := tree; !t.IsLeaf(); {
		t = &t.Children[0]
		h += t.BranchLength()
	}
	return h
}
