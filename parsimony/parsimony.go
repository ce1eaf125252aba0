// Package parsimony builds rooted trees from a multiple sequence alignment
// with a greedy maximum parsimony heuristic.
//
// A tree is grown by stepwise insertion. The three sequences closest to each
// other form a star, and every other sequence is added on the edge that
// gives the lowest Fitch parsimony score. The distance matrix only decides
// the starting triple and the order of insertion. The unrooted result is
// rooted at the midpoint of its longest tip-to-tip path, and every branch
// length is the number of columns that change along the branch in a final
// Fitch reconstruction. So branch lengths are integers and their sum is the
// parsimony score of the tree.
//
// Identical sequences are left out of the search. Each one is added at the
// end next to the first copy placed, which costs nothing, so identical
// sequences always end up as siblings with branch lengths of 0.
package parsimony

import (
	"fmt"
	"sort"

	"github.com/TuftsBCB/phylo/distance"
	"github.com/TuftsBCB/phylo/msa"
	"github.com/TuftsBCB/phylo/newick"
	"github.com/TuftsBCB/seq"
)

// Build returns a parsimony tree for the alignment.
//
// The alignment is checked with msa.Validate. At least three sequences are
// required, otherwise an error satisfying
// errors.Is(err, distance.ErrInsufficientSequences) is returned.
func Build(aln seq.MSA) (*newick.Tree, error) {
	if err := check(aln); err != nil {
		return nil, err
	}
	m, err := distance.Compute(aln)
	if err != nil {
		return nil, err
	}
	return BuildWithMatrix(aln, m)
}

// BuildWithMatrix is the same as Build, but uses a distance matrix that has
// already been computed for aln. The names of the matrix must be the names
// of the alignment, in the same order.
//
// Insertion is run twice, once in the order chosen from the distances and
// once in its reverse. The tree with the lower score is kept, preferring the
// first on ties.
func BuildWithMatrix(aln seq.MSA, m *distance.Matrix) (*newick.Tree, error) {
	if err := checkMatrix(aln, m); err != nil {
		return nil, err
	}
	b := newBuilder(aln)
	forward := insertionOrder(m)
	t, score := b.run(forward)
	if rt, rscore := b.run(reverseOrder(forward)); rscore < score {
		t = rt
	}
	return b.finish(t)
}

// BuildOrder builds a tree with a single insertion run. order must contain
// every sequence index exactly once. The first three indices form the
// starting star and the rest are inserted in order.
func BuildOrder(aln seq.MSA, order []int) (*newick.Tree, error) {
	if err := check(aln); err != nil {
		return nil, err
	}
	if len(order) != len(aln.Entries) {
		return nil, fmt.Errorf("An insertion order must have %d indices, "+
			"but has %d.", len(aln.Entries), len(order))
	}
	seen := make([]bool, len(order))
	for _, i := range order {
		if i < 0 || i >= len(order) || seen[i] {
			return nil, fmt.Errorf("Insertion order %v is not a "+
				"permutation of sequence indices.", order)
		}
		seen[i] = true
	}
	b := newBuilder(aln)
	t, _ := b.run(order)
	return b.finish(t)
}

func check(aln seq.MSA) error {
	if len(aln.Entries) > 0 {
		if err := msa.Validate(aln); err != nil {
			return err
		}
	}
	if len(aln.Entries) < 3 {
		return distance.Insufficient(3, len(aln.Entries))
	}
	return nil
}

func checkMatrix(aln seq.MSA, m *distance.Matrix) error {
	if err := check(aln); err != nil {
		return err
	}
	if m.Len() != len(aln.Entries) {
		return fmt.Errorf("The distance matrix has %d sequences, but the "+
			"alignment has %d.", m.Len(), len(aln.Entries))
	}
	for i, s := range aln.Entries {
		j, ok := m.Index(s.Name)
		switch {
		case !ok:
			return fmt.Errorf("Sequence '%s' is not in the distance matrix.",
				s.Name)
		case j != i:
			return fmt.Errorf("Sequence '%s' is row %d of the alignment, but "+
				"row %d of the distance matrix.", s.Name, i, j)
		}
	}
	return nil
}

// insertionOrder returns the starting triple followed by every other
// sequence. The triple has the smallest sum of pairwise distances, with ties
// going to the smallest indices. The rest are sorted by their smallest
// distance to the triple, with ties in alignment order.
func insertionOrder(m *distance.Matrix) []int {
	n := m.Len()
	best := [3]int{0, 1, 2}
	bestSum := m.At(0, 1) + m.At(0, 2) + m.At(1, 2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				sum := m.At(i, j) + m.At(i, k) + m.At(j, k)
				if sum < bestSum {
					best, bestSum = [3]int{i, j, k}, sum
				}
			}
		}
	}

	order := best[:]
	rest := make([]int, 0, n-3)
	closest := make([]float64, n)
	for x := 0; x < n; x++ {
		if x == best[0] || x == best[1] || x == best[2] {
			continue
		}
		rest = append(rest, x)
		closest[x] = m.At(x, best[0])
		for _, y := range best[1:] {
			if d := m.At(x, y); d < closest[x] {
				closest[x] = d
			}
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return closest[rest[i]] < closest[rest[j]]
	})
	return append(order, rest...)
}

// reverseOrder keeps the starting triple and reverses the rest.
func reverseOrder(order []int) []int {
	rev := append([]int(nil), order...)
	for i, j := 3, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

type builder struct {
	names  []string
	leaves [][]uint32

	// group[i] is the smallest index of a sequence identical to i.
	group []int
}

func newBuilder(aln seq.MSA) *builder {
	leaves := leafStates(aln)
	return &builder{
		names:  msa.Names(aln),
		leaves: leaves,
		group:  groups(leaves),
	}
}

func groups(leaves [][]uint32) []int {
	group := make([]int, len(leaves))
	for i := range leaves {
		group[i] = i
		for j := 0; j < i; j++ {
			if group[j] == j && changes(leaves[i], leaves[j]) == 0 {
				group[i] = j
				break
			}
		}
	}
	return group
}

// split divides an insertion order into the first sequence of every group
// of identical sequences and the duplicates that come after. When there
// are fewer than three groups, duplicates fill up the starting star.
func (b *builder) split(order []int) (distinct, dups []int) {
	seen := make(map[int]bool, len(order))
	for _, x := range order {
		if g := b.group[x]; !seen[g] {
			seen[g] = true
			distinct = append(distinct, x)
		} else {
			dups = append(dups, x)
		}
	}
	for len(distinct) < 3 {
		distinct, dups = append(distinct, dups[0]), dups[1:]
	}
	return distinct, dups
}

// run grows an unrooted tree by inserting sequences in the order given and
// returns it with its score.
func (b *builder) run(order []int) (*unrooted, int) {
	distinct, dups := b.split(order)
	t := newStar(len(b.leaves), distinct[0], distinct[1], distinct[2])
	score := t.score(b.leaves)
	for _, x := range distinct[3:] {
		best, bestEdge := -1, edge{}
		for _, e := range t.edges() {
			w := t.insert(x, e)
			s := t.score(b.leaves)
			t.undo(x, e, w)
			if best == -1 || s < best {
				best, bestEdge = s, e
			}
		}
		t.insert(x, bestEdge)
		score = best
	}

	twin := make(map[int]int, len(distinct))
	for _, x := range distinct {
		if _, ok := twin[b.group[x]]; !ok {
			twin[b.group[x]] = x
		}
	}
	for _, x := range dups {
		t.insert(x, t.pendant(twin[b.group[x]]))
	}
	return t, score
}

// finish roots the tree and assigns branch lengths.
func (b *builder) finish(t *unrooted) (*newick.Tree, error) {
	root := t.midpoint(b.leaves)
	score := root.up(b.leaves)
	root.down(nil)

	tree := root.tree(b.names)
	if total := tree.TotalLength(); int(total) != score {
		return nil, distance.Evaluationf("Branch lengths sum to %d, but the "+
			"parsimony score is %d.", int(total), score)
	}
	return &tree, nil
}
