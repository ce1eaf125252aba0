package parsimony

import (
	"sort"
)

// edge is a directed edge of an unrooted tree, from the node closer to the
// first leaf to the node further from it.
type edge struct {
	from, to int
}

// unrooted is a binary unrooted tree stored as adjacency lists. Nodes
// [0, n) are the leaves, indexed like the alignment, and internal nodes are
// numbered from n. A leaf that hasn't been inserted has no neighbours.
// Neighbour lists are always sorted.
type unrooted struct {
	n    int
	adj  [][]int
	next int
}

// newStar returns a tree where leaves a, b and c are joined by a single
// internal node.
func newStar(n, a, b, c int) *unrooted {
	t := &unrooted{
		n:    n,
		adj:  make([][]int, 2*n),
		next: n,
	}
	center := t.next
	t.next++
	t.link(center, a)
	t.link(center, b)
	t.link(center, c)
	return t
}

func (t *unrooted) link(u, v int) {
	t.adj[u] = insertSorted(t.adj[u], v)
	t.adj[v] = insertSorted(t.adj[v], u)
}

func (t *unrooted) unlink(u, v int) {
	t.adj[u] = remove(t.adj[u], v)
	t.adj[v] = remove(t.adj[v], u)
}

// insert splits e with a new internal node and attaches leaf x to it. The
// new node is returned.
func (t *unrooted) insert(x int, e edge) int {
	w := t.next
	t.next++
	t.unlink(e.from, e.to)
	t.link(e.from, w)
	t.link(w, e.to)
	t.link(w, x)
	return w
}

// undo reverses insert(x, e), which returned w.
func (t *unrooted) undo(x int, e edge, w int) {
	t.unlink(w, x)
	t.unlink(w, e.to)
	t.unlink(e.from, w)
	t.link(e.from, e.to)
	t.next--
}

// pendant returns the edge that attaches leaf v.
func (t *unrooted) pendant(v int) edge {
	if v == t.first() {
		return edge{v, t.adj[v][0]}
	}
	return edge{t.adj[v][0], v}
}

// first returns the smallest leaf in the tree. Traversals start there.
func (t *unrooted) first() int {
	for v := 0; v < t.n; v++ {
		if len(t.adj[v]) > 0 {
			return v
		}
	}
	panic("unreachable")
}

// edges returns every edge in pre-order from the first leaf. Neighbours are
// visited in increasing order.
func (t *unrooted) edges() []edge {
	edges := make([]edge, 0, 2*t.n)
	var visit func(v, parent int)
	visit = func(v, parent int) {
		for _, w := range t.adj[v] {
			if w == parent {
				continue
			}
			edges = append(edges, edge{v, w})
			visit(w, v)
		}
	}
	visit(t.first(), -1)
	return edges
}

// score returns the Fitch score of the tree. The score of an unrooted tree
// doesn't depend on where it is rooted, so it is rooted at the first leaf.
func (t *unrooted) score(leaves [][]uint32) int {
	cost := 0
	var up func(v, parent int) []uint32
	up = func(v, parent int) []uint32 {
		if v < t.n {
			return leaves[v]
		}
		var set []uint32
		for _, w := range t.adj[v] {
			if w == parent {
				continue
			}
			child := up(w, v)
			if set == nil {
				set = append([]uint32(nil), child...)
			} else {
				cost += combine(set, child)
			}
		}
		return set
	}
	root := t.first()
	set := append([]uint32(nil), up(t.adj[root][0], root)...)
	return cost + combine(set, leaves[root])
}

// rooted returns a rooted view of the subtree at v that excludes parent.
func (t *unrooted) rooted(v, parent int) *node {
	nd := &node{id: v}
	for _, w := range t.adj[v] {
		if w != parent {
			nd.children = append(nd.children, t.rooted(w, v))
		}
	}
	return nd
}

// midpoint roots the tree on the middle of its longest tip-to-tip path.
//
// Path lengths come from a Fitch reconstruction rooted at leaf 0. Of the
// longest paths, the one with the smallest pair of leaves is used. The root
// is placed on the edge (p, q) of the path where the distance from the
// start to p is less than half the path length and the distance to q is at
// least half. If the path has length 0, the root is placed on its first
// edge.
func (t *unrooted) midpoint(leaves [][]uint32) *node {
	lengths := t.provisionalLengths(leaves)

	besta, bestb, best := -1, -1, -1
	for a := 0; a < t.n; a++ {
		dist, _ := t.walk(a, lengths)
		for b := a + 1; b < t.n; b++ {
			if dist[b] > best {
				besta, bestb, best = a, b, dist[b]
			}
		}
	}

	dist, prev := t.walk(besta, lengths)
	path := []int{bestb}
	for v := bestb; v != besta; {
		v = prev[v]
		path = append(path, v)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	p, q := path[0], path[1]
	if best > 0 {
		// Compare twice the distance to avoid halving an odd length.
		for i := 0; i+1 < len(path); i++ {
			if 2*dist[path[i]] < best && best <= 2*dist[path[i+1]] {
				p, q = path[i], path[i+1]
				break
			}
		}
	}
	return &node{
		id:       -1,
		children: []*node{t.rooted(p, q), t.rooted(q, p)},
	}
}

// provisionalLengths returns the number of changes along every edge in a
// Fitch reconstruction rooted at leaf 0. Keys have the smaller node first.
func (t *unrooted) provisionalLengths(leaves [][]uint32) map[edge]int {
	lengths := make(map[edge]int, 2*t.n)
	top := t.rooted(t.adj[0][0], 0)
	top.up(leaves)
	leaf0 := make([]uint32, len(leaves[0]))
	for c, x := range leaves[0] {
		leaf0[c] = lowest(x)
	}
	top.down(leaf0)

	var record func(parent []uint32, pid int, nd *node)
	record = func(parent []uint32, pid int, nd *node) {
		lengths[undirected(pid, nd.id)] = changes(parent, nd.state)
		for _, child := range nd.children {
			record(nd.state, nd.id, child)
		}
	}
	record(leaf0, 0, top)
	return lengths
}

// walk returns the distance from v to every node and the node before each
// on the path from v.
func (t *unrooted) walk(v int, lengths map[edge]int) ([]int, []int) {
	dist := make([]int, len(t.adj))
	prev := make([]int, len(t.adj))
	var visit func(u, parent int)
	visit = func(u, parent int) {
		for _, w := range t.adj[u] {
			if w == parent {
				continue
			}
			dist[w] = dist[u] + lengths[undirected(u, w)]
			prev[w] = u
			visit(w, u)
		}
	}
	prev[v] = -1
	visit(v, -1)
	return dist, prev
}

func undirected(u, v int) edge {
	if u > v {
		u, v = v, u
	}
	return edge{u, v}
}

func insertSorted(xs []int, x int) []int {
	i := sort.SearchInts(xs, x)
	xs = append(xs, 0)
	copy(xs[i+1:], xs[i:])
	xs[i] = x
	return xs
}

func remove(xs []int, x int) []int {
	i := sort.SearchInts(xs, x)
	if i < len(xs) && xs[i] == x {
		return append(xs[:i], xs[i+1:]...)
	}
	return xs
}
