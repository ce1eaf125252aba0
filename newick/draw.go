package newick

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

// Draw writes a text drawing of the tree to w. The root is on the left and
// every leaf gets its own line, ending with its label. Horizontal distances
// are in proportion to branch lengths, scaled so that the drawing and the
// labels fit in width columns. If every branch length is 0, each branch is
// drawn with the same length instead.
//
// An error is returned if width is too small for the labels.
func (tree *Tree) Draw(w io.Writer, width int) error {
	leaves := tree.Leaves()
	labelWidth := 0
	for _, leaf := range leaves {
		if n := utf8.RuneCountInString(leaf.Label); n > labelWidth {
			labelWidth = n
		}
	}
	drawWidth := width - labelWidth - 1

	// Leaves at the full depth still need room for the lines that join
	// their ancestors.
	margin := int(math.Ceil(math.Log2(float64(len(leaves)))))
	if drawWidth-margin < 1 {
		return fmt.Errorf("A width of %d is too small to draw %d leaves "+
			"with labels of up to %d characters.",
			width, len(leaves), labelWidth)
	}

	cols := drawColumns(tree, float64(drawWidth-margin))
	rows := drawRows(tree, leaves)
	ncols := drawWidth
	for _, col := range cols {
		if col+1 > ncols {
			ncols = col + 1
		}
	}
	grid := make([][]byte, 2*len(leaves)-1)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", ncols))
	}

	var draw func(t *Tree, start int)
	draw = func(t *Tree, start int) {
		col, row := cols[t], rows[t]
		for c := start; c < col; c++ {
			grid[row][c] = '_'
		}
		if t.IsLeaf() {
			return
		}
		first, last := &t.Children[0], &t.Children[len(t.Children)-1]
		for r := rows[first] + 1; r <= rows[last]; r++ {
			grid[r][col] = '|'
		}
		// A short branch to the first child would otherwise leave nothing
		// on its line.
		if cols[first]-col < 2 {
			grid[rows[first]][col] = ','
		}
		for i := range t.Children {
			draw(&t.Children[i], col+1)
		}
	}
	draw(tree, 0)

	buf := bufio.NewWriter(w)
	for i, line := range grid {
		s := strings.TrimRight(string(line), " ")
		if i%2 == 0 {
			s += " " + leaves[i/2].Label
		}
		buf.WriteString(s)
		buf.WriteByte('\n')
	}
	return buf.Flush()
}

// drawColumns returns the column of every node, with the deepest node at
// span+1.
func drawColumns(tree *Tree, span float64) map[*Tree]int {
	depths := make(map[*Tree]float64)
	maxDepth := 0.0
	var walk func(t *Tree, depth float64, unit bool)
	walk = func(t *Tree, depth float64, unit bool) {
		depths[t] = depth
		if depth > maxDepth {
			maxDepth = depth
		}
		for i := range t.Children {
			c := &t.Children[i]
			if unit {
				walk(c, depth+1, unit)
			} else {
				walk(c, depth+c.BranchLength(), unit)
			}
		}
	}
	walk(tree, tree.BranchLength(), false)
	if maxDepth == 0 {
		walk(tree, tree.BranchLength(), true)
	}

	perUnit := 0.0
	if maxDepth > 0 {
		perUnit = span / maxDepth
	}
	cols := make(map[*Tree]int, len(depths))
	for t, depth := range depths {
		cols[t] = int(depth*perUnit + 1)
		if cols[t] < 0 {
			cols[t] = 0
		}
	}
	return cols
}

// drawRows puts leaves on even rows and every other node halfway between
// its first and last children.
func drawRows(tree *Tree, leaves []*Tree) map[*Tree]int {
	rows := make(map[*Tree]int, 2*len(leaves))
	for i, leaf := range leaves {
		rows[leaf] = 2 * i
	}
	var walk func(t *Tree)
	walk = func(t *Tree) {
		if t.IsLeaf() {
			return
		}
		for i := range t.Children {
			walk(&t.Children[i])
		}
		rows[t] = (rows[&t.Children[0]] + rows[&t.Children[len(t.Children)-1]]) / 2
	}
	walk(tree)
	return rows
}
