package newick

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestParser(t *testing.T) {
	v := sample("(A,B,(X,Y)C)ROOT;(A,B,C)ROOT;")

	r := NewReader(v)
	trees, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(trees) != 2 {
		t.Fatalf("Expected 2 trees but got %d.", len(trees))
	}

	answers := []string{"A,B,X,Y", "A,B,C"}
	for i := range trees {
		if trees[i].Label != "ROOT" {
			t.Fatalf("Tree %d: expected root label ROOT, got '%s'.",
				i, trees[i].Label)
		}
		got := strings.Join(trees[i].Labels(), ",")
		if got != answers[i] {
			t.Fatalf("Tree %d: expected leaves %s, got %s.",
				i, answers[i], got)
		}
	}
	if trees[0].Children[2].Label != "C" {
		t.Fatalf("Expected internal label C, got '%s'.",
			trees[0].Children[2].Label)
	}
}

func TestParseLengths(t *testing.T) {
	tree, err := Parse("('a b':1e-05,'it''s':2.5E+3,(C:0.3,D:4):0.5)'r':7;")
	if err != nil {
		t.Fatal(err)
	}
	if tree.Label != "r" || tree.Length == nil || *tree.Length != 7 {
		t.Fatalf("Bad root: %s", tree)
	}
	tests := []struct {
		label  string
		length float64
	}{
		{"a b", 1e-05},
		{"it's", 2500},
		{"C", 0.3},
		{"D", 4},
	}
	leaves := tree.Leaves()
	if len(leaves) != len(tests) {
		t.Fatalf("Expected %d leaves but got %d.", len(tests), len(leaves))
	}
	for i, test := range tests {
		if leaves[i].Label != test.label {
			t.Fatalf("Expected label '%s' but got '%s'.",
				test.label, leaves[i].Label)
		}
		if !scalar.EqualWithinAbs(leaves[i].BranchLength(), test.length, 1e-12) {
			t.Fatalf("Expected length %f for '%s' but got %f.",
				test.length, test.label, leaves[i].BranchLength())
		}
	}
	if tree.Children[2].BranchLength() != 0.5 {
		t.Fatalf("Expected internal length 0.5, got %f.",
			tree.Children[2].BranchLength())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"(A:1e,B);",
		"(A,B",
		"(A B);",
		"((A,B);",
	}
	for _, test := range tests {
		if _, err := Parse(test); err == nil {
			t.Fatalf("Expected an error for '%s'.", test)
		}
	}
}

func TestPreOrder(t *testing.T) {
	tree, err := Parse("((A,B)X,(C,D)Y)R;")
	if err != nil {
		t.Fatal(err)
	}
	var visited []string
	tree.PreOrder(func(n *Tree, depth int) bool {
		visited = append(visited, n.Label)
		return n.Label != "Y"
	})
	if got := strings.Join(visited, ","); got != "R,X,A,B,Y" {
		t.Fatalf("Expected pre-order R,X,A,B,Y but got %s", got)
	}
}

func TestRootDistances(t *testing.T) {
	tree, err := Parse("((A:1,B:2):3,C:4);")
	if err != nil {
		t.Fatal(err)
	}
	dists := tree.RootDistances()
	answers := map[string]float64{"A": 4, "B": 5, "C": 4}
	for label, answer := range answers {
		if dists[label] != answer {
			t.Fatalf("Expected %s at %f but got %f.",
				label, answer, dists[label])
		}
	}
	if tree.TotalLength() != 10 {
		t.Fatalf("Expected total length 10 but got %f.", tree.TotalLength())
	}
}
