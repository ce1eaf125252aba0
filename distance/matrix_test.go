package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/TuftsBCB/phylo/msa"
	"github.com/TuftsBCB/seq"
)

func makeMSA(pairs ...string) seq.MSA {
	aln := seq.NewMSA()
	for i := 0; i+1 < len(pairs); i += 2 {
		aln.Entries = append(aln.Entries,
			seq.NewSequenceString(pairs[i], pairs[i+1]))
	}
	if len(aln.Entries) > 0 {
		aln.SetLen(aln.Entries[0].Len())
	}
	return aln
}

func TestScenario(t *testing.T) {
	m, err := Compute(makeMSA("A", "ACGT", "B", "ACGA", "C", "TCGT"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		a, b string
		d    float64
	}{
		{"A", "B", 0.25},
		{"A", "C", 0.25},
		{"B", "C", 0.5},
		{"B", "B", 0},
	}
	for _, test := range tests {
		d, ok := m.Dist(test.a, test.b)
		if !ok {
			t.Fatalf("No distance between %s and %s.", test.a, test.b)
		}
		if d != test.d {
			t.Fatalf("Expected distance %f between %s and %s, but got %f.",
				test.d, test.a, test.b, d)
		}
	}
	if _, ok := m.Dist("A", "Z"); ok {
		t.Fatalf("Expected no distance for an unknown name.")
	}
}

func TestGaps(t *testing.T) {
	m, err := Compute(makeMSA("x", "AC--", "y", "A.-G", "z", "ac--"))
	if err != nil {
		t.Fatal(err)
	}
	// Only the second and fourth columns differ.
	if d := m.At(0, 1); d != 0.5 {
		t.Fatalf("Expected 0.5 but got %f.", d)
	}
	if d := m.At(0, 2); d != 0 {
		t.Fatalf("Expected case to be ignored, but got %f.", d)
	}

	// Unknown characters are gaps, so only the first column differs.
	m, err = Compute(makeMSA("x", "A-?*", "y", "C?-*"))
	if err != nil {
		t.Fatal(err)
	}
	if d := m.At(0, 1); d != 0.25 {
		t.Fatalf("Expected 0.25 but got %f.", d)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		r, want seq.Residue
	}{
		{'a', 'A'},
		{'Z', 'Z'},
		{'*', '*'},
		{'-', '-'},
		{'.', '-'},
		{'?', '-'},
		{'1', '-'},
	}
	for _, test := range tests {
		if got := Normalize(test.r); got != test.want {
			t.Fatalf("Expected '%c' for '%c' but got '%c'.",
				test.want, test.r, got)
		}
	}
}

func TestSymmetricRange(t *testing.T) {
	m, err := Compute(makeMSA(
		"s1", "ACGTACGTAC",
		"s2", "ACGTTCGTAA",
		"s3", "---TACGTAC",
		"s4", "TGCATGCATG",
		"s5", "ACGTACGTAC",
	))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < m.Len(); i++ {
		if m.At(i, i) != 0 {
			t.Fatalf("Diagonal at %d is %f.", i, m.At(i, i))
		}
		for j := 0; j < m.Len(); j++ {
			d := m.At(i, j)
			if d != m.At(j, i) {
				t.Fatalf("Matrix is not symmetric at (%d, %d).", i, j)
			}
			if d < 0 || d > 1 {
				t.Fatalf("Distance %f at (%d, %d) is out of range.", d, i, j)
			}
		}
	}
	if d := m.At(0, 3); d != 1 {
		t.Fatalf("Expected distance 1 between s1 and s4 but got %f.", d)
	}
}

func TestWorkers(t *testing.T) {
	var pairs []string
	residues := "ACGT-"
	for i := 0; i < 17; i++ {
		var s strings.Builder
		for k := 0; k < 40; k++ {
			s.WriteByte(residues[(i*k+k/3+i)%len(residues)])
		}
		pairs = append(pairs, fmt.Sprintf("seq%d", i), s.String())
	}
	aln := makeMSA(pairs...)

	seqm, err := Compute(aln)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{0, 2, 4, 32} {
		parm, err := ComputeWorkers(aln, workers)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < seqm.Len(); i++ {
			for j := 0; j < seqm.Len(); j++ {
				if seqm.At(i, j) != parm.At(i, j) {
					t.Fatalf("%d workers: (%d, %d) is %f, but %f "+
						"sequentially.", workers, i, j,
						parm.At(i, j), seqm.At(i, j))
				}
			}
		}
	}
}

func TestErrors(t *testing.T) {
	_, err := Compute(makeMSA("A", "ACGT"))
	if !errors.Is(err, ErrEmptyAlignment) {
		t.Fatalf("Expected an empty alignment error but got %v.", err)
	}
	_, err = ComputeWorkers(seq.NewMSA(), 4)
	if !errors.Is(err, ErrEmptyAlignment) {
		t.Fatalf("Expected an empty alignment error but got %v.", err)
	}

	aln := makeMSA("A", "ACGT", "B", "ACG")
	for _, workers := range []int{1, 4} {
		_, err = ComputeWorkers(aln, workers)
		var ferr *msa.FormatError
		if !errors.As(err, &ferr) {
			t.Fatalf("Expected a format error but got %v.", err)
		}
		if ferr.Name != "B" {
			t.Fatalf("Expected the error to name 'B', got '%s'.", ferr.Name)
		}
	}
}

func TestNew(t *testing.T) {
	m, err := New([]string{"a", "b"}, [][]float64{{0, 2}, {2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := m.Dist("b", "a"); d != 2 {
		t.Fatalf("Expected 2 but got %f.", d)
	}
	if i, ok := m.Index("b"); !ok || i != 1 {
		t.Fatalf("Expected b in row 1, got %d (%v).", i, ok)
	}
	if _, ok := m.Index("c"); ok {
		t.Fatalf("Expected no row for c.")
	}
	if sym := m.Matrix(); sym.SymmetricDim() != 2 || sym.At(0, 1) != 2 {
		t.Fatalf("Unexpected matrix view %v.", sym)
	}

	bad := [][][]float64{
		{{0, 1}, {2, 0}},
		{{1, 1}, {1, 0}},
		{{0, -1}, {-1, 0}},
		{{0, math.Inf(1)}, {math.Inf(1), 0}},
		{{0, math.NaN()}, {math.NaN(), 0}},
		{{0, 1}},
	}
	for _, rows := range bad {
		if _, err := New([]string{"a", "b"}, rows); err == nil {
			t.Fatalf("Expected an error for %v.", rows)
		}
	}
	if _, err := New([]string{"a", "a"}, [][]float64{{0, 1}, {1, 0}}); err == nil {
		t.Fatalf("Expected an error for duplicate names.")
	}
}

func TestInsufficient(t *testing.T) {
	err := Insufficient(3, 2)
	if !errors.Is(err, ErrInsufficientSequences) {
		t.Fatalf("Expected errors.Is to match, got %v.", err)
	}
	var ierr *InsufficientError
	if !errors.As(err, &ierr) || ierr.Need != 3 || ierr.Have != 2 {
		t.Fatalf("Bad insufficient error: %v", err)
	}
	if errors.Is(err, ErrEmptyAlignment) {
		t.Fatalf("Insufficient sequences is not an empty alignment.")
	}
}

func TestAlphabet(t *testing.T) {
	if a := Alphabet(makeMSA("A", "ACGTN-", "B", "acgt.n")); !a.Equals(seq.AlphaDNA) {
		t.Fatalf("Expected a DNA alphabet, got %s.", a)
	}
	if a := Alphabet(makeMSA("A", "MKVL", "B", "ACGT")); a.Equals(seq.AlphaDNA) {
		t.Fatalf("Expected a protein alphabet.")
	}
}

func BenchmarkCompute(b *testing.B) {
	var pairs []string
	for i := 0; i < 50; i++ {
		pairs = append(pairs, fmt.Sprintf("seq%d", i),
			strings.Repeat("ACGT"[i%4:]+"ACGT"[:i%4], 100))
	}
	aln := makeMSA(pairs...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compute(aln); err != nil {
			b.Fatal(err)
		}
	}
}
