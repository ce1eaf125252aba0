// Package distance computes pairwise distances between the sequences of a
// multiple sequence alignment.
//
// The distance between two aligned sequences is the fraction of columns in
// which they differ (the p-distance). A gap against a residue is a
// difference, while a gap against a gap is not. Every column counts toward
// the length, so all distances of one alignment share a denominator.
package distance

import (
	"bytes"
	"fmt"
	"math"

	"github.com/TuftsBCB/phylo/msa"
	"github.com/TuftsBCB/seq"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a symmetric matrix of distances between named sequences. The
// diagonal is always zero. A Matrix is never modified after it is created.
type Matrix struct {
	names []string
	index map[string]int
	m     *mat.SymDense
}

// New creates a distance matrix from explicit values. rows must be a square,
// symmetric matrix with a zero diagonal and no negative or NaN values, with
// one row for each name. Names must be unique.
func New(names []string, rows [][]float64) (*Matrix, error) {
	n := len(names)
	if len(rows) != n {
		return nil, fmt.Errorf("Expected %d rows but got %d.", n, len(rows))
	}
	m := newMatrix(names)
	if len(m.index) != n {
		return nil, fmt.Errorf("Names of a distance matrix must be unique.")
	}
	for i := range rows {
		if len(rows[i]) != n {
			return nil, fmt.Errorf("Row %d has %d columns, but %d are "+
				"expected.", i, len(rows[i]), n)
		}
	}
	for i := 0; i < n; i++ {
		if rows[i][i] != 0 {
			return nil, Evaluationf("The distance between '%s' and itself "+
				"is %f.", names[i], rows[i][i])
		}
		for j := i + 1; j < n; j++ {
			d := rows[i][j]
			if d != rows[j][i] {
				return nil, Evaluationf("Distances between '%s' and '%s' "+
					"are not symmetric: %f != %f.",
					names[i], names[j], d, rows[j][i])
			}
			if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
				return nil, Evaluationf("Invalid distance %f between '%s' "+
					"and '%s'.", d, names[i], names[j])
			}
			m.m.SetSym(i, j, d)
		}
	}
	return m, nil
}

func newMatrix(names []string) *Matrix {
	m := &Matrix{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		m.index[name] = i
	}
	if len(names) > 0 {
		m.m = mat.NewSymDense(len(names), nil)
	}
	return m
}

// Len returns the number of sequences in the matrix.
func (m *Matrix) Len() int {
	return len(m.names)
}

// Names returns a copy of the sequence names, in alignment order.
func (m *Matrix) Names() []string {
	return append([]string(nil), m.names...)
}

// Name returns the name of the i'th sequence.
func (m *Matrix) Name(i int) string {
	return m.names[i]
}

// Index returns the row of the sequence with the given name.
func (m *Matrix) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// At returns the distance between the i'th and j'th sequences.
func (m *Matrix) At(i, j int) float64 {
	return m.m.At(i, j)
}

// Dist returns the distance between two sequences by name. If either name
// is not in the matrix, false is returned.
func (m *Matrix) Dist(a, b string) (float64, bool) {
	i, ok1 := m.Index(a)
	j, ok2 := m.Index(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	return m.m.At(i, j), true
}

// Matrix returns a read-only view of the distances.
func (m *Matrix) Matrix() mat.Symmetric {
	return m.m
}

// String returns the matrix as a table with a header row of names and
// distances written to four decimal places.
func (m *Matrix) String() string {
	buf := new(bytes.Buffer)
	for _, name := range m.names {
		fmt.Fprintf(buf, "\t%s", name)
	}
	buf.WriteByte('\n')
	for i, name := range m.names {
		buf.WriteString(name)
		for j := range m.names {
			fmt.Fprintf(buf, "\t%0.4f", m.At(i, j))
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Compute returns the matrix of pairwise distances between all sequences in
// the alignment.
//
// The alignment is checked with msa.Validate before any distance is
// computed, so a *msa.FormatError is returned if sequences differ in length.
// ErrEmptyAlignment is returned if there are fewer than two sequences.
func Compute(aln seq.MSA) (*Matrix, error) {
	if err := check(aln); err != nil {
		return nil, err
	}
	m := newMatrix(msa.Names(aln))
	for i := range aln.Entries {
		if err := m.fillRow(aln, i); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ComputeWorkers is the same as Compute, except rows of the matrix are
// computed by the given number of goroutines. The result is identical to
// the result of Compute.
func ComputeWorkers(aln seq.MSA, workers int) (*Matrix, error) {
	if workers <= 1 {
		return Compute(aln)
	}
	if err := check(aln); err != nil {
		return nil, err
	}
	m := newMatrix(msa.Names(aln))

	n := len(aln.Entries)
	rows := make(chan int, n)
	results := make(chan rowErr, n)
	for i := 0; i < workers; i++ {
		go rowWorker(aln, m, rows, results)
	}
	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)

	// Report the error of the lowest row, so that the error doesn't depend
	// on scheduling.
	var first *rowErr
	for i := 0; i < n; i++ {
		r := <-results
		if r.err != nil && (first == nil || r.row < first.row) {
			first = &r
		}
	}
	if first != nil {
		return nil, first.err
	}
	return m, nil
}

// rowErr values are sent on channels by workers. err is nil when row was
// computed successfully.
type rowErr struct {
	row int
	err error
}

// rowWorker fills rows of the matrix until the rows channel is closed.
// Each row writes only to its own cells, so no locking is needed.
func rowWorker(aln seq.MSA, m *Matrix, rows chan int, results chan rowErr) {
	for row := range rows {
		results <- rowErr{row, m.fillRow(aln, row)}
	}
}

// fillRow computes the distances between sequence i and every sequence
// after it.
func (m *Matrix) fillRow(aln seq.MSA, i int) error {
	a := aln.Entries[i]
	for j := i + 1; j < len(aln.Entries); j++ {
		b := aln.Entries[j]
		d := Hamming(a.Residues, b.Residues)
		if math.IsNaN(d) || d < 0 || d > 1 {
			return Evaluationf("Distance between '%s' and '%s' is %f, "+
				"which is not in [0, 1].", a.Name, b.Name, d)
		}
		m.m.SetSym(i, j, d)
	}
	return nil
}

func check(aln seq.MSA) error {
	if len(aln.Entries) == 0 {
		return emptyf(0)
	}
	if err := msa.Validate(aln); err != nil {
		return err
	}
	if len(aln.Entries) < 2 {
		return emptyf(len(aln.Entries))
	}
	return nil
}

// Hamming returns the fraction of columns in which two aligned residue
// slices differ. Both slices must have the same length. Residues are
// compared without regard to case, and every kind of gap is the same.
func Hamming(a, b []seq.Residue) float64 {
	if len(a) == 0 {
		return 0
	}
	diff := 0
	for k := range a {
		if Differ(a[k], b[k]) {
			diff++
		}
	}
	return float64(diff) / float64(len(a))
}

// Differ returns true if two aligned residues are different characters.
// Two gaps never differ.
func Differ(a, b seq.Residue) bool {
	a, b = Normalize(a), Normalize(b)
	return a != b
}

// Normalize upper-cases a residue. Anything that isn't a letter or '*' is
// a gap and becomes '-'.
func Normalize(r seq.Residue) seq.Residue {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 'A'
	case r >= 'A' && r <= 'Z', r == '*':
		return r
	}
	return '-'
}

// Alphabet returns seq.AlphaDNA if every residue in the alignment is part
// of it, and seq.AlphaBlosum62 otherwise.
func Alphabet(aln seq.MSA) seq.Alphabet {
	index := make(map[seq.Residue]bool, len(seq.AlphaDNA))
	for _, r := range seq.AlphaDNA {
		index[r] = true
	}
	for _, s := range aln.Entries {
		for _, r := range s.Residues {
			if !index[Normalize(r)] {
				return seq.AlphaBlosum62
			}
		}
	}
	return seq.AlphaDNA
}
