/*
Package phylo builds phylogenetic trees from multiple sequence alignments.

Two trees can be built from an alignment. BuildUPGMATree clusters sequences
by average linkage on their pairwise p-distances and returns a rooted,
ultrametric tree with continuous branch lengths. BuildParsimonyTree grows a
tree by stepwise insertion, scoring with Fitch parsimony, and returns a tree
rooted at its midpoint with integer branch lengths that count substitutions.
Serialize writes either tree in Newick format.

Alignments are read with the msa package, and unaligned sequences can be
aligned with the aligner package. The subpackages distance, upgma, parsimony
and newick can be used on their own.

Every function in this package is deterministic: the same alignment always
gives the same trees.
*/
package phylo

import (
	"io"

	"github.com/TuftsBCB/phylo/aligner"
	"github.com/TuftsBCB/phylo/distance"
	"github.com/TuftsBCB/phylo/msa"
	"github.com/TuftsBCB/phylo/newick"
	"github.com/TuftsBCB/phylo/parsimony"
	"github.com/TuftsBCB/phylo/upgma"
	"github.com/TuftsBCB/seq"
)

// Errors returned by this package. Use errors.Is with the sentinel values
// and errors.As with the types.
var (
	ErrEmptyAlignment        = distance.ErrEmptyAlignment
	ErrInsufficientSequences = distance.ErrInsufficientSequences
	ErrAlignerUnavailable    = aligner.ErrUnavailable
)

type (
	// AlignmentFormatError is returned when an alignment is malformed or
	// its sequences have different lengths.
	AlignmentFormatError = msa.FormatError

	// InsufficientSequencesError is returned when a tree builder is given
	// too few sequences.
	InsufficientSequencesError = distance.InsufficientError

	// EvaluationError is returned when a computation produces an
	// impossible value.
	EvaluationError = distance.EvaluationError
)

// ReadAlignment reads an aligned FASTA alignment.
func ReadAlignment(r io.Reader) (seq.MSA, error) {
	return msa.Read(r)
}

// BuildUPGMATree returns the UPGMA tree of the alignment. At least two
// sequences are required.
func BuildUPGMATree(aln seq.MSA) (*newick.Tree, error) {
	if err := check(aln, 2); err != nil {
		return nil, err
	}
	m, err := distance.Compute(aln)
	if err != nil {
		return nil, err
	}
	return upgma.Build(m)
}

// BuildParsimonyTree returns the parsimony tree of the alignment. At least
// three sequences are required.
func BuildParsimonyTree(aln seq.MSA) (*newick.Tree, error) {
	return parsimony.Build(aln)
}

// Serialize returns a tree in Newick format, terminated by ';'.
func Serialize(tree *newick.Tree) string {
	return newick.Serialize(tree)
}

// Analysis is the result of Analyze.
type Analysis struct {
	Distances      *distance.Matrix
	UPGMA          *newick.Tree
	Parsimony      *newick.Tree
	ParsimonyScore int
}

// Analyze builds both trees of an alignment from a single distance matrix,
// which is computed by the number of goroutines given. At least three
// sequences are required. No partial result is returned on error.
func Analyze(aln seq.MSA, workers int) (*Analysis, error) {
	if err := check(aln, 3); err != nil {
		return nil, err
	}
	m, err := distance.ComputeWorkers(aln, workers)
	if err != nil {
		return nil, err
	}
	ut, err := upgma.Build(m)
	if err != nil {
		return nil, err
	}
	pt, err := parsimony.BuildWithMatrix(aln, m)
	if err != nil {
		return nil, err
	}
	score, err := parsimony.Score(pt, aln)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Distances:      m,
		UPGMA:          ut,
		Parsimony:      pt,
		ParsimonyScore: score,
	}, nil
}

// check reports format errors first and then too few sequences.
func check(aln seq.MSA, need int) error {
	if len(aln.Entries) > 0 {
		if err := msa.Validate(aln); err != nil {
			return err
		}
	}
	if len(aln.Entries) < need {
		return distance.Insufficient(need, len(aln.Entries))
	}
	return nil
}
