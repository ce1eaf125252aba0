// Package aligner runs an external multiple sequence alignment program on
// unaligned sequences.
//
// Only MUSCLE is supported. Sequences are written to a FASTA file in a
// temporary directory, the program is run on it and the aligned FASTA it
// writes is read back with msa.ReadFile.
package aligner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/TuftsBCB/phylo/fasta"
	"github.com/TuftsBCB/phylo/msa"
	"github.com/TuftsBCB/seq"
)

// ErrUnavailable is wrapped by every error caused by the aligner itself:
// the program can't be found, it exits with an error, it is cancelled or it
// doesn't write an alignment.
var ErrUnavailable = errors.New("Aligner unavailable")

// Aligner is anything that can turn unaligned sequences into an alignment.
type Aligner interface {
	Align(ctx context.Context, seqs []seq.Sequence) (seq.MSA, error)
}

// DefaultArgs are the arguments given to MUSCLE 3 when Muscle.Args is
// empty. "{in}" and "{out}" are replaced by the input and output file paths.
var DefaultArgs = []string{"-in", "{in}", "-out", "{out}"}

// Muscle runs the MUSCLE program.
type Muscle struct {
	// The program to run. When empty, "muscle" is looked up in PATH.
	Path string

	// Arguments to pass to the program. "{in}" and "{out}" are replaced by
	// the paths of the input and output files. When empty, DefaultArgs is
	// used. MUSCLE 5 needs []string{"-align", "{in}", "-output", "{out}"}.
	Args []string

	// When not nil, the command line and a summary of the result are
	// logged here.
	Logger *log.Logger
}

// Align aligns the sequences given. The alignment has the sequences in the
// same order as seqs, even if the program reorders them.
//
// Fewer than two sequences are returned as they are, without running the
// program. Errors from the program wrap ErrUnavailable. If the program writes
// something that can't be read as an alignment, a *msa.FormatError is
// returned.
func (m Muscle) Align(ctx context.Context, seqs []seq.Sequence) (seq.MSA, error) {
	if len(seqs) < 2 {
		return msa.FromSequences(seqs)
	}

	dir, err := os.MkdirTemp("", "simplephylo-")
	if err != nil {
		return seq.MSA{}, err
	}
	defer os.RemoveAll(dir)

	in, out := filepath.Join(dir, "input.fasta"), filepath.Join(dir, "aligned.fasta")
	if err := writeInput(in, seqs); err != nil {
		return seq.MSA{}, err
	}

	path := m.Path
	if path == "" {
		path = "muscle"
	}
	args := m.Args
	if len(args) == 0 {
		args = DefaultArgs
	}
	argv := make([]string, len(args))
	for i, arg := range args {
		arg = strings.Replace(arg, "{in}", in, -1)
		argv[i] = strings.Replace(arg, "{out}", out, -1)
	}

	m.logf("Running %s %s", path, strings.Join(argv, " "))
	stderr := new(bytes.Buffer)
	cmd := exec.CommandContext(ctx, path, argv...)
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return seq.MSA{}, fmt.Errorf("%w: %s: %w", ErrUnavailable, path,
				ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return seq.MSA{}, fmt.Errorf("%w: %s: %w: %s", ErrUnavailable,
				path, err, msg)
		}
		return seq.MSA{}, fmt.Errorf("%w: %s: %w", ErrUnavailable, path, err)
	}

	if _, err := os.Stat(out); err != nil {
		return seq.MSA{}, fmt.Errorf("%w: %s did not write an alignment: %w",
			ErrUnavailable, path, err)
	}
	aln, err := msa.ReadFile(out)
	if err != nil {
		return seq.MSA{}, err
	}
	aln, err = reorder(aln, seqs)
	if err != nil {
		return seq.MSA{}, err
	}
	m.logf("Aligned %d sequences to %d columns.", len(aln.Entries), aln.Len())
	return aln, nil
}

func (m Muscle) logf(format string, v ...interface{}) {
	if m.Logger != nil {
		m.Logger.Printf(format, v...)
	}
}

func writeInput(path string, seqs []seq.Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fasta.NewWriter(f).WriteAll(seqs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// reorder puts the aligned sequences in the order of the input sequences.
// Every input sequence must be in the alignment exactly once.
func reorder(aln seq.MSA, seqs []seq.Sequence) (seq.MSA, error) {
	rows := make(map[string]int, len(aln.Entries))
	for i, s := range aln.Entries {
		rows[s.Name] = i
	}
	if len(aln.Entries) != len(seqs) {
		return seq.MSA{}, &msa.FormatError{
			Msg: fmt.Sprintf("Expected %d aligned sequences but got %d.",
				len(seqs), len(aln.Entries)),
		}
	}
	ordered := make([]seq.Sequence, len(seqs))
	for i, s := range seqs {
		row, ok := rows[s.Name]
		if !ok {
			return seq.MSA{}, &msa.FormatError{
				Name: s.Name,
				Msg: fmt.Sprintf("Sequence '%s' is missing from the "+
					"alignment.", s.Name),
			}
		}
		ordered[i] = aln.GetFasta(row)
	}
	return msa.FromSequences(ordered)
}
