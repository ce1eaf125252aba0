package fasta

import (
	"fmt"
	"io"

	"github.com/TuftsBCB/seq"
)

type AlignedReader struct {
	// See the exported fields of Reader for options.
	*Reader
	seqLen int // set after the first read
	names  map[string]bool
}

func NewAlignedReader(r io.Reader) *AlignedReader {
	return &AlignedReader{
		Reader: NewReader(r),
		seqLen: -1,
		names:  make(map[string]bool, 16),
	}
}

// ReadAll will read all sequences in the aligned FASTA input and return them
// as a slice.
// If an error is encountered, processing is stopped, and the error is
// returned.
// All sequences have the same length, otherwise an error occurs.
func (r *AlignedReader) ReadAll() ([]seq.Sequence, error) {
	seqs := make([]seq.Sequence, 0, 100)
	for {
		s, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, s)
	}
	return seqs, nil
}

// Read will read the next sequence in the aligned FASTA input.
//
// The aligned format follows immediately from the format of a regular FASTA
// file: all sequences must be the same length, '-' indicate gaps, and the
// n'th letter of any sequence is the n'th column in the alignment. Unlike
// Read on a plain Reader, characters outside of the residue alphabet are not
// errors: they are read as gaps (see TranslateAligned).
//
// Every sequence must have a unique name and at least one residue.
func (r *AlignedReader) Read() (seq.Sequence, error) {
	s, err := r.read(TranslateAligned)
	if err != nil {
		return seq.Sequence{}, err
	}
	switch {
	case s.Len() == 0:
		return seq.Sequence{},
			fmt.Errorf("Sequence '%s' has no residues.", s.Name)
	case r.names[s.Name]:
		return seq.Sequence{},
			fmt.Errorf("Sequence name '%s' is used more than once.", s.Name)
	case r.seqLen == -1:
		r.seqLen = s.Len()
	case r.seqLen != s.Len():
		return seq.Sequence{},
			fmt.Errorf("Sequence '%s' has length %d, but other "+
				"sequences have length %d.", s.Name, s.Len(), r.seqLen)
	}
	r.names[s.Name] = true
	return s, nil
}

// An AlignedWriter writes sequences to an aligned FASTA encoded file.
//
// See the exported fields of Writer for options that can be set.
type AlignedWriter struct {
	*Writer
	seqLen int
}

// NewAlignedWriter creates a new aligned FASTA writer that can write FASTA
// entries to an io.Writer.
func NewAlignedWriter(w io.Writer) *AlignedWriter {
	return &AlignedWriter{
		Writer: NewWriter(w),
		seqLen: -1,
	}
}

// Write writes a single aligned sequence to the underlying io.Writer.
//
// An error is returned if the length of the sequence is not the same length
// as other sequences that have already been written.
//
// You may need to call Flush in order for the changes to be written.
func (w *AlignedWriter) Write(s seq.Sequence) error {
	if w.seqLen == -1 {
		w.seqLen = s.Len()
	} else if w.seqLen != s.Len() {
		return fmt.Errorf("Sequence '%s' has length %d, but other sequences "+
			"have length %d.", s.Name, s.Len(), w.seqLen)
	}
	return w.Writer.Write(s)
}

// WriteAll writes a slice of aligned sequences to the underlying io.Writer,
// and calls Flush.
func (w *AlignedWriter) WriteAll(seqs []seq.Sequence) error {
	for _, s := range seqs {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}
