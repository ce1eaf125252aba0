package msa

import (
	"bytes"
	"io"
	"os"

	"github.com/TuftsBCB/phylo/fasta"
	"github.com/TuftsBCB/seq"
)

// Read will read a single MSA from aligned FASTA input. Sequences are read
// until io.EOF.
//
// Every error is a *FormatError. In particular, an error is returned if no
// sequences are found, if any two sequences have different lengths or if a
// sequence name is duplicated. Residues outside of the alphabet are read as
// gaps rather than rejected.
func Read(reader io.Reader) (seq.MSA, error) {
	r := fasta.NewAlignedReader(reader)
	msa := seq.NewMSA()
	for {
		s, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return seq.MSA{}, formatErrorf(r.Line(), "", "%s", err)
		}
		msa.AddFasta(s)
	}
	if len(msa.Entries) == 0 {
		return seq.MSA{}, formatErrorf(0, "", "No sequences found.")
	}
	return msa, nil
}

// ReadFile reads an MSA from the file at the path given. The format is
// detected from the first non-blank line: Stockholm files start with
// '# STOCKHOLM' and everything else is read as aligned FASTA.
func ReadFile(path string) (seq.MSA, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return seq.MSA{}, err
	}
	first := bytes.TrimSpace(bs)
	if i := bytes.IndexByte(first, '\n'); i > -1 {
		first = first[:i]
	}
	if isStockholmHeader(first) {
		return ReadStockholm(bytes.NewReader(bs))
	}
	return Read(bytes.NewReader(bs))
}

// Validate checks that an MSA built by hand satisfies the same invariants
// that Read guarantees. It returns a *FormatError if it doesn't.
func Validate(msa seq.MSA) error {
	if len(msa.Entries) == 0 {
		return formatErrorf(0, "", "No sequences found.")
	}
	names := make(map[string]bool, len(msa.Entries))
	length := msa.Entries[0].Len()
	for _, s := range msa.Entries {
		switch {
		case s.Len() == 0:
			return formatErrorf(0, s.Name,
				"Sequence '%s' has no residues.", s.Name)
		case s.Len() != length:
			return formatErrorf(0, s.Name,
				"Sequence '%s' has length %d, but other sequences have "+
					"length %d.", s.Name, s.Len(), length)
		case names[s.Name]:
			return formatErrorf(0, s.Name,
				"Sequence name '%s' is used more than once.", s.Name)
		}
		names[s.Name] = true
	}
	return nil
}

// Names returns the names of the sequences in the MSA, in order.
func Names(msa seq.MSA) []string {
	names := make([]string, len(msa.Entries))
	for i, s := range msa.Entries {
		names[i] = s.Name
	}
	return names
}

// FromSequences builds an MSA from aligned sequences, checking it with
// Validate. The sequences are copied.
func FromSequences(seqs []seq.Sequence) (seq.MSA, error) {
	msa := seq.NewMSA()
	for _, s := range seqs {
		msa.Entries = append(msa.Entries, s.Copy())
	}
	if err := Validate(msa); err != nil {
		return seq.MSA{}, err
	}
	msa.SetLen(msa.Entries[0].Len())
	return msa, nil
}

// WriteFasta writes a multiple sequence alignment to the output in aligned
// FASTA format.
func WriteFasta(w io.Writer, msa seq.MSA) error {
	fw := fasta.NewAlignedWriter(w)
	for row := range msa.Entries {
		if err := fw.Write(msa.GetFasta(row)); err != nil {
			return err
		}
	}
	return fw.Flush()
}
