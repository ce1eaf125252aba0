package msa

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/TuftsBCB/phylo/fasta"
	"github.com/TuftsBCB/seq"
)

// ReadStockholm reads an MSA from a Stockholm formatted file. Note that
// features are completely ignored. This reader only checks for the Stockholm
// header (and version), and then slurps up the sequence data into an MSA.
//
// Sequences may be split over several blocks, in which case the residues
// for a name are concatenated in the order they appear. Residues are read
// with the same forgiving rules as aligned FASTA. Every error is a
// *FormatError.
func ReadStockholm(r io.Reader) (seq.MSA, error) {
	var order []string
	residues := make(map[string][]seq.Residue)

	scanner := bufio.NewScanner(r)
	lineno := 0
	if scanner.Scan() {
		lineno++
		if !isStockholmHeader(scanner.Bytes()) {
			return seq.MSA{}, formatErrorf(lineno, "",
				"First line does not contain 'STOCKHOLM 1.0'.")
		}
	}
	for scanner.Scan() {
		lineno++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if bytes.HasPrefix(line, []byte("//")) { // end of alignment
			break
		}

		pieces := bytes.Fields(line)
		if len(pieces) < 2 {
			return seq.MSA{}, formatErrorf(lineno, string(pieces[0]),
				"Sequence '%s' has no residues.", pieces[0])
		}
		name := string(concat(pieces[0 : len(pieces)-1]))
		if _, ok := residues[name]; !ok {
			order = append(order, name)
		}
		residues[name] = append(residues[name],
			asResidues(pieces[len(pieces)-1])...)
	}
	if err := scanner.Err(); err != nil {
		return seq.MSA{}, formatErrorf(lineno, "", "%s", err)
	}

	seqs := make([]seq.Sequence, len(order))
	for i, name := range order {
		seqs[i] = seq.Sequence{Name: name, Residues: residues[name]}
	}
	return FromSequences(seqs)
}

// WriteStockholm writes the given MSA to the writer in the Stockholm format.
// This does not write any features. It only creates a minimal valid Stockholm
// file with the header (and version) along with the sequences (names and
// residues).
func WriteStockholm(w io.Writer, msa seq.MSA) error {
	var err error
	pf := func(format string, v ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, v...)
	}
	pf("# STOCKHOLM 1.0\n")
	for row := 0; row < len(msa.Entries) && err == nil; row++ {
		s := msa.GetFasta(row)
		pf("%s %s\n", s.Name, s.Bytes())
	}
	pf("//\n")
	return err
}

func isStockholmHeader(line []byte) bool {
	first := bytes.ToLower(bytes.Trim(line, " \t\r#"))
	return bytes.Equal([]byte("stockholm 1.0"), first)
}

func asResidues(brs []byte) []seq.Residue {
	rs := make([]seq.Residue, 0, len(brs))
	for _, b := range brs {
		if r, _ := fasta.TranslateAligned(b); r > 0 {
			rs = append(rs, r)
		}
	}
	return rs
}

func concat(bs [][]byte) []byte {
	var ret []byte
	for _, b := range bs {
		ret = append(ret, b...)
	}
	return ret
}
