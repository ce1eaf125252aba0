package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/TuftsBCB/seq"
)

// A Reader reads sequences from FASTA encoded input.
//
// If TrustSequences is true, then sequence data will not be checked to make
// sure that it conforms to the NCBI format. (See the Read method for details.)
// By default, TrustSequences is false.
type Reader struct {
	// When set to true, the sequences will not be checked for errors.
	// If you trust the data, this may improve performance.
	// This may be set at any time.
	TrustSequences bool
	buf            *bufio.Reader
	line           int
	nextHeader     []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		TrustSequences: false,
		buf:            bufio.NewReader(r),
		line:           1,
		nextHeader:     nil,
	}
}

// Line returns the line number that the reader is currently positioned at.
// It is useful for reporting errors found by callers after a sequence has
// been read.
func (r *Reader) Line() int {
	return r.line
}

// ReadAll will read all sequences in the FASTA input and return them as a
// slice. If an error is encountered, processing is stopped, and the error is
// returned.
func (r *Reader) ReadAll() ([]seq.Sequence, error) {
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

// Read will read the next sequence in the FASTA input.
// The format roughly corresponds to that described by NCBI:
// http://blast.ncbi.nlm.nih.gov/blastcgihelp.shtml
//
// In particular, the only characters allowed in the sequence section
// are a-z, A-Z, * and -. Any other character will result in an error.
//
// All lower case letters in the sequence section are translated to upper case.
//
// Blank lines, leading and trailing whitespace are always ignored (regardless
// of where they are).
//
// No distinction is made between DNA/RNA or amino acid sequences.
//
// It is NOT safe to call this function from multiple goroutines.
func (r *Reader) Read() (seq.Sequence, error) {
	return r.read(TranslateNormal)
}

func (r *Reader) read(translate Translator) (seq.Sequence, error) {
	s, err := r.ReadSequence(translate)
	if !s.IsNull() {
		return s, nil
	}
	if err == io.EOF {
		return seq.Sequence{}, err
	}
	if err != nil {
		return seq.Sequence{}, fmt.Errorf("Error on line %d: %s", r.line, err)
	}

	// A '>' with no name and no residues before the next header.
	return seq.Sequence{}, fmt.Errorf("Error on line %d: Empty FASTA entry.",
		r.line-1)
}

// ReadSequence is exported for use in other packages that read FASTA-like
// files.
//
// The 'translate' function is used when sequences are checked for valid
// characters.
//
// If you're just reading FASTA files, this method SHOULD NOT be used.
func (r *Reader) ReadSequence(translate Translator) (seq.Sequence, error) {
	s := seq.Sequence{}
	seenHeader := false

	// Before entering the main loop, we have to check to see if we've
	// already read this entry's header.
	if r.nextHeader != nil {
		s.Name = trimHeader(r.nextHeader)
		r.nextHeader = nil
		seenHeader = true
	}
	for {
		line, err := r.buf.ReadBytes('\n')
		if err == io.EOF {
			if len(line) == 0 {
				return s, io.EOF
			}
		} else if err != nil {
			return seq.Sequence{}, err
		}
		line = bytes.TrimSpace(line)

		// If it's empty, increment the counter and skip ahead.
		if len(line) == 0 {
			r.line++
			continue
		}

		// If we haven't seen the header yet, this better be it.
		if !seenHeader {
			if line[0] != '>' {
				return seq.Sequence{}, fmt.Errorf("Expected '>', got '%c'.",
					line[0])
			}

			// Trim the '>' and load this line into the header.
			s.Name = trimHeader(line)
			seenHeader = true

			r.line++
			continue
		} else if line[0] == '>' {
			// This means we've begun reading the next entry.
			// So slap this line into 'nextHeader' and return the current one.
			r.nextHeader = line

			r.line++
			return s, nil
		}

		if s.Residues == nil {
			s.Residues = make([]seq.Residue, 0, 50)
		}
		for _, b := range line {
			if r.TrustSequences {
				s.Residues = append(s.Residues, seq.Residue(b))
				continue
			}
			res, ok := translate(b)
			if !ok {
				return seq.Sequence{},
					fmt.Errorf("Invalid character '%c' on line %d.", b, r.line)
			}
			if res > 0 {
				s.Residues = append(s.Residues, res)
			}
		}
		r.line++
	}
}

// A Translator is a function that accepts a single character, checks whether
// it's valid, and optionally maps it to a new residue. A residue of 0 with
// ok set to true means the character is valid but should be skipped.
//
// Translators are ONLY applicable to developers writing their own parsers for
// FASTA-like files. They should not be used to read regular FASTA files.
type Translator func(b byte) (seq.Residue, bool)

// TranslateNormal is the default translator for regular FASTA files.
func TranslateNormal(b byte) (seq.Residue, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return seq.Residue(b - 'a' + 'A'), true
	case b >= 'A' && b <= 'Z':
	case b == '*':
	case b == '-':
	default:
		return 0, false
	}
	return seq.Residue(b), true
}

// TranslateAligned is the translator used for aligned FASTA files. It never
// rejects a character: letters are upper cased, '*' and '-' are kept, blanks
// inside a line are skipped and anything else (including the A2M '.') is
// read as a gap.
func TranslateAligned(b byte) (seq.Residue, bool) {
	switch {
	case b == ' ' || b == '\t':
		return 0, true
	case b < ' ' || b > '~':
		return '-', true
	}
	if r, ok := TranslateNormal(b); ok {
		return r, true
	}
	return '-', true
}

func trimHeader(line []byte) string {
	return string(bytes.TrimSpace(bytes.TrimLeft(line, ">")))
}

// A Writer writes sequences to a FASTA encoded file.
//
// The 'Columns' corresponds to the number of columns at which a sequence is
// wrapped. If it's <= 0, then no wrapping will be used.
//
// The header text is never wrapped.
type Writer struct {
	// The number of columns to wrap a sequence at. By default, this
	// is set to 60. A value <= 0 will result in no wrapping.
	Columns int
	buf     *bufio.Writer
}

// NewWriter creates a new FASTA writer that can write FASTA entries to
// an io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Columns: 60,
		buf:     bufio.NewWriter(w),
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Write writes a single FASTA entry to the underlying io.Writer.
//
// You may need to call Flush in order for the changes to be written.
func (w *Writer) Write(s seq.Sequence) error {
	_, err := w.buf.WriteString(format(s, w.Columns) + "\n")
	return err
}

// WriteAll writes a slice of FASTA entries to the underlying io.Writer, and
// calls Flush.
func (w *Writer) WriteAll(seqs []seq.Sequence) error {
	for _, s := range seqs {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}

// format returns the FASTA string corresponding to s with the residues
// wrapped at the number of columns given.
func format(s seq.Sequence, cols int) string {
	residues := string(s.Bytes())
	if cols <= 0 || len(residues) == 0 {
		return fmt.Sprintf(">%s\n%s", s.Name, residues)
	}

	wrapped := make([]string, 1+((len(residues)-1)/cols))
	for i := range wrapped {
		start := cols * i
		end := start + cols
		if end > len(residues) {
			end = len(residues)
		}
		wrapped[i] = residues[start:end]
	}
	return fmt.Sprintf(">%s\n%s", s.Name, strings.Join(wrapped, "\n"))
}
