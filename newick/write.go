package newick

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// A Writer writes trees in Newick format, one tree per line.
type Writer struct {
	// The number of digits after the decimal point used for branch lengths.
	// By default, this is -1, which uses the smallest number of digits
	// necessary to represent each length exactly. (So integral lengths are
	// written without a decimal point.)
	Precision int
	buf       *bufio.Writer
}

// NewWriter creates a new Newick writer that writes trees to an io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Precision: -1,
		buf:       bufio.NewWriter(w),
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// WriteTree writes a single tree, terminated by ';' and a new line.
//
// You may need to call Flush in order for the changes to be written.
func (w *Writer) WriteTree(tree *Tree) error {
	_, err := w.buf.WriteString(format(tree, w.Precision) + "\n")
	return err
}

// WriteAll writes each tree given and calls Flush.
func (w *Writer) WriteAll(trees []*Tree) error {
	for _, tree := range trees {
		if err := w.WriteTree(tree); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Newick returns the tree in Newick format, terminated by ';'. Branch lengths
// are written with the default precision of a Writer.
func (tree *Tree) Newick() string {
	return format(tree, -1)
}

// Serialize is the same as tree.Newick().
func Serialize(tree *Tree) string {
	return tree.Newick()
}

func format(tree *Tree, prec int) string {
	var b strings.Builder
	writeNode(&b, tree, prec)
	b.WriteByte(terminal)
	return b.String()
}

func writeNode(b *strings.Builder, t *Tree, prec int) {
	if len(t.Children) > 0 {
		b.WriteByte(descStart)
		for i := range t.Children {
			if i > 0 {
				b.WriteByte(descDelimiter)
			}
			writeNode(b, &t.Children[i], prec)
		}
		b.WriteByte(descEnd)
	}
	b.WriteString(quoteLabel(t.Label))
	if t.Length != nil {
		b.WriteByte(lengthStart)
		b.WriteString(strconv.FormatFloat(*t.Length, 'f', prec, 64))
	}
}

// quoteLabel returns the label quoted if it contains any characters that
// may not appear in an unquoted label.
func quoteLabel(label string) string {
	if !strings.ContainsAny(label, unquoteBanned+"\n\r\t") {
		return label
	}
	return "'" + strings.Replace(label, "'", "''", -1) + "'"
}
