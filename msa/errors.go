package msa

import (
	"fmt"
)

// FormatError is returned whenever an alignment cannot be read: the input
// is syntactically malformed, it contains no sequences, two sequences have
// different lengths or a sequence name is used twice.
//
// Line is the line the reader had reached when the problem was found. It is
// 0 when the problem is not tied to the input text (e.g., an empty
// alignment or an MSA checked with Validate).
type FormatError struct {
	Line int
	Name string
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Alignment format error: %s", e.Msg)
}

func formatErrorf(line int, name string, format string,
	v ...interface{}) *FormatError {
	return &FormatError{
		Line: line,
		Name: name,
		Msg:  fmt.Sprintf(format, v...),
	}
}
