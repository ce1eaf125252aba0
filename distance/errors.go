package distance

import (
	"errors"
	"fmt"
)

// ErrEmptyAlignment is returned when an alignment has fewer than two
// sequences, so that no pairwise distance can be defined.
var ErrEmptyAlignment = errors.New("Empty alignment")

// ErrInsufficientSequences is returned by tree builders when they are given
// fewer sequences than they need. It is always wrapped by an
// *InsufficientError, so test for it with errors.Is.
var ErrInsufficientSequences = errors.New("Insufficient sequences")

// InsufficientError reports how many sequences a tree builder needed and how
// many it was given.
type InsufficientError struct {
	Need, Have int
}

// Insufficient returns an *InsufficientError.
func Insufficient(need, have int) error {
	return &InsufficientError{Need: need, Have: have}
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("%s: at least %d are needed, but %d were given.",
		ErrInsufficientSequences, e.Need, e.Have)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficientSequences
}

// EvaluationError is returned when a computation produces a value that
// cannot be right, such as a distance outside of [0, 1] or a negative branch
// length. It always indicates a bug.
type EvaluationError struct {
	Msg string
}

// Evaluationf returns an *EvaluationError with a formatted message.
func Evaluationf(format string, v ...interface{}) error {
	return &EvaluationError{fmt.Sprintf(format, v...)}
}

func (e *EvaluationError) Error() string {
	return "Evaluation error: " + e.Msg
}

func emptyf(n int) error {
	return fmt.Errorf("%w: at least 2 sequences are needed to compute "+
		"distances, but %d were given.", ErrEmptyAlignment, n)
}
