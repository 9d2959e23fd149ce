package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input,
	// such as an empty document key.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidEncoding indicates document text that is not valid UTF-8.
	// Encoding is checked at the boundary, before tokenizing.
	ErrInvalidEncoding = errors.New("invalid utf-8 encoding")
)

// UnterminatedFenceError is the single hard parse failure: a fenced
// code block that is still open at end of input. It is fatal for the
// affected document only; other documents keep processing.
type UnterminatedFenceError struct {
	// Line is the 1-based line the fence was opened on.
	Line int
}

// Error implements the error interface.
func (e *UnterminatedFenceError) Error() string {
	return fmt.Sprintf("unterminated code fence opened at line %d", e.Line)
}
