package edenpdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for rendering and compositing failures.
var (
	ErrTemplateMissing = errors.New("edenpdf: background template missing")
	ErrMalformedRecord = errors.New("edenpdf: malformed record")
	ErrMergeFailure    = errors.New("edenpdf: merge failure")
	ErrInvalidState    = errors.New("edenpdf: invalid surface state")
	ErrUnknownFont     = errors.New("edenpdf: unknown font")
	ErrInvalidParam    = errors.New("edenpdf: invalid parameter")
)

// Error represents an error that occurred during a specific rendering operation.
// It wraps an underlying error and includes the operation name for context.
type Error struct {
	Op  string // operation name, e.g. "Merge", "RenderInvoice"
	Err error  // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("edenpdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("edenpdf.%s: unknown error", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with operation context. It returns nil when err is nil.
func NewError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
