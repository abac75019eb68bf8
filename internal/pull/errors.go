package pull

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminatedObject        = errors.New("unterminated object")
	ErrUnterminatedArray         = errors.New("unterminated array")
	ErrUnterminatedString        = errors.New("unterminated string")
	ErrUnterminatedObjectOrArray = errors.New("unterminated object or array")
	ErrFieldNoValue              = errors.New("field has no value")
	ErrUnexpectedValue           = errors.New("unexpected value")
	ErrUnexpectedField           = errors.New("unexpected field")
	ErrUnknownState              = errors.New("unknown state")

	// ErrOutOfMemory reports an exhausted arena or capture buffer.
	ErrOutOfMemory = errors.New("out of memory")

	ErrInvalidArgument = errors.New("invalid argument")
	ErrEndOfDocument   = errors.New("end of document")

	// ErrNoData is returned when the reader is not on a value, or the source
	// failed.
	ErrNoData = errors.New("no data")

	// ErrFieldNotSupported is returned when materializing a lone field.
	ErrFieldNotSupported = errors.New("individual fields cannot be materialized")
)

// SyntaxError locates a reader error in the input. Err wraps one of the
// sentinel errors above.
type SyntaxError struct {
	Err    error
	Line   int
	Column int
	Offset int64
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at line %d, column %d", e.Err, e.Line, e.Column)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
