package export

import (
	"errors"
	"fmt"
)

// ErrNilRecords is returned when a caller passes a nil collection. An empty
// slice is always valid and produces a header-only artifact; nil is the one
// input callers must guard against themselves.
var ErrNilRecords = errors.New("records collection is nil")

// Error is the single failure type the engine surfaces. Any serialization
// failure inside a builder is normalized into one of these so callers can
// present one consistent message regardless of target format.
type Error struct {
	Kind   Kind
	Format Format
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s/%s: %s: %v", e.Kind, e.Format, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format Format, op string, err error) *Error {
	return &Error{Kind: kind, Format: format, Op: op, Err: err}
}
