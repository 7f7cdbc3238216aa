// Package invariant defines the error kind raised when the engine's internal
// state breaks one of its own contracts. These are programming errors: the
// current drag must be aborted rather than continued.
package invariant

import (
	"errors"
	"fmt"
)

// ErrViolation matches every *Violation through errors.Is.
var ErrViolation = errors.New("engine invariant violation")

// Violation carries the operation that failed and a description of the broken contract.
type Violation struct {
	Op     string
	Detail string
	Err    error
}

func (v *Violation) Error() string {
	msg := fmt.Sprintf("invariant violation in %s: %s", v.Op, v.Detail)
	if v.Err != nil {
		msg += ": " + v.Err.Error()
	}
	return msg
}

// Is lets errors.Is(err, ErrViolation) succeed for any violation.
func (v *Violation) Is(target error) bool {
	return target == ErrViolation
}

func (v *Violation) Unwrap() error { return v.Err }

// New builds a violation with a formatted detail message.
func New(op, format string, args ...any) *Violation {
	return &Violation{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a violation.
func Wrap(op string, err error, format string, args ...any) *Violation {
	return &Violation{Op: op, Detail: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is, or wraps, a violation.
func Is(err error) bool {
	return errors.Is(err, ErrViolation)
}
