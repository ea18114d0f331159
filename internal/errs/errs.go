// Package errs defines the error taxonomy shared by every core component.
//
// Each class below is a distinct sentinel wrapped with github.com/pkg/errors
// so callers can both errors.Is/As and retain a stack trace for the fatal
// classes. CandidateRejected, OracleTransient and Cancelled are not fatal
// (see Class.Fatal); every other class unwinds the driver.
package errs

import "github.com/pkg/errors"

// Class identifies which row of the error taxonomy an error belongs to.
type Class int

const (
	// InputMalformed: loader cannot parse a fragment record. Fatal.
	InputMalformed Class = iota
	// OracleDown: the chemistry oracle is unreachable or fails to initialize. Fatal.
	OracleDown
	// CandidateRejected: a single molecule failed a gate or was a dedup hit. Silent.
	CandidateRejected
	// OracleTransient: a single canonicalize/descriptor call failed. Treated as CandidateRejected.
	OracleTransient
	// SinkWriteFailed: the Sink returned failure. Fatal.
	SinkWriteFailed
	// ResourceExhausted: Bloom construction or queue allocation failed. Fatal.
	ResourceExhausted
	// Cancelled: validation hit or external signal. Clean shutdown, zero exit.
	Cancelled
)

func (c Class) String() string {
	switch c {
	case InputMalformed:
		return "InputMalformed"
	case OracleDown:
		return "OracleDown"
	case CandidateRejected:
		return "CandidateRejected"
	case OracleTransient:
		return "OracleTransient"
	case SinkWriteFailed:
		return "SinkWriteFailed"
	case ResourceExhausted:
		return "ResourceExhausted"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Fatal reports whether an error of this class should unwind the enumeration driver.
func (c Class) Fatal() bool {
	switch c {
	case CandidateRejected, OracleTransient, Cancelled:
		return false
	default:
		return true
	}
}

// Error is a classified error carrying its taxonomy class alongside the
// underlying cause. Use New or Wrap to construct one; use As to recover the
// class from an arbitrary error chain.
type Error struct {
	class Class
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.class.String()
	}
	return e.class.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Class returns the taxonomy class of e.
func (e *Error) Class() Class { return e.class }

// New creates a classified error with a stack trace attached at the call site.
func New(class Class, msg string) error {
	return &Error{class: class, cause: errors.New(msg)}
}

// Wrap attaches a taxonomy class to an existing error, recording a stack
// trace at the call site.
func Wrap(class Class, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{class: class, cause: errors.Wrap(cause, msg)}
}

// As reports whether err (or any error in its chain) is a classified Error,
// and if so returns its Class.
func As(err error) (Class, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.class, true
	}
	return 0, false
}

// Is reports whether err's chain carries the given class.
func Is(err error, class Class) bool {
	c, ok := As(err)
	return ok && c == class
}
