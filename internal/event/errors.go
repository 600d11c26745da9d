package event

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request the caller can fix (missing or bad fields).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing event or event output.
	ErrNotFound = errors.New("not found")

	// ErrMalformedOutput marks AI output that could not be read into the expected shape.
	ErrMalformedOutput = errors.New("malformed ai output")

	// ErrUpstream marks a failed call to the text-completion service.
	ErrUpstream = errors.New("upstream service error")

	// ErrPersistence marks a failed store write.
	ErrPersistence = errors.New("persistence error")
)

// userError carries a message meant for the caller alongside its category.
type userError struct {
	kind error
	msg  string
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.kind }

func Invalid(format string, args ...any) error {
	return &userError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &userError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// MalformedOutputError keeps the raw model text for diagnostics. Reason is
// safe to show to the caller.
type MalformedOutputError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *MalformedOutputError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedOutput }

// Message returns the caller-facing text of a validation or not-found error.
func Message(err error) (string, bool) {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg, true
	}
	return "", false
}
