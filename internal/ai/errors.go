package ai

import "errors"

var (
	// ErrUnavailable indicates the completion service could not be reached.
	ErrUnavailable = errors.New("completion service unavailable")

	// ErrUpstream indicates the completion service answered with an error status.
	ErrUpstream = errors.New("completion service error")

	// ErrEmptyResponse indicates the service answered without any text.
	ErrEmptyResponse = errors.New("completion service returned no text")

	// ErrTimeout indicates the request exceeded AI_TIMEOUT_MS.
	ErrTimeout = errors.New("completion request timed out")
)
