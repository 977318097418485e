package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrEnvironment means the fetch was attempted without a client-side token
	// store bound to the client. Not retryable.
	ErrEnvironment = errors.New("authenticated fetch can only be used with a client token store")
	// ErrNoToken means no token was stored; no request was sent.
	ErrNoToken = errors.New("no token found")
	// ErrUnauthorized means the backend answered 401; the stored token was cleared.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is a non-2xx backend answer other than 401.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// Outcome tags the result of an authenticated call so the caller can decide
// on navigation without inspecting errors itself.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNoToken
	OutcomeUnauthorized
	OutcomeEnvironment
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNoToken:
		return "no_token"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeEnvironment:
		return "environment"
	default:
		return "failed"
	}
}

// NeedsLogin reports whether the caller should route to the login view.
func (o Outcome) NeedsLogin() bool {
	return o == OutcomeNoToken || o == OutcomeUnauthorized
}

// Classify maps an error returned by this package to its Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNoToken):
		return OutcomeNoToken
	case errors.Is(err, ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, ErrEnvironment):
		return OutcomeEnvironment
	default:
		return OutcomeFailed
	}
}
