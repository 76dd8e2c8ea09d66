package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for failures a caller handles by changing state rather
// than by retrying.
var (
	// ErrUnauthenticated means the credential is missing, invalid, or
	// expired. Callers clear the stored credential and return to sign-in.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrEntitlement means the account's plan does not cover the feature.
	// The credential stays valid; callers route to the plan page.
	ErrEntitlement = errors.New("subscription does not cover this feature")
)

// ValidationError is a 4xx rejection of the request's content. Never
// retryable: the same request would fail the same way.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request rejected (%d): %s", e.Status, e.Message)
}

// TransportError is a network-level failure: connection refused, DNS,
// timeout, canceled context. The request may never have reached the
// server, so the caller must assume nothing was committed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a 5xx response. Retryable.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server failure (%d): %s", e.Status, e.Message)
}

// Retryable reports whether the failure class permits a retry.
func Retryable(err error) bool {
	var te *TransportError
	var se *ServerError
	return errors.As(err, &te) || errors.As(err, &se)
}
