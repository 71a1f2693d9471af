package attend

import (
	"errors"
	"fmt"
)

// MaxFaceSlots is the maximum number of reference images one user may carry.
// The backend enforces the same limit; checking it here avoids a pointless
// round trip and gives the operator an immediate error.
const MaxFaceSlots = 3

var (
	// ErrAuthorizationExpired is returned when the backend rejects the
	// bearer token. By the time the caller sees it, the stored credential
	// has already been cleared and the auth-expired hook has fired.
	ErrAuthorizationExpired = errors.New("authorization expired")

	// ErrInvalidLogin is returned by Login when the backend declines the
	// username/password pair. The client stays anonymous.
	ErrInvalidLogin = errors.New("invalid username or password")

	// ErrCapacityExceeded is returned before any request is sent when an
	// operation would push a user past MaxFaceSlots reference images.
	ErrCapacityExceeded = fmt.Errorf("maximum %d reference images allowed", MaxFaceSlots)
)

// ValidationError carries the backend's own rejection detail for a mutation
// (duplicate phone, malformed input, server-side capacity check). The detail
// is surfaced to the operator verbatim.
type ValidationError struct {
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request rejected with status %d", e.Status)
	}
	return e.Detail
}

// TransportError wraps a network-level failure. It is never conflated with an
// authorization failure: the credential survives it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a network-level failure rather than a
// response the backend actually produced.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
