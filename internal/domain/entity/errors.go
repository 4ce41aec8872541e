// internal/domain/entity/errors.go
package entity

import (
	"errors"
	"fmt"
)

// ErrAuthExpired signals a 401-class response from the gateway. The
// orchestrator re-authenticates exactly once per cycle when it sees it.
var ErrAuthExpired = errors.New("gateway token expired")

// AuthError indicates the gateway rejected the credentials or the login
// call itself failed.
type AuthError struct {
	ExternalDeviceID string
	Err              error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for device %s: %v", e.ExternalDeviceID, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError indicates the event fetch failed on transport, timeout or a
// non-auth HTTP error. The device is skipped for the current cycle.
type FetchError struct {
	ExternalDeviceID string
	Err              error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("event fetch failed for device %s: %v", e.ExternalDeviceID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError names the field that made a raw record unusable. A single
// malformed record is skipped; the batch continues.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid record field %q: %s", e.Field, e.Reason)
}

// MaterializeError explains why a reconstructed segment could not be
// turned into a logbook entry.
type MaterializeError struct {
	Reason string
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("cannot materialize logbook entry: %s", e.Reason)
}
