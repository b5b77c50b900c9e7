package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusDuplicateIdentity is returned in the response envelope when a
// registration collides with an existing username. It is deliberately not an
// HTTP status so clients can special-case it.
const StatusDuplicateIdentity = 1000

var (
	ErrMalformedRequest  = errors.New("malformed request")
	ErrAuthentication    = errors.New("authentication failed")
	ErrUserNotFound      = fmt.Errorf("%w: user not found", ErrAuthentication)
	ErrInvalidSecret     = fmt.Errorf("%w: invalid secret", ErrAuthentication)
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrMissingCredentials is a malformed request that is also reported as
	// an authentication failure.
	ErrMissingCredentials = fmt.Errorf("%w: missing credentials (%w)", ErrMalformedRequest, ErrAuthentication)
	ErrUnknownSource     = errors.New("unknown feed source")
)

// StorageError wraps any failure of the preference store or user store.
// The request that hit it is failed, never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// UpstreamFeedError wraps fetch and parse failures of a remote feed.
type UpstreamFeedError struct {
	Source string
	Err    error
}

func (e *UpstreamFeedError) Error() string {
	return fmt.Sprintf("upstream feed %q failed: %v", e.Source, e.Err)
}

func (e *UpstreamFeedError) Unwrap() error {
	return e.Err
}

func Upstream(source string, err error) error {
	return &UpstreamFeedError{Source: source, Err: err}
}

// Malformed returns an ErrMalformedRequest carrying a client-facing reason.
func Malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedRequest, reason)
}

// Status maps an error onto the envelope status taxonomy.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMalformedRequest), errors.Is(err, ErrUnknownSource):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateIdentity):
		return StatusDuplicateIdentity
	default:
		return http.StatusInternalServerError
	}
}

// Message renders an error for clients. Authentication failures share one
// message so a caller cannot tell an unknown user from a wrong secret.
func Message(err error) string {
	var upstreamErr *UpstreamFeedError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthentication):
		return "login invalid"
	case errors.Is(err, ErrMalformedRequest):
		return reason(err, ErrMalformedRequest)
	case errors.Is(err, ErrUnknownSource):
		return err.Error()
	case errors.Is(err, ErrDuplicateIdentity):
		return "duplicate username"
	case errors.As(err, &upstreamErr):
		return "upstream feed unavailable"
	default:
		return "internal server error"
	}
}

func reason(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
