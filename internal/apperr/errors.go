package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotAssigned indicates that no route is currently assigned to the device.
var ErrNotAssigned = errors.New("no route assigned")

// ErrPointNotInRoute indicates a completion attempt for a point outside the
// assigned route's point set.
var ErrPointNotInRoute = errors.New("point not in route")

// ErrRouteNotAllComplete indicates a finish attempt before every point of the
// assigned route was completed.
var ErrRouteNotAllComplete = errors.New("complete all points before finishing")

// ErrPersistence indicates that the local store could not durably apply a
// write. Callers treat it differently from network errors: progress on the
// device may be lost.
var ErrPersistence = errors.New("persistence unavailable")

// RemoteError is a non-2xx response from the backend that is not a plain
// not-found. Surfaced to the caller, never auto-retried.
type RemoteError struct {
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend rejected request: status %d", e.Status)
}

// TransportError is a connectivity-level failure (dial, timeout, broken
// connection). Retryable by re-invoking the same operation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend unreachable: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
