package hindsight

import (
	"errors"
	"fmt"
)

// TransportError means the service could not be reached at all.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hindsight: %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hindsight: %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// IsUnreachable reports whether err came from a failed connection attempt.
func IsUnreachable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
