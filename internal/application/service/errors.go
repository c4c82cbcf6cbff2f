package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned before any store access when required fields are missing or invalid
	ErrMalformedInput = errors.New("malformed input")

	// ErrNotFound is returned when the plan ID has no record
	ErrNotFound = errors.New("plan not found")

	// ErrForbidden is returned when the actor may not approve the plan in its current state
	ErrForbidden = errors.New("not authorized to approve")

	// ErrPreconditionFailed is returned when publishing a plan that is not fully approved
	ErrPreconditionFailed = errors.New("plan not yet approved by both parties")

	// ErrConflict is returned when concurrent writes kept invalidating the read version
	ErrConflict = errors.New("plan was modified concurrently")
)

// ExternalServiceError reports a failed call to the store, notifier, publisher or generator
type ExternalServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func externalError(service, op string, err error) error {
	return &ExternalServiceError{Service: service, Op: op, Err: err}
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
