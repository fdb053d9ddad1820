// Package errs defines the error taxonomy shared by repositories and
// aggregators. Read aggregation either fully succeeds or returns a
// FetchError; an empty result is never expressed as an error.
package errs

import (
	"errors"
	"fmt"
)

const (
	// NotFound is returned when a referenced resource does not exist.
	NotFound sentinel = "resource not found"
	// Duplicate is returned when an insert would violate a uniqueness
	// constraint, e.g. a second like for the same (post, user) pair.
	Duplicate sentinel = "duplicate resource"
	// UsernameTaken is returned when a signup or profile update collides
	// with an existing handle.
	UsernameTaken sentinel = "username is already taken"
	// Forbidden is returned when a user attempts to mutate content that
	// belongs to someone else.
	Forbidden sentinel = "operation not permitted"
	// Unavailable is returned when an operation needs a backing service
	// that the deployment has not configured, e.g. story uploads without
	// a storage bucket.
	Unavailable sentinel = "service not configured"
)

type sentinel string

func (e sentinel) Error() string {
	return string(e)
}

// FetchError wraps an underlying store failure during an aggregate read or
// a mutation. Op names the failed operation for logs.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetch wraps err as a FetchError, passing nil through unchanged.
// Sentinels are not wrapped so NotFound on a single-row read keeps its
// meaning for callers.
func Fetch(op string, err error) error {
	if err == nil {
		return nil
	}
	var s sentinel
	if errors.As(err, &s) {
		return err
	}
	return &FetchError{Op: op, Err: err}
}

// IsFetchFailure reports whether err is a wrapped store failure.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
