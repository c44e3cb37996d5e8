package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine package.
var (
	// ErrHostUnavailable indicates the Java runtime needed by the validator jar is missing.
	ErrHostUnavailable = errors.New("java runtime not available")

	// ErrProvisioningFailed indicates no configured source produced a valid validator jar.
	ErrProvisioningFailed = errors.New("could not provision css validator")

	// ErrInvalidArchive indicates a downloaded file does not start with the ZIP signature.
	ErrInvalidArchive = errors.New("not a jar archive")

	// ErrBadStatus indicates a download source answered with a non-2xx status.
	ErrBadStatus = errors.New("unexpected http status")
)

// SourceError records why a single download source was rejected.
type SourceError struct {
	// Source is the URL that was tried.
	Source string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SourceError) Unwrap() error {
	return e.Err
}
