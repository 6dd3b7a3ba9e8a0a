package sankhya

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrAuthentication means no usable token could be obtained from the login endpoint.
	ErrAuthentication = eris.New("sankhya: authentication failed")

	// ErrSessionExpired means the gateway rejected the cached token (401/403).
	// The token has already been invalidated; the next call logs in again.
	ErrSessionExpired = eris.New("sankhya: session expired")

	// ErrRemoteFetch matches every *FetchError via errors.Is.
	ErrRemoteFetch = eris.New("sankhya: remote fetch failed")
)

// kindError tags an underlying cause with one of the package sentinels so
// callers can match either with errors.Is / errors.As.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string   { return e.kind.Error() + ": " + e.cause.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.cause} }

func withKind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &kindError{kind: kind, cause: cause}
}

// FetchError reports a failed query for one entity (or for the cache write
// that finishes an aggregation).
type FetchError struct {
	Entity string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sankhya: fetch %s: %v", e.Entity, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRemoteFetch) true for any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrRemoteFetch }
