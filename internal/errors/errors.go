// Package errors defines sentinel errors shared across the drive-mcp
// authentication and tool-dispatch layers. Callers classify failures
// with errors.Is and add context with fmt.Errorf("%w: ...").
package errors

import "errors"

// Caller errors. Rejected immediately, never retried.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrMissingClientID = errors.New("no client_id provided")
)

// Authorization flow errors.
var (
	// ErrInvalidState covers both never-issued and already-consumed flow
	// states; the two cases are deliberately indistinguishable.
	ErrInvalidState    = errors.New("invalid or expired authorization state")
	ErrUpstreamAuth    = errors.New("upstream authorization failed")
	ErrMissingIdentity = errors.New("no stable identity returned by provider")
)

// Credential resolution errors.
var (
	ErrNotAuthenticated = errors.New("client is not authenticated")
	ErrRefreshFailed    = errors.New("token refresh failed")
)
