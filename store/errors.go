package store

import "errors"

// Sentinel errors for the core failure taxonomy. Components wrap these with
// fmt.Errorf("%w: ...") so callers classify with errors.Is.
var (
	// ErrNotFound reports an absent object or key.
	ErrNotFound = errors.New("object not found")
	// ErrNoManifest reports an operation that requires a loaded manifest.
	ErrNoManifest = errors.New("no manifest available")
	// ErrInvalidIdentifier reports a malformed object locator.
	ErrInvalidIdentifier = errors.New("invalid object identifier")
	// ErrInvalidArgument reports a malformed request argument, e.g. a bad regexp.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream reports a remote store call that failed for reasons other
	// than not-found: network, throttling, permission.
	ErrUpstream = errors.New("upstream store failure")
)

// FailureKind is the surfaced classification of a core error, consumed by
// boundary adapters when formatting tool results.
type FailureKind string

const (
	FailureNotFound        FailureKind = "NotFound"
	FailureNoManifest      FailureKind = "NoManifest"
	FailureInvalidArgument FailureKind = "InvalidArgument"
	FailureUpstream        FailureKind = "UpstreamError"
)

// Classify maps a core error to its failure kind. Unrecognized errors are
// reported as upstream failures.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrNoManifest):
		return FailureNoManifest
	case errors.Is(err, ErrInvalidIdentifier), errors.Is(err, ErrInvalidArgument):
		return FailureInvalidArgument
	default:
		return FailureUpstream
	}
}
