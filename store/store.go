// Package store defines the remote object store collaborator and the shared
// data model: identifiers, object metadata and the failure taxonomy.
package store

import (
	"context"
	"io"
)

// DefaultPageSize is the listing page size used by callers that paginate.
const DefaultPageSize = 1000

// Store abstracts the remote object store so the core works against
// S3 in production and AFS-backed buckets (file://, mem://) in tests.
// Implementations do not manage credentials or retries beyond what their
// native client provides.
type Store interface {
	// GetObject returns the object's content stream, or ErrNotFound.
	GetObject(ctx context.Context, id Identifier) (io.ReadCloser, error)
	// ListObjects returns one page of keys under prefix, lexicographic by
	// key. An empty token starts from the beginning; a non-empty
	// Page.NextToken means more pages remain.
	ListObjects(ctx context.Context, bucket, prefix, token string, maxKeys int) (*Page, error)
}
