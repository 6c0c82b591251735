package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/viant/bucketfs/store"
)

// DefaultBatchConcurrency bounds simultaneous transfers; unbounded
// concurrency against the remote store risks throttling.
const DefaultBatchConcurrency = 10

// BatchOptions constrain a batch fetch.
type BatchOptions struct {
	MaxConcurrent int
}

// BatchResult reports per-identifier outcomes of a batch fetch. One
// object's failure never aborts the batch; cancellation stops new downloads
// and the result carries whatever succeeded before it.
type BatchResult struct {
	mu       sync.Mutex
	Paths    map[string]string
	Failures map[string]error
}

func newBatchResult() *BatchResult {
	return &BatchResult{Paths: map[string]string{}, Failures: map[string]error{}}
}

func (r *BatchResult) addPath(id store.Identifier, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Paths[id.String()] = path
}

func (r *BatchResult) addFailure(id store.Identifier, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[id.String()] = err
}

// Succeeded returns the number of cached identifiers.
func (r *BatchResult) Succeeded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Paths)
}

// EnsureCachedBatch fetches every identifier with a fixed concurrency
// window. When the context is cancelled no further downloads start; in
// flight ones run to completion and the partial result is returned together
// with the context error.
func (c *Cache) EnsureCachedBatch(ctx context.Context, ids []store.Identifier, opt BatchOptions) (*BatchResult, error) {
	concurrency := opt.MaxConcurrent
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	result := newBatchResult()
	group := &errgroup.Group{}
	group.SetLimit(concurrency)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			_ = group.Wait()
			return result, err
		}
		id := id
		group.Go(func() error {
			path, err := c.EnsureCached(ctx, id)
			if err != nil {
				result.addFailure(id, err)
				return nil
			}
			result.addPath(id, path)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
