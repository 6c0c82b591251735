// Package cache maintains a bounded local copy of remote object content,
// evicting least-recently-used entries when either the byte or the entry
// capacity is exceeded.
package cache

import (
	"bytes"
	"container/list"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/viant/bucketfs/store"
)

// Capacity defaults.
const (
	DefaultMaxBytes   = 2 << 30 // 2 GiB
	DefaultMaxEntries = 10000
)

// Entry records one resident object copy. Entries are owned exclusively by
// the cache: created on successful download, destroyed together with their
// backing file on eviction or clear.
type Entry struct {
	Identifier   store.Identifier
	LocalPath    string
	Size         int64
	LastAccessed time.Time
}

// Stats reports cache occupancy.
type Stats struct {
	Entries            int
	ResidentBytes      int64
	CapacityBytes      int64
	UtilizationPercent float64
}

// Cache is an LRU cache from object identifier to local byte-content copy.
type Cache struct {
	fs         afs.Service
	remote     store.Store
	rootDir    string
	maxBytes   int64
	maxEntries int
	logger     *zap.Logger
	group      singleflight.Group

	mu     sync.Mutex
	ll     *list.List
	items  map[string]*list.Element
	byPath map[string]store.Identifier
	size   int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxBytes overrides the byte capacity.
func WithMaxBytes(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithMaxEntries overrides the entry capacity.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a content cache rooted at rootDir, creating the directory when
// absent.
func New(ctx context.Context, fs afs.Service, remote store.Store, rootDir string, opts ...Option) (*Cache, error) {
	c := &Cache{
		fs:         fs,
		remote:     remote,
		rootDir:    rootDir,
		maxBytes:   DefaultMaxBytes,
		maxEntries: DefaultMaxEntries,
		logger:     zap.NewNop(),
		ll:         list.New(),
		items:      map[string]*list.Element{},
		byPath:     map[string]store.Identifier{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := fs.Create(ctx, c.rootURL(), file.DefaultDirOsMode, true); err != nil {
		return nil, fmt.Errorf("create cache root %v: %w", rootDir, err)
	}
	return c, nil
}

// Root returns the on-disk cache root directory.
func (c *Cache) Root() string {
	return c.rootDir
}

func (c *Cache) rootURL() string {
	return url.ToFileURL(c.rootDir)
}

// EnsureCached returns the local path of the object's content, downloading
// it first when not resident. Resident entries only refresh recency: objects
// are assumed immutable once written, so no re-download happens. Concurrent
// calls for the same identifier collapse into one download.
func (c *Cache) EnsureCached(ctx context.Context, id store.Identifier) (string, error) {
	if path, ok := c.CachedPath(id); ok {
		return path, nil
	}
	key := id.String()
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if path, ok := c.CachedPath(id); ok {
			return path, nil
		}
		return c.download(ctx, id)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Cache) download(ctx context.Context, id store.Identifier) (string, error) {
	reader, err := c.remote.GetObject(ctx, id)
	if err != nil {
		return "", err
	}
	defer func() { _ = reader.Close() }()
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: read %v: %v", store.ErrUpstream, id, err)
	}
	// An object larger than the whole cache can never be made resident
	// without breaching the byte bound, so refuse it up front.
	if int64(len(data)) > c.maxBytes {
		return "", fmt.Errorf("object %v is %d bytes, exceeds cache capacity %d", id, len(data), c.maxBytes)
	}
	localPath := filepath.Join(c.rootDir, filepath.FromSlash(localName(id)))
	if err := c.fs.Upload(ctx, url.ToFileURL(localPath), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write cache entry %v: %w", localPath, err)
	}
	c.insert(ctx, id, localPath, int64(len(data)))
	return localPath, nil
}

// insert records the entry and evicts until both capacity bounds hold. The
// entry map and the size accounting mutate under one lock so the reported
// size never drifts from actual usage.
func (c *Cache) insert(ctx context.Context, id store.Identifier, localPath string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := id.String()
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*Entry)
		entry.LastAccessed = time.Now()
		c.ll.MoveToFront(el)
		return
	}
	entry := &Entry{Identifier: id, LocalPath: localPath, Size: size, LastAccessed: time.Now()}
	c.items[key] = c.ll.PushFront(entry)
	c.byPath[localPath] = id
	c.size += size
	for (c.size > c.maxBytes || c.ll.Len() > c.maxEntries) && c.ll.Len() > 1 {
		c.evictLocked(ctx, c.ll.Back())
	}
}

// evictLocked removes the element, its bookkeeping and its backing file in
// one critical section. A failed deletion is logged and the entry is dropped
// anyway rather than retried.
func (c *Cache) evictLocked(ctx context.Context, el *list.Element) {
	if el == nil {
		return
	}
	entry := el.Value.(*Entry)
	c.ll.Remove(el)
	delete(c.items, entry.Identifier.String())
	delete(c.byPath, entry.LocalPath)
	c.size -= entry.Size
	if err := c.fs.Delete(ctx, url.ToFileURL(entry.LocalPath)); err != nil {
		c.logger.Warn("cache eviction cleanup failed",
			zap.String("path", entry.LocalPath), zap.Error(err))
	}
}

// CachedPath returns the local path without triggering a fetch, refreshing
// recency on a hit.
func (c *Cache) CachedPath(id store.Identifier) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[id.String()]
	if !ok {
		return "", false
	}
	entry := el.Value.(*Entry)
	entry.LastAccessed = time.Now()
	c.ll.MoveToFront(el)
	return entry.LocalPath, true
}

// PathIdentifier maps a cached local path back to its object identifier.
func (c *Cache) PathIdentifier(localPath string) (store.Identifier, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.byPath[localPath]
	return id, ok
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats reports current occupancy.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := Stats{
		Entries:       c.ll.Len(),
		ResidentBytes: c.size,
		CapacityBytes: c.maxBytes,
	}
	if c.maxBytes > 0 {
		stats.UtilizationPercent = float64(c.size) / float64(c.maxBytes) * 100
	}
	return stats
}

// Clear evicts every entry, then removes and recreates the cache root as a
// final sweep for orphaned files.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	for c.ll.Len() > 0 {
		c.evictLocked(ctx, c.ll.Back())
	}
	c.mu.Unlock()
	if err := c.fs.Delete(ctx, c.rootURL()); err != nil {
		c.logger.Warn("cache root removal failed", zap.String("root", c.rootDir), zap.Error(err))
	}
	if err := c.fs.Create(ctx, c.rootURL(), file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("recreate cache root %v: %w", c.rootDir, err)
	}
	return nil
}
