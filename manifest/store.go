package manifest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/afs"
	"go.uber.org/zap"
)

// DefaultTTL bounds how stale a cached manifest may be before a reload is
// attempted.
const DefaultTTL = 5 * time.Minute

// Snapshot pairs a loaded manifest with its derived directory index. A
// snapshot is immutable; refresh swaps the whole snapshot atomically so a
// concurrent reader observes either the old or the new one, never a
// partially built structure.
type Snapshot struct {
	Manifest *Manifest
	Index    *Index
	LoadedAt time.Time
}

// Store caches the manifest loaded from a side-channel URL (file://, mem://
// or an object URL such as s3://bucket/.bucketfs/manifest.json).
type Store struct {
	fs        afs.Service
	sourceURL string
	ttl       time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the default manifest TTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a manifest store for the given side-channel source URL.
func NewStore(fs afs.Service, sourceURL string, opts ...Option) *Store {
	store := &Store{
		fs:        fs,
		sourceURL: sourceURL,
		ttl:       DefaultTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Fetch returns the cached snapshot while its age is below the TTL,
// otherwise attempts a reload. A missing manifest is not an error: Fetch
// returns nil and the caller falls back to live listing. Load failures are
// logged and likewise reported as nil.
func (s *Store) Fetch(ctx context.Context) *Snapshot {
	if s == nil || s.sourceURL == "" {
		return nil
	}
	if snapshot := s.snapshot.Load(); snapshot != nil && time.Since(snapshot.LoadedAt) < s.ttl {
		return snapshot
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot := s.snapshot.Load(); snapshot != nil && time.Since(snapshot.LoadedAt) < s.ttl {
		return snapshot
	}
	snapshot := s.load(ctx)
	s.snapshot.Store(snapshot)
	return snapshot
}

func (s *Store) load(ctx context.Context) *Snapshot {
	ok, err := s.fs.Exists(ctx, s.sourceURL)
	if err != nil {
		s.logger.Warn("manifest stat failed", zap.String("url", s.sourceURL), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	data, err := s.fs.DownloadWithURL(ctx, s.sourceURL)
	if err != nil {
		s.logger.Warn("manifest load failed", zap.String("url", s.sourceURL), zap.Error(err))
		return nil
	}
	manifest, err := Parse(data)
	if err != nil {
		s.logger.Warn("manifest parse failed", zap.String("url", s.sourceURL), zap.Error(err))
		return nil
	}
	return &Snapshot{
		Manifest: manifest,
		Index:    NewIndex(manifest.Files),
		LoadedAt: time.Now(),
	}
}

// ListDirectory returns the immediate children of the normalized directory
// path, or nil when no manifest is loaded. A loaded manifest with no entries
// under the path yields an empty, non-nil slice.
func (s *Store) ListDirectory(ctx context.Context, dir string) []string {
	snapshot := s.Fetch(ctx)
	if snapshot == nil {
		return nil
	}
	return snapshot.Index.Children(dir)
}

// Invalidate drops the cached snapshot so the next Fetch reloads.
func (s *Store) Invalidate() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Store(nil)
}
