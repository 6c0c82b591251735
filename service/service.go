package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/viant/afs"
	"go.uber.org/zap"

	"github.com/viant/bucketfs/cache"
	"github.com/viant/bucketfs/finder"
	"github.com/viant/bucketfs/manifest"
	"github.com/viant/bucketfs/search"
	"github.com/viant/bucketfs/store"
	"github.com/viant/bucketfs/store/s3"
)

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger (default no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFS sets the abstract file system used for the manifest and the cache.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithStore injects the remote store, overriding config-driven construction.
func WithStore(remote store.Store) Option {
	return func(s *Service) { s.remote = remote }
}

// Service exposes read, list, find, filter and search operations over one
// bucket of a remote object store.
type Service struct {
	cfg      *Config
	fs       afs.Service
	remote   store.Store
	manifest *manifest.Store
	cache    *cache.Cache
	finder   *finder.Finder
	engine   *search.Engine
	tasks    *TaskSet
	logger   *zap.Logger
}

// New assembles a Service from configuration. The cache directory is created
// eagerly so a misconfigured cache fails construction, not the first read.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		cfg:    cfg,
		tasks:  NewTaskSet(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.remote == nil {
		remote, err := newRemote(ctx, s.fs, cfg.Store)
		if err != nil {
			return nil, err
		}
		s.remote = remote
	}
	if cfg.Manifest.URL != "" {
		s.manifest = manifest.NewStore(s.fs, cfg.Manifest.URL,
			manifest.WithTTL(cfg.manifestTTL()),
			manifest.WithLogger(s.logger))
	}
	if cfg.Cache.Dir != "" {
		var cacheOpts []cache.Option
		if cfg.Cache.MaxBytes > 0 {
			cacheOpts = append(cacheOpts, cache.WithMaxBytes(cfg.Cache.MaxBytes))
		}
		if cfg.Cache.MaxEntries > 0 {
			cacheOpts = append(cacheOpts, cache.WithMaxEntries(cfg.Cache.MaxEntries))
		}
		cacheOpts = append(cacheOpts, cache.WithLogger(s.logger))
		contentCache, err := cache.New(ctx, s.fs, s.remote, cfg.Cache.Dir, cacheOpts...)
		if err != nil {
			return nil, err
		}
		s.cache = contentCache
	}
	s.finder = finder.New(s.remote, s.manifest, cfg.Store.Bucket,
		finder.WithScheme(s.scheme()),
		finder.WithLogger(s.logger))

	var searchOpts []search.Option
	if cfg.Search.Binary != "" {
		searchOpts = append(searchOpts, search.WithBinary(cfg.Search.Binary))
	}
	if cfg.Search.TimeoutSeconds > 0 {
		searchOpts = append(searchOpts, search.WithTimeout(cfg.searchTimeout()))
	}
	if cfg.Search.Concurrency > 0 {
		searchOpts = append(searchOpts, search.WithConcurrency(cfg.Search.Concurrency))
	}
	searchOpts = append(searchOpts, search.WithLogger(s.logger))
	s.engine = search.New(s.finder, s.cache, s.remote, cfg.Store.Bucket, searchOpts...)
	return s, nil
}

func newRemote(ctx context.Context, fs afs.Service, cfg StoreConfig) (store.Store, error) {
	switch cfg.Scheme {
	case "", store.DefaultScheme:
		return s3.New(ctx, s3.Config{
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	default:
		return store.NewAFS(fs, cfg.BaseURL), nil
	}
}

func (s *Service) scheme() string {
	if s.cfg.Store.Scheme == "" {
		return store.DefaultScheme
	}
	return s.cfg.Store.Scheme
}

// Close waits for background tasks to finish.
func (s *Service) Close() error {
	s.tasks.Shutdown()
	return nil
}

// resolve turns a request URI or bucket-relative path into an identifier.
func (s *Service) resolve(uri, path string) (store.Identifier, error) {
	if uri != "" {
		return store.ParseIdentifier(uri)
	}
	key := strings.TrimPrefix(strings.TrimSpace(path), "/")
	if key == "" {
		return store.Identifier{}, fmt.Errorf("object path was empty: %w", store.ErrInvalidIdentifier)
	}
	return store.Identifier{Scheme: s.scheme(), Bucket: s.cfg.Store.Bucket, Key: key}, nil
}

// Read returns object content, serving from the local cache when the object
// is already resident and from the remote store otherwise. A read never
// populates the cache; only search warm-up does.
func (s *Service) Read(ctx context.Context, req ReadRequest) (*ReadResult, error) {
	id, err := s.resolve(req.URI, req.Path)
	if err != nil {
		return nil, err
	}
	if req.Offset < 0 || req.Length < 0 {
		return nil, fmt.Errorf("offset and length must be non-negative: %w", store.ErrInvalidArgument)
	}
	result := &ReadResult{URI: id.String()}
	var content []byte
	if s.cache != nil {
		if localPath, ok := s.cache.CachedPath(id); ok {
			if data, err := os.ReadFile(localPath); err == nil {
				content = data
				result.FromCache = true
			} else {
				s.logger.Warn("cached copy unreadable, falling back to remote",
					zap.String("object", id.String()), zap.Error(err))
			}
		}
	}
	if content == nil {
		reader, err := s.remote.GetObject(ctx, id)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		if content, err = io.ReadAll(reader); err != nil {
			return nil, fmt.Errorf("read %v: %w", id, err)
		}
	}
	result.Content = sliceRange(content, req.Offset, req.Length)
	return result, nil
}

// sliceRange applies an offset and optional length to already loaded
// content. Offsets past the end yield empty content rather than an error.
func sliceRange(content []byte, offset, length int64) []byte {
	if offset >= int64(len(content)) {
		return []byte{}
	}
	content = content[offset:]
	if length > 0 && length < int64(len(content)) {
		content = content[:length]
	}
	return content
}

// List returns the immediate children of a directory from the manifest
// index. Without a manifest there is no directory view.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResult, error) {
	if s.manifest == nil {
		return nil, fmt.Errorf("directory listing requires a manifest: %w", store.ErrNoManifest)
	}
	entries := s.manifest.ListDirectory(ctx, req.Path)
	if entries == nil {
		return nil, fmt.Errorf("manifest unavailable at %v: %w", s.cfg.Manifest.URL, store.ErrNoManifest)
	}
	return &ListResult{Path: req.Path, Entries: entries}, nil
}

// Find returns identifiers of objects whose key matches the glob, in key
// order, with offset and limit applied after matching.
func (s *Service) Find(ctx context.Context, req FindRequest) (*FindResult, error) {
	if strings.TrimSpace(req.Glob) == "" {
		return nil, fmt.Errorf("glob was empty: %w", store.ErrInvalidArgument)
	}
	// Collect every match before sorting so the page window is stable
	// regardless of manifest order.
	ids, err := s.finder.Find(ctx, req.Glob, finder.Options{BasePrefix: req.Path})
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Key < ids[j].Key })
	if req.Offset > 0 {
		if req.Offset >= len(ids) {
			ids = nil
		} else {
			ids = ids[req.Offset:]
		}
	}
	if req.Limit > 0 && req.Limit < len(ids) {
		ids = ids[:req.Limit]
	}
	uris := make([]string, 0, len(ids))
	for _, id := range ids {
		uris = append(uris, id.String())
	}
	return &FindResult{URIs: uris}, nil
}

// Filter returns manifest entries matching metadata criteria.
func (s *Service) Filter(ctx context.Context, req FilterRequest) (*FilterResult, error) {
	if s.manifest == nil {
		return nil, fmt.Errorf("metadata filtering requires a manifest: %w", store.ErrNoManifest)
	}
	snapshot := s.manifest.Fetch(ctx)
	if snapshot == nil {
		return nil, fmt.Errorf("manifest unavailable at %v: %w", s.cfg.Manifest.URL, store.ErrNoManifest)
	}
	criteria := manifest.Criteria{
		MinSize:        req.MinSize,
		MaxSize:        req.MaxSize,
		ModifiedAfter:  req.ModifiedAfter,
		ModifiedBefore: req.ModifiedBefore,
		StorageClass:   req.StorageClass,
		KeyRegexp:      req.KeyRegexp,
	}
	files, err := criteria.Apply(snapshot.Manifest.Files, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}
	return &FilterResult{Files: files}, nil
}

// Grep searches file content and renders one line per match.
func (s *Service) Grep(ctx context.Context, req GrepRequest) (*GrepResult, error) {
	result, err := s.engine.Search(ctx, search.Request{
		Pattern:       req.Pattern,
		CaseSensitive: req.CaseSensitive,
		Path:          req.Path,
		Glob:          req.Glob,
		MaxResults:    req.MaxResults,
	})
	if err != nil {
		return nil, err
	}
	out := &GrepResult{Outcome: result.Outcome, Lines: result.Lines(), Truncated: result.Truncated}
	if result.Outcome == search.OutcomeFailed && result.Diagnostic != "" {
		out.Lines = append(out.Lines, result.Diagnostic)
	}
	return out, nil
}

// Warm caches files matching a glob in the background and returns a task
// handle. Warm-up without a cache is a no-op task.
func (s *Service) Warm(ctx context.Context, req WarmRequest) *Task {
	return s.tasks.Go("warm "+req.Glob, func(taskCtx context.Context) (any, error) {
		if s.cache == nil {
			return &WarmResult{}, nil
		}
		ids, err := s.finder.Find(taskCtx, req.Glob, finder.Options{BasePrefix: req.Path, MaxResults: search.MaxCandidates})
		if err != nil {
			return nil, err
		}
		batch, err := s.cache.EnsureCachedBatch(taskCtx, ids, cache.BatchOptions{})
		if err != nil {
			return nil, err
		}
		return &WarmResult{Requested: len(ids), Cached: batch.Succeeded(), Failed: len(batch.Failures)}, nil
	})
}

// CacheStats reports cache occupancy; zero stats when no cache is configured.
func (s *Service) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// ClearCache evicts all cached content.
func (s *Service) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// InvalidateManifest forces the next manifest access to reload.
func (s *Service) InvalidateManifest() {
	if s.manifest != nil {
		s.manifest.Invalidate()
	}
}
