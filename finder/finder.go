// Package finder resolves glob patterns to object identifiers, preferring
// the manifest snapshot and falling back to paginated remote listing.
package finder

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/viant/bucketfs/manifest"
	"github.com/viant/bucketfs/pattern"
	"github.com/viant/bucketfs/store"
)

// Options constrain a find call.
type Options struct {
	// BasePrefix restricts the search to keys under this prefix; the glob is
	// evaluated against paths relative to it.
	BasePrefix string
	// MaxResults caps the number of returned identifiers; zero means no cap.
	MaxResults int
}

// Finder matches object keys against glob patterns.
type Finder struct {
	store    store.Store
	manifest *manifest.Store
	scheme   string
	bucket   string
	logger   *zap.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithScheme overrides the identifier scheme (default store.DefaultScheme).
func WithScheme(scheme string) Option {
	return func(f *Finder) {
		if scheme != "" {
			f.scheme = scheme
		}
	}
}

// WithLogger sets the finder logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Finder. The manifest store may be nil, in which case every
// find call uses remote listing.
func New(st store.Store, man *manifest.Store, bucket string, opts ...Option) *Finder {
	finder := &Finder{
		store:    st,
		manifest: man,
		scheme:   store.DefaultScheme,
		bucket:   bucket,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(finder)
	}
	return finder
}

// Find returns the identifiers of objects whose key, taken relative to
// BasePrefix, satisfies the glob pattern. Results preserve discovery order:
// manifest order on the fast path, lexicographic key order on the remote
// fallback. The pattern's fixed prefix prunes the search space before any
// glob evaluation; pruning never discards a true match since every match
// must start with the literal prefix.
func (f *Finder) Find(ctx context.Context, glob string, opt Options) ([]store.Identifier, error) {
	base := normalizePrefix(opt.BasePrefix)
	combined := base + pattern.FixedPrefix(glob)
	if snapshot := f.manifest.Fetch(ctx); snapshot != nil {
		return f.findInManifest(snapshot, glob, base, combined, opt.MaxResults), nil
	}
	return f.findRemote(ctx, glob, base, combined, opt.MaxResults)
}

func (f *Finder) findInManifest(snapshot *manifest.Snapshot, glob, base, combined string, maxResults int) []store.Identifier {
	var out []store.Identifier
	for _, object := range snapshot.Manifest.Files {
		// Directory markers are never matches.
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		if combined != "" && !strings.HasPrefix(object.Key, combined) {
			continue
		}
		rel := strings.TrimPrefix(object.Key, base)
		if !pattern.Match(glob, rel) {
			continue
		}
		out = append(out, f.identifier(object.Key))
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out
}

func (f *Finder) findRemote(ctx context.Context, glob, base, combined string, maxResults int) ([]store.Identifier, error) {
	var out []store.Identifier
	token := ""
	for {
		page, err := f.store.ListObjects(ctx, f.bucket, combined, token, store.DefaultPageSize)
		if err != nil {
			return nil, err
		}
		for _, object := range page.Objects {
			// Directory markers are never matches.
			if strings.HasSuffix(object.Key, "/") {
				continue
			}
			rel := strings.TrimPrefix(object.Key, base)
			if !pattern.Match(glob, rel) {
				continue
			}
			out = append(out, f.identifier(object.Key))
			if maxResults > 0 && len(out) >= maxResults {
				return out, nil
			}
		}
		if page.NextToken == "" {
			return out, nil
		}
		token = page.NextToken
	}
}

func (f *Finder) identifier(key string) store.Identifier {
	return store.Identifier{Scheme: f.scheme, Bucket: f.bucket, Key: key}
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
