package service

import (
	"time"

	"github.com/viant/bucketfs/manifest"
	"github.com/viant/bucketfs/search"
	"github.com/viant/bucketfs/store"
)

// ReadRequest identifies object content to read. Either URI (a full
// scheme://bucket/key identifier) or Path (a key in the configured bucket)
// must be set. A zero Length reads to the end of the object.
type ReadRequest struct {
	URI    string
	Path   string
	Offset int64
	Length int64
}

// ReadResult carries object content and its origin.
type ReadResult struct {
	URI     string
	Content []byte
	// FromCache reports whether the content was served from the local cache.
	FromCache bool
}

// ListRequest names a directory to list; an empty path lists the bucket root.
type ListRequest struct {
	Path string
}

// ListResult carries immediate children of a directory; entries ending in
// "/" are directories.
type ListResult struct {
	Path    string
	Entries []string
}

// FindRequest matches object keys against a glob.
type FindRequest struct {
	Glob   string
	Path   string
	Offset int
	Limit  int
}

// FindResult carries matched identifiers.
type FindResult struct {
	URIs []string
}

// FilterRequest selects manifest entries by metadata.
type FilterRequest struct {
	MinSize        *int64
	MaxSize        *int64
	ModifiedAfter  *time.Time
	ModifiedBefore *time.Time
	StorageClass   string
	KeyRegexp      string
	Offset         int
	Limit          int
}

// FilterResult carries matching manifest entries.
type FilterResult struct {
	Files []store.Object
}

// GrepRequest searches file content.
type GrepRequest struct {
	Pattern       string
	CaseSensitive bool
	Path          string
	Glob          string
	MaxResults    int
}

// GrepResult carries the terminal search result.
type GrepResult struct {
	Outcome   search.Outcome
	Lines     []string
	Truncated bool
}

// WarmRequest pre-populates the cache for files matching a glob.
type WarmRequest struct {
	Glob string
	Path string
}

// WarmResult summarizes a completed warm-up.
type WarmResult struct {
	Requested int
	Cached    int
	Failed    int
}

func (c *Config) manifestTTL() time.Duration {
	if c.Manifest.TTLSeconds <= 0 {
		return manifest.DefaultTTL
	}
	return time.Duration(c.Manifest.TTLSeconds) * time.Second
}

func (c *Config) searchTimeout() time.Duration {
	if c.Search.TimeoutSeconds <= 0 {
		return search.DefaultTimeout
	}
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}
