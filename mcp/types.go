package mcp

import (
	"time"

	"github.com/viant/bucketfs/store"
)

type ReadInput struct {
	URI    string `json:"uri,omitempty"`
	Path   string `json:"path,omitempty"`
	Offset int64  `json:"offset,omitempty"`
	Length int64  `json:"length,omitempty"`
}

type ReadOutput struct {
	URI       string `json:"uri"`
	Content   string `json:"content"`
	FromCache bool   `json:"fromCache,omitempty"`
}

type ListInput struct {
	Path string `json:"path,omitempty"`
}

type ListOutput struct {
	Path    string   `json:"path"`
	Entries []string `json:"entries"`
}

type FindInput struct {
	Glob   string `json:"glob"`
	Path   string `json:"path,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type FindOutput struct {
	URIs []string `json:"uris"`
}

type FilterInput struct {
	MinSize        *int64 `json:"minSize,omitempty"`
	MaxSize        *int64 `json:"maxSize,omitempty"`
	ModifiedAfter  string `json:"modifiedAfter,omitempty"`
	ModifiedBefore string `json:"modifiedBefore,omitempty"`
	StorageClass   string `json:"storageClass,omitempty"`
	KeyRegexp      string `json:"keyRegexp,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

type FilterEntry struct {
	Key          string `json:"key"`
	Size         *int64 `json:"size,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
	StorageClass string `json:"storageClass,omitempty"`
}

type FilterOutput struct {
	Files []FilterEntry `json:"files"`
}

type GrepInput struct {
	Pattern       string `json:"pattern"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
	Path          string `json:"path,omitempty"`
	Glob          string `json:"glob,omitempty"`
	MaxResults    int    `json:"maxResults,omitempty"`
}

type GrepOutput struct {
	Outcome   string   `json:"outcome"`
	Lines     []string `json:"lines"`
	Truncated bool     `json:"truncated,omitempty"`
}

type CacheInput struct {
	// Action is "stats" (default), "clear" or "warm".
	Action string `json:"action,omitempty"`
	Glob   string `json:"glob,omitempty"`
	Path   string `json:"path,omitempty"`
}

type CacheOutput struct {
	Entries            int     `json:"entries"`
	ResidentBytes      int64   `json:"residentBytes"`
	CapacityBytes      int64   `json:"capacityBytes"`
	UtilizationPercent float64 `json:"utilizationPercent"`
	Warmed             int     `json:"warmed,omitempty"`
	Failed             int     `json:"failed,omitempty"`
}

func filterEntry(object store.Object) FilterEntry {
	entry := FilterEntry{Key: object.Key, Size: object.Size, StorageClass: object.StorageClass}
	if object.LastModified != nil {
		entry.LastModified = object.LastModified.UTC().Format(time.RFC3339)
	}
	return entry
}
