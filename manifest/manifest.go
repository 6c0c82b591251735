// Package manifest loads a bucket-wide object listing from a side-channel
// source and derives a directory index from its flat keys.
package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/bucketfs/store"
)

// Manifest is a pre-computed snapshot of a bucket's object listing. Once
// loaded, Files is never mutated; a refresh replaces the whole structure.
type Manifest struct {
	Files       []store.Object
	LastUpdated time.Time
	Version     int
}

type rawManifest struct {
	Files       []json.RawMessage `json:"files"`
	LastUpdated string            `json:"lastUpdated"`
	Version     *int              `json:"version"`
}

type rawEntry struct {
	Key          string  `json:"key"`
	Size         *int64  `json:"size"`
	LastModified *string `json:"lastModified"`
	ETag         *string `json:"eTag"`
	StorageClass string  `json:"storageClass"`
}

// Parse decodes the JSON side-channel format. Each files element is either
// a structured entry or a bare key string (the legacy shape); both resolve
// to store.Object here so the ambiguity never travels past the load.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	manifest := &Manifest{Files: make([]store.Object, 0, len(raw.Files))}
	if raw.LastUpdated != "" {
		updated, err := time.Parse(time.RFC3339, raw.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("parse manifest lastUpdated: %w", err)
		}
		manifest.LastUpdated = updated
	}
	if raw.Version != nil {
		manifest.Version = *raw.Version
	}
	for i, element := range raw.Files {
		object, err := parseEntry(element)
		if err != nil {
			return nil, fmt.Errorf("parse manifest files[%d]: %w", i, err)
		}
		if object.Key == "" {
			return nil, fmt.Errorf("parse manifest files[%d]: empty key", i)
		}
		manifest.Files = append(manifest.Files, object)
	}
	return manifest, nil
}

func parseEntry(element json.RawMessage) (store.Object, error) {
	var key string
	if err := json.Unmarshal(element, &key); err == nil {
		return store.Object{Key: key}, nil
	}
	var entry rawEntry
	if err := json.Unmarshal(element, &entry); err != nil {
		return store.Object{}, err
	}
	object := store.Object{
		Key:          entry.Key,
		Size:         entry.Size,
		ETag:         entry.ETag,
		StorageClass: entry.StorageClass,
	}
	if entry.LastModified != nil {
		modified, err := time.Parse(time.RFC3339, *entry.LastModified)
		if err != nil {
			return store.Object{}, fmt.Errorf("lastModified: %w", err)
		}
		object.LastModified = &modified
	}
	return object, nil
}
