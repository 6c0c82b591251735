package store

import "time"

// Common storage classes reported by object stores.
const (
	ClassStandard           = "STANDARD"
	ClassStandardIA         = "STANDARD_IA"
	ClassIntelligentTiering = "INTELLIGENT_TIERING"
	ClassGlacier            = "GLACIER"
	ClassDeepArchive        = "DEEP_ARCHIVE"
)

// Object describes one remote object as produced by a listing or a
// manifest load. Optional fields are nil when the source did not carry them;
// consumers must not guess defaults for absent fields.
type Object struct {
	Key          string     `json:"key"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty"`
	ETag         *string    `json:"eTag,omitempty"`
	StorageClass string     `json:"storageClass,omitempty"`
}

// Page is one page of a prefix-restricted listing.
type Page struct {
	Objects   []Object
	NextToken string
}
