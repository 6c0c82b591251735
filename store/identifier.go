package store

import (
	"fmt"
	"strings"
)

// Identifier locates a single remote object. It is immutable once
// constructed; the canonical string form is scheme://bucket/key.
type Identifier struct {
	Scheme string
	Bucket string
	Key    string
}

// DefaultScheme is applied when an identifier is built from bucket and key only.
const DefaultScheme = "s3"

// NewIdentifier builds an identifier with the default scheme.
func NewIdentifier(bucket, key string) Identifier {
	return Identifier{Scheme: DefaultScheme, Bucket: bucket, Key: strings.TrimPrefix(key, "/")}
}

// ParseIdentifier parses a canonical scheme://bucket/key locator.
func ParseIdentifier(locator string) (Identifier, error) {
	locator = strings.TrimSpace(locator)
	idx := strings.Index(locator, "://")
	if idx <= 0 {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, locator)
	}
	scheme := locator[:idx]
	rest := locator[idx+3:]
	slash := strings.Index(rest, "/")
	if slash <= 0 || slash == len(rest)-1 {
		return Identifier{}, fmt.Errorf("%w: missing bucket or key in %q", ErrInvalidIdentifier, locator)
	}
	bucket := rest[:slash]
	key := rest[slash+1:]
	return Identifier{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// String returns the canonical locator form.
func (i Identifier) String() string {
	return i.Scheme + "://" + i.Bucket + "/" + i.Key
}

// IsZero reports whether the identifier is unset.
func (i Identifier) IsZero() bool {
	return i.Bucket == "" && i.Key == ""
}
