package manifest

import (
	"fmt"
	"regexp"
	"time"

	"github.com/viant/bucketfs/store"
)

// Criteria is a composable predicate set over manifest entries. Absent
// criteria are no-ops. Entries missing a field required by an active
// predicate are excluded rather than defaulted.
type Criteria struct {
	MinSize        *int64
	MaxSize        *int64
	ModifiedAfter  *time.Time
	ModifiedBefore *time.Time
	StorageClass   string
	KeyRegexp      string
}

// Apply filters files by every active predicate, then applies offset and
// limit in that order. A limit of zero or less means no limit.
func (c *Criteria) Apply(files []store.Object, offset, limit int) ([]store.Object, error) {
	var keyRe *regexp.Regexp
	if c.KeyRegexp != "" {
		re, err := regexp.Compile(c.KeyRegexp)
		if err != nil {
			return nil, fmt.Errorf("%w: key regexp %q: %v", store.ErrInvalidArgument, c.KeyRegexp, err)
		}
		keyRe = re
	}
	var matched []store.Object
	for _, object := range files {
		if !c.accepts(object, keyRe) {
			continue
		}
		matched = append(matched, object)
	}
	if offset > 0 {
		if offset >= len(matched) {
			return []store.Object{}, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	if matched == nil {
		matched = []store.Object{}
	}
	return matched, nil
}

func (c *Criteria) accepts(object store.Object, keyRe *regexp.Regexp) bool {
	if c.MinSize != nil && (object.Size == nil || *object.Size < *c.MinSize) {
		return false
	}
	if c.MaxSize != nil && (object.Size == nil || *object.Size > *c.MaxSize) {
		return false
	}
	if c.ModifiedAfter != nil && (object.LastModified == nil || !object.LastModified.After(*c.ModifiedAfter)) {
		return false
	}
	if c.ModifiedBefore != nil && (object.LastModified == nil || !object.LastModified.Before(*c.ModifiedBefore)) {
		return false
	}
	if c.StorageClass != "" && object.StorageClass != c.StorageClass {
		return false
	}
	if keyRe != nil && !keyRe.MatchString(object.Key) {
		return false
	}
	return true
}
