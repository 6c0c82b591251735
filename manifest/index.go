package manifest

import (
	"sort"
	"strings"

	"github.com/viant/bucketfs/store"
)

// Index maps a normalized directory path to its immediate child names:
// files verbatim, subdirectories with a trailing separator. It is built once
// per manifest load and is immutable afterwards.
type Index struct {
	children map[string][]string
}

// NewIndex walks every key's path segments and inserts each prefix→child
// edge. Children are deduplicated and sorted for deterministic listings.
func NewIndex(files []store.Object) *Index {
	sets := map[string]map[string]struct{}{}
	add := func(dir, child string) {
		set, ok := sets[dir]
		if !ok {
			set = map[string]struct{}{}
			sets[dir] = set
		}
		set[child] = struct{}{}
	}
	for _, object := range files {
		key := strings.TrimPrefix(object.Key, "/")
		if key == "" {
			continue
		}
		segments := strings.Split(key, "/")
		dir := ""
		for i, segment := range segments {
			if segment == "" {
				continue
			}
			if i == len(segments)-1 {
				add(dir, segment)
			} else {
				add(dir, segment+"/")
				dir += segment + "/"
			}
		}
	}
	index := &Index{children: make(map[string][]string, len(sets))}
	for dir, set := range sets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		index.children[dir] = names
	}
	return index
}

// Children returns the immediate child names of the directory path, or an
// empty slice when the path has no entries. The root is "" or "/".
func (x *Index) Children(dir string) []string {
	names, ok := x.children[NormalizeDir(dir)]
	if !ok {
		return []string{}
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Len returns the number of indexed directories.
func (x *Index) Len() int {
	return len(x.children)
}

// NormalizeDir canonicalizes a directory path: no leading separator, a
// trailing separator unless the path is the root.
func NormalizeDir(dir string) string {
	dir = strings.TrimSpace(dir)
	dir = strings.TrimPrefix(dir, "/")
	if dir == "" {
		return ""
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}
