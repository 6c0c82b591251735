package cache

import (
	"fmt"
	"path"

	"github.com/minio/highwayhash"

	"github.com/viant/bucketfs/store"
)

var hashKey = []byte("FEDCBA9876543210FEDCBA9876543210")

// localName derives the cache-relative file name for an identifier. The name
// hashes the identifier string, not the content, so it is stable across
// object updates; the key's base name is kept so glob and file-type filters
// still apply to cached copies.
func localName(id store.Identifier) string {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// The key is a compile-time constant of valid length.
		panic(err)
	}
	_, _ = h.Write([]byte(id.String()))
	hex := fmt.Sprintf("%016x", h.Sum64())
	return path.Join(hex[:2], hex+"_"+path.Base(id.Key))
}
