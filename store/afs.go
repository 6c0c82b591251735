package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// AFSStore serves buckets rooted under a base URL through the viant/afs
// abstraction (file://, mem://). It backs development and tests; the S3
// implementation lives in store/s3.
type AFSStore struct {
	fs      afs.Service
	baseURL string
}

// NewAFS creates a store whose bucket b maps to url.Join(baseURL, b).
func NewAFS(fs afs.Service, baseURL string) *AFSStore {
	return &AFSStore{fs: fs, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (a *AFSStore) bucketURL(bucket string) string {
	return url.Join(a.baseURL, bucket)
}

// GetObject implements Store.
func (a *AFSStore) GetObject(ctx context.Context, id Identifier) (io.ReadCloser, error) {
	objectURL := url.Join(a.bucketURL(id.Bucket), id.Key)
	ok, err := a.fs.Exists(ctx, objectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %v: %v", ErrUpstream, id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	reader, err := a.fs.OpenURL(ctx, objectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: open %v: %v", ErrUpstream, id, err)
	}
	return reader, nil
}

// ListObjects implements Store. AFS has no native continuation tokens, so
// the full bucket is walked once per call and the token carries the last
// returned key ("start after" semantics over the sorted listing).
func (a *AFSStore) ListObjects(ctx context.Context, bucket, prefix, token string, maxKeys int) (*Page, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultPageSize
	}
	var all []Object
	if err := a.walk(ctx, a.bucketURL(bucket), "", &all); err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	page := &Page{}
	for _, object := range all {
		if prefix != "" && !strings.HasPrefix(object.Key, prefix) {
			continue
		}
		if token != "" && object.Key <= token {
			continue
		}
		if len(page.Objects) == maxKeys {
			page.NextToken = page.Objects[maxKeys-1].Key
			return page, nil
		}
		page.Objects = append(page.Objects, object)
	}
	return page, nil
}

func (a *AFSStore) walk(ctx context.Context, location, relBase string, out *[]Object) error {
	objects, err := a.fs.List(ctx, location)
	if err != nil {
		return fmt.Errorf("%w: list %v: %v", ErrUpstream, location, err)
	}
	for _, object := range objects {
		name := object.Name()
		if object.IsDir() {
			if url.Equals(object.URL(), location) || name == "" {
				continue
			}
			if err := a.walk(ctx, url.Join(location, name), joinKey(relBase, name), out); err != nil {
				return err
			}
			continue
		}
		size := object.Size()
		modified := object.ModTime()
		*out = append(*out, Object{
			Key:          joinKey(relBase, name),
			Size:         &size,
			LastModified: timePtr(modified),
		})
	}
	return nil
}

func joinKey(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
