package finder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/viant/bucketfs/manifest"
	"github.com/viant/bucketfs/store"
)

const testBucket = "data"

func seedBucket(t *testing.T, fs afs.Service, baseURL string, keys ...string) {
	t.Helper()
	ctx := context.Background()
	for _, key := range keys {
		objectURL := url.Join(url.Join(baseURL, testBucket), key)
		if err := fs.Upload(ctx, objectURL, file.DefaultFileOsMode, strings.NewReader("content of "+key)); err != nil {
			t.Fatalf("seed %v: %v", key, err)
		}
	}
}

func seedManifest(t *testing.T, fs afs.Service, manifestURL string, keys ...string) {
	t.Helper()
	payload, _ := json.Marshal(map[string]any{"files": keys, "lastUpdated": "2024-05-02T00:00:00Z"})
	if err := fs.Upload(context.Background(), manifestURL, file.DefaultFileOsMode, strings.NewReader(string(payload))); err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
}

func keysOf(ids []store.Identifier) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Key)
	}
	return out
}

func testURLs(t *testing.T) (string, string) {
	base := fmt.Sprintf("mem://localhost/finder/%v", t.Name())
	return base, url.Join(base, "manifest.json")
}

func TestFindManifestAndRemoteAgree(t *testing.T) {
	keys := []string{
		"a/b/x.txt", "a/b/y.json", "a/c/z.txt", "a/b/deep/n.txt",
		"top.txt", "src/main.go", "src/util/helper.go",
	}
	patterns := []string{"a/b/*.txt", "**/*.go", "**/*.txt", "a/**/*.txt", "src/main.go", "*.txt", "**/z.txt"}

	fs := afs.New()
	baseURL, manifestURL := testURLs(t)
	seedBucket(t, fs, baseURL, keys...)
	seedManifest(t, fs, manifestURL, keys...)

	remote := store.NewAFS(fs, baseURL)
	withManifest := New(remote, manifest.NewStore(fs, manifestURL), testBucket)
	withoutManifest := New(remote, nil, testBucket)

	ctx := context.Background()
	for _, glob := range patterns {
		fromManifest, err := withManifest.Find(ctx, glob, Options{})
		if err != nil {
			t.Fatalf("%q manifest find: %v", glob, err)
		}
		fromRemote, err := withoutManifest.Find(ctx, glob, Options{})
		if err != nil {
			t.Fatalf("%q remote find: %v", glob, err)
		}
		a, b := keysOf(fromManifest), keysOf(fromRemote)
		if len(a) != len(b) {
			t.Errorf("%q: manifest %v vs remote %v", glob, a, b)
			continue
		}
		seen := map[string]bool{}
		for _, k := range a {
			seen[k] = true
		}
		for _, k := range b {
			if !seen[k] {
				t.Errorf("%q: remote-only match %q", glob, k)
			}
		}
	}
}

func TestFindPrefixPruningKeepsAllMatches(t *testing.T) {
	keys := []string{"a/b/x.txt", "a/b/y.txt", "a/c/z.txt", "b/x.txt"}
	fs := afs.New()
	baseURL, manifestURL := testURLs(t)
	seedManifest(t, fs, manifestURL, keys...)
	f := New(store.NewAFS(fs, baseURL), manifest.NewStore(fs, manifestURL), testBucket)

	got, err := f.Find(context.Background(), "a/b/*.txt", Options{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", keysOf(got))
	}
}

func TestFindBasePrefixRelativeMatching(t *testing.T) {
	keys := []string{"proj/src/main.go", "proj/src/util/x.go", "other/src/main.go"}
	fs := afs.New()
	baseURL, manifestURL := testURLs(t)
	seedManifest(t, fs, manifestURL, keys...)
	f := New(store.NewAFS(fs, baseURL), manifest.NewStore(fs, manifestURL), testBucket)

	got, err := f.Find(context.Background(), "src/*.go", Options{BasePrefix: "proj"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Key != "proj/src/main.go" {
		t.Fatalf("unexpected matches: %v", keysOf(got))
	}
}

func TestFindMaxResultsEarlyStop(t *testing.T) {
	var keys []string
	for i := 0; i < 50; i++ {
		keys = append(keys, fmt.Sprintf("logs/entry-%03d.log", i))
	}
	fs := afs.New()
	baseURL, manifestURL := testURLs(t)
	seedBucket(t, fs, baseURL, keys...)
	seedManifest(t, fs, manifestURL, keys...)
	f := New(store.NewAFS(fs, baseURL), manifest.NewStore(fs, manifestURL), testBucket)

	got, err := f.Find(context.Background(), "logs/*.log", Options{MaxResults: 7})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 results, got %d", len(got))
	}

	remoteOnly := New(store.NewAFS(fs, baseURL), nil, testBucket)
	got, err = remoteOnly.Find(context.Background(), "logs/*.log", Options{MaxResults: 7})
	if err != nil {
		t.Fatalf("remote find: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 remote results, got %d", len(got))
	}
}

func TestFindSkipsDirectoryMarkers(t *testing.T) {
	keys := []string{"a/b/", "a/b/x.txt", "docs/", "docs/guide.md"}
	fs := afs.New()
	baseURL, manifestURL := testURLs(t)
	seedManifest(t, fs, manifestURL, keys...)
	f := New(store.NewAFS(fs, baseURL), manifest.NewStore(fs, manifestURL), testBucket)

	got, err := f.Find(context.Background(), "**/*", Options{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	for _, id := range got {
		if strings.HasSuffix(id.Key, "/") {
			t.Errorf("directory marker returned as match: %q", id.Key)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", keysOf(got))
	}
}

func TestFindIdentifierForm(t *testing.T) {
	fs := afs.New()
	baseURL, manifestURL := testURLs(t)
	seedManifest(t, fs, manifestURL, "a/x.txt")
	f := New(store.NewAFS(fs, baseURL), manifest.NewStore(fs, manifestURL), testBucket, WithScheme("mem"))
	got, err := f.Find(context.Background(), "**/*.txt", Options{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].String() != "mem://data/a/x.txt" {
		t.Fatalf("unexpected identifiers: %v", got)
	}
}
