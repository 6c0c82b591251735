package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/viant/bucketfs/finder"
	"github.com/viant/bucketfs/manifest"
	"github.com/viant/bucketfs/store"
)

const testBucket = "corpus"

type fixture struct {
	fs       afs.Service
	baseURL  string
	remote   store.Store
	manifest *manifest.Store
}

func newFixture(t *testing.T, objects map[string]string) *fixture {
	t.Helper()
	ctx := context.Background()
	fs := afs.New()
	baseURL := fmt.Sprintf("mem://localhost/search/%v", t.Name())
	manifestURL := url.Join(baseURL, "manifest.json")
	keys := make([]string, 0, len(objects))
	for key, content := range objects {
		objectURL := url.Join(url.Join(baseURL, testBucket), key)
		if err := fs.Upload(ctx, objectURL, file.DefaultFileOsMode, strings.NewReader(content)); err != nil {
			t.Fatalf("seed %v: %v", key, err)
		}
		keys = append(keys, key)
	}
	payload, _ := json.Marshal(map[string]any{"files": keys, "lastUpdated": "2024-05-02T00:00:00Z"})
	if err := fs.Upload(ctx, manifestURL, file.DefaultFileOsMode, strings.NewReader(string(payload))); err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
	return &fixture{
		fs:       fs,
		baseURL:  baseURL,
		remote:   store.NewAFS(fs, baseURL),
		manifest: manifest.NewStore(fs, manifestURL),
	}
}

// fallbackEngine forces the in-process path with an unresolvable tool binary
// and no cache.
func (f *fixture) fallbackEngine(opts ...Option) *Engine {
	opts = append([]Option{WithBinary("no-such-search-tool")}, opts...)
	return New(finder.New(f.remote, f.manifest, testBucket), nil, f.remote, testBucket, opts...)
}

func TestSearchFallbackCapsAndTrailer(t *testing.T) {
	// 15 files with 20 matching lines each: the per-file cap keeps 10 per
	// file, the total cap keeps 100 of those 150.
	objects := map[string]string{}
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("line %d has a needle in it", i))
	}
	body := strings.Join(lines, "\n")
	for i := 0; i < 15; i++ {
		objects[fmt.Sprintf("logs/file%02d.log", i)] = body
	}
	engine := newFixture(t, objects).fallbackEngine()

	result, err := engine.Search(context.Background(), Request{Pattern: "needle"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Outcome != OutcomeCompleted {
		t.Fatalf("outcome: got %v, want %v", result.Outcome, OutcomeCompleted)
	}
	if len(result.Matches) != TotalMatches {
		t.Fatalf("matches: got %d, want %d", len(result.Matches), TotalMatches)
	}
	if !result.Truncated {
		t.Fatal("expected truncated result")
	}
	perFile := map[string]int{}
	for _, match := range result.Matches {
		perFile[match.Key]++
	}
	for key, count := range perFile {
		if count > PerFileMatches {
			t.Fatalf("file %v has %d matches, cap is %d", key, count, PerFileMatches)
		}
	}
	rendered := result.Lines()
	if len(rendered) != TotalMatches+2 {
		t.Fatalf("rendered lines: got %d, want %d", len(rendered), TotalMatches+2)
	}
	if !strings.Contains(rendered[TotalMatches], "truncated") {
		t.Fatalf("trailer missing truncation notice: %q", rendered[TotalMatches])
	}
	if !strings.Contains(rendered[TotalMatches+1], "Narrow the search") {
		t.Fatalf("trailer missing narrowing advice: %q", rendered[TotalMatches+1])
	}
}

func TestSearchFallbackExactFitIsNotTruncated(t *testing.T) {
	engine := newFixture(t, map[string]string{
		"a.txt": "needle one\nneedle two",
	}).fallbackEngine()

	result, err := engine.Search(context.Background(), Request{Pattern: "needle"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Matches) != 2 || result.Truncated {
		t.Fatalf("got %d matches truncated=%v, want 2 untruncated", len(result.Matches), result.Truncated)
	}
	if got := result.Matches[1]; got.Line != 2 || got.Text != "needle two" {
		t.Fatalf("unexpected match: %+v", got)
	}
}

func TestSearchFallbackCaseSensitivity(t *testing.T) {
	fix := newFixture(t, map[string]string{"a.txt": "Needle\nneedle"})
	engine := fix.fallbackEngine()
	ctx := context.Background()

	insensitive, err := engine.Search(ctx, Request{Pattern: "needle"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(insensitive.Matches) != 2 {
		t.Fatalf("insensitive: got %d matches, want 2", len(insensitive.Matches))
	}
	sensitive, err := engine.Search(ctx, Request{Pattern: "needle", CaseSensitive: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(sensitive.Matches) != 1 || sensitive.Matches[0].Line != 2 {
		t.Fatalf("sensitive: got %+v, want one match on line 2", sensitive.Matches)
	}
}

func TestSearchFallbackPathAndGlobFilters(t *testing.T) {
	fix := newFixture(t, map[string]string{
		"src/main.go":    "needle in go",
		"src/util.txt":   "needle in text",
		"docs/readme.md": "needle in docs",
	})
	engine := fix.fallbackEngine()
	ctx := context.Background()

	byPath, err := engine.Search(ctx, Request{Pattern: "needle", Path: "src"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byPath.Matches) != 2 {
		t.Fatalf("path filter: got %d matches, want 2", len(byPath.Matches))
	}
	byGlob, err := engine.Search(ctx, Request{Pattern: "needle", Path: "src", Glob: "*.go"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byGlob.Matches) != 1 || byGlob.Matches[0].Key != "src/main.go" {
		t.Fatalf("glob filter: got %+v, want src/main.go only", byGlob.Matches)
	}
}

func TestSearchFallbackTruncatesLongLines(t *testing.T) {
	long := "needle " + strings.Repeat("x", MaxColumns)
	engine := newFixture(t, map[string]string{"a.txt": long}).fallbackEngine()

	result, err := engine.Search(context.Background(), Request{Pattern: "needle"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Matches) != 1 || result.Matches[0].Text != longLineMarker {
		t.Fatalf("got %+v, want single omitted-line marker", result.Matches)
	}
}

func TestSearchValidation(t *testing.T) {
	engine := newFixture(t, map[string]string{"a.txt": "x"}).fallbackEngine()
	ctx := context.Background()

	if _, err := engine.Search(ctx, Request{Pattern: "  "}); !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("empty pattern: got %v, want ErrInvalidArgument", err)
	}
	if _, err := engine.Search(ctx, Request{Pattern: "[unclosed"}); !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("bad regex: got %v, want ErrInvalidArgument", err)
	}
}

func TestSearchNoCandidates(t *testing.T) {
	engine := newFixture(t, map[string]string{"a.txt": "needle"}).fallbackEngine()

	result, err := engine.Search(context.Background(), Request{Pattern: "needle", Glob: "*.nomatch"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Outcome != OutcomeCompleted || len(result.Matches) != 0 || result.Truncated {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSearchFallbackAborted(t *testing.T) {
	engine := newFixture(t, map[string]string{"a.txt": "needle"}).fallbackEngine()

	// Warm the manifest snapshot so candidate resolution does not need I/O,
	// then cancel before the scan phase.
	if _, err := engine.Search(context.Background(), Request{Pattern: "needle"}); err != nil {
		t.Fatalf("warm search: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := engine.Search(ctx, Request{Pattern: "needle"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Outcome != OutcomeAborted {
		t.Fatalf("outcome: got %v, want %v", result.Outcome, OutcomeAborted)
	}
}

func TestSearchFallbackSkipsUnreadableObjects(t *testing.T) {
	fix := newFixture(t, map[string]string{
		"a.txt": "needle a",
		"b.txt": "needle b",
	})
	engine := fix.fallbackEngine()
	ctx := context.Background()

	// Remove one object after the manifest was written; the scan skips it.
	if err := fix.fs.Delete(ctx, url.Join(url.Join(fix.baseURL, testBucket), "a.txt")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	result, err := engine.Search(ctx, Request{Pattern: "needle"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Matches) != 1 || result.Matches[0].Key != "b.txt" {
		t.Fatalf("got %+v, want b.txt only", result.Matches)
	}
}

func TestSearchMaxResultsOverride(t *testing.T) {
	var lines []string
	for i := 0; i < 9; i++ {
		lines = append(lines, "needle")
	}
	engine := newFixture(t, map[string]string{"a.txt": strings.Join(lines, "\n")}).fallbackEngine()

	result, err := engine.Search(context.Background(), Request{Pattern: "needle", MaxResults: 5})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Matches) != 5 || !result.Truncated {
		t.Fatalf("got %d matches truncated=%v, want 5 truncated", len(result.Matches), result.Truncated)
	}
}
