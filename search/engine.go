package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/viant/bucketfs/cache"
	"github.com/viant/bucketfs/finder"
	"github.com/viant/bucketfs/pattern"
	"github.com/viant/bucketfs/store"
)

// Engine answers search requests. Each request walks a fixed sequence of
// phases: candidate files are resolved and warmed into the local cache, then
// the external tool scans the cache root and its output is mapped back to
// object keys. When the tool is unavailable or nothing could be cached the
// engine scans remote content in process instead.
type Engine struct {
	finder      *finder.Finder
	cache       *cache.Cache
	remote      store.Store
	bucket      string
	runner      runner
	timeout     time.Duration
	concurrency int
	logger      *zap.Logger

	// One request at a time owns the cache root while the tool runs.
	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithBinary overrides the external tool binary (default DefaultBinary).
func WithBinary(binary string) Option {
	return func(e *Engine) {
		e.runner.binary = binary
	}
}

// WithTimeout overrides the per-request wall clock budget.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithConcurrency overrides the cache warm-up download window.
func WithConcurrency(concurrency int) Option {
	return func(e *Engine) {
		if concurrency > 0 {
			e.concurrency = concurrency
		}
	}
}

// WithLogger sets the logger (default no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a search engine. The cache may be nil, in which case every
// request takes the remote fallback path.
func New(fnd *finder.Finder, contentCache *cache.Cache, remote store.Store, bucket string, opts ...Option) *Engine {
	engine := &Engine{
		finder:      fnd,
		cache:       contentCache,
		remote:      remote,
		bucket:      bucket,
		runner:      runner{binary: DefaultBinary},
		timeout:     DefaultTimeout,
		concurrency: cache.DefaultBatchConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Search runs one request to a terminal outcome. Validation failures return
// an error; everything after validation is reported through Result.Outcome.
func (e *Engine) Search(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, fmt.Errorf("search pattern was empty: %w", store.ErrInvalidArgument)
	}
	matcher, err := compilePattern(req)
	if err != nil {
		return nil, fmt.Errorf("search pattern %q: %w", req.Pattern, store.ErrInvalidArgument)
	}
	limit := req.MaxResults
	if limit <= 0 || limit > TotalMatches {
		limit = TotalMatches
	}

	candGlob := req.Glob
	if candGlob == "" {
		candGlob = "**/*"
	}
	ids, err := e.finder.Find(ctx, candGlob, finder.Options{BasePrefix: req.Path, MaxResults: MaxCandidates})
	if err != nil {
		return nil, fmt.Errorf("resolve search candidates: %w", err)
	}
	if len(ids) == 0 {
		return &Result{Outcome: OutcomeCompleted, Matches: []Match{}}, nil
	}

	if e.cache == nil || !e.runner.available() {
		return e.fallback(ctx, req, ids, matcher, limit)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	batch, err := e.cache.EnsureCachedBatch(ctx, ids, cache.BatchOptions{MaxConcurrent: e.concurrency})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &Result{Outcome: OutcomeAborted}, nil
		}
		return nil, fmt.Errorf("warm search candidates: %w", err)
	}
	for id, cause := range batch.Failures {
		e.logger.Warn("search candidate not cached", zap.String("object", id), zap.Error(cause))
	}
	if batch.Succeeded() == 0 {
		return e.fallback(ctx, req, ids, matcher, limit)
	}

	output := e.runner.run(ctx, e.timeout, grepArgs(req, e.cache.Root()))
	switch output.outcome {
	case OutcomeCompleted:
		matches, truncated := e.collect(output.stdout, req, limit)
		return &Result{Outcome: OutcomeCompleted, Matches: matches, Truncated: truncated}, nil
	case OutcomeFailed:
		e.logger.Warn("search tool failed", zap.String("diagnostic", output.stderr))
		return &Result{Outcome: OutcomeFailed, Diagnostic: output.stderr}, nil
	default:
		return &Result{Outcome: output.outcome}, nil
	}
}

// collect maps tool output lines back to object keys and applies the path,
// glob and total-match constraints. The cache root may hold files from
// earlier requests, so every line is re-filtered against this request.
func (e *Engine) collect(stdout []byte, req Request, limit int) ([]Match, bool) {
	base := normalizePrefix(req.Path)
	matches := []Match{}
	truncated := false
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		match, ok := e.parseLine(scanner.Text())
		if !ok {
			continue
		}
		if base != "" && !strings.HasPrefix(match.Key, base) {
			continue
		}
		if req.Glob != "" && !pattern.Match(req.Glob, strings.TrimPrefix(match.Key, base)) {
			continue
		}
		if len(matches) >= limit {
			truncated = true
			break
		}
		matches = append(matches, match)
	}
	return matches, truncated
}

// parseLine splits one path:line:content row and resolves the local path back
// to its object identifier. Rows for files evicted between scan and parse are
// dropped.
func (e *Engine) parseLine(line string) (Match, bool) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return Match{}, false
	}
	lineNo, err := strconv.Atoi(parts[1])
	if err != nil {
		return Match{}, false
	}
	id, ok := e.cache.PathIdentifier(parts[0])
	if !ok {
		return Match{}, false
	}
	return Match{Key: id.Key, Line: lineNo, Text: parts[2]}, true
}

func compilePattern(req Request) (*regexp.Regexp, error) {
	expr := req.Pattern
	if !req.CaseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
