// Package search drives full-text search over cached local copies with an
// external tool, falling back to in-process regex matching over remote
// content when no cache is available.
package search

import (
	"fmt"
	"time"
)

// Limits and defaults for one search request.
const (
	DefaultTimeout = 45 * time.Second
	// MaxCandidates bounds how many files the preparing phase resolves.
	MaxCandidates = 1000
	// PerFileMatches caps reported matches per file.
	PerFileMatches = 10
	// TotalMatches caps reported matches per request.
	TotalMatches = 100
	// MaxColumns truncates overly long result lines.
	MaxColumns = 200
)

// Outcome is the single terminal state of a search request.
type Outcome string

const (
	OutcomeCompleted Outcome = "Completed"
	OutcomeTimedOut  Outcome = "TimedOut"
	OutcomeAborted   Outcome = "Aborted"
	OutcomeFailed    Outcome = "Failed"
)

// Request describes one search.
type Request struct {
	// Pattern is the regex handed to the search tool.
	Pattern string
	// CaseSensitive toggles case sensitivity; default is insensitive.
	CaseSensitive bool
	// Path restricts the search to keys under this prefix.
	Path string
	// Glob restricts the search to files whose key matches the glob.
	Glob string
	// MaxResults caps total matches; zero or anything above TotalMatches
	// falls back to TotalMatches.
	MaxResults int
}

// Match is one result line.
type Match struct {
	Key  string
	Line int
	Text string
}

// Result carries the terminal outcome of a request. Matches are only
// populated for OutcomeCompleted; Diagnostic carries the tool's captured
// error output for OutcomeFailed.
type Result struct {
	Outcome    Outcome
	Matches    []Match
	Truncated  bool
	Diagnostic string
}

// Lines renders matches as path:line:content rows. When the result was
// truncated a two-line trailer instructs the caller to narrow the search;
// that trailer is part of the interface contract, not decoration.
func (r *Result) Lines() []string {
	out := make([]string, 0, len(r.Matches)+2)
	for _, match := range r.Matches {
		out = append(out, fmt.Sprintf("%s:%d:%s", match.Key, match.Line, match.Text))
	}
	if r.Truncated {
		out = append(out,
			fmt.Sprintf("[truncated: showing first %d matches]", len(r.Matches)),
			"Narrow the search with a path or glob filter, or use a more specific pattern.")
	}
	return out
}
