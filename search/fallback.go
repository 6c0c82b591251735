package search

import (
	"bufio"
	"context"
	"regexp"

	"go.uber.org/zap"

	"github.com/viant/bucketfs/store"
)

const longLineMarker = "[omitted long line]"

// fallback scans candidate objects in process when the external tool or the
// local cache is unavailable. It honors the same per-file, per-line and total
// caps as the tool path so callers see one result shape.
func (e *Engine) fallback(ctx context.Context, req Request, ids []store.Identifier, matcher *regexp.Regexp, limit int) (*Result, error) {
	matches := []Match{}
	truncated := false
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return &Result{Outcome: OutcomeAborted}, nil
		}
		fileMatches, more := e.scanObject(ctx, id, matcher, limit-len(matches))
		matches = append(matches, fileMatches...)
		if more {
			truncated = true
		}
		if len(matches) >= limit {
			// Candidates left unscanned count as truncation.
			if i < len(ids)-1 {
				truncated = true
			}
			break
		}
	}
	return &Result{Outcome: OutcomeCompleted, Matches: matches, Truncated: truncated}, nil
}

// scanObject collects up to PerFileMatches matches from one object, bounded
// by the remaining request budget. Unreadable objects are skipped so a
// single bad key never fails the whole search. The second return reports
// whether matching lines beyond the budget were left behind.
func (e *Engine) scanObject(ctx context.Context, id store.Identifier, matcher *regexp.Regexp, budget int) ([]Match, bool) {
	if budget <= 0 {
		return nil, false
	}
	reader, err := e.remote.GetObject(ctx, id)
	if err != nil {
		e.logger.Warn("search skipped unreadable object", zap.String("object", id.String()), zap.Error(err))
		return nil, false
	}
	defer reader.Close()

	var out []Match
	lineNo := 0
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if !matcher.MatchString(text) {
			continue
		}
		if len(out) >= PerFileMatches || len(out) >= budget {
			return out, true
		}
		if len(text) > MaxColumns {
			text = longLineMarker
		}
		out = append(out, Match{Key: id.Key, Line: lineNo, Text: text})
	}
	if err := scanner.Err(); err != nil {
		e.logger.Warn("search object scan failed", zap.String("object", id.String()), zap.Error(err))
	}
	return out, false
}
