// Package pattern implements glob matching and fixed-prefix extraction for
// slash-separated object keys.
package pattern

import (
	"path"
	"strings"
)

const meta = "*?[{"

func hasMeta(segment string) bool {
	return strings.ContainsAny(segment, meta)
}

// FixedPrefix returns the longest literal leading path of pattern: literal
// segments are accumulated until the first segment containing a glob
// metacharacter. The result carries a trailing separator except when the
// whole pattern is literal, in which case the full pattern is returned as
// is (the final segment names a file, not a directory).
func FixedPrefix(pattern string) string {
	if pattern == "" {
		return ""
	}
	segments := strings.Split(pattern, "/")
	literal := 0
	for _, segment := range segments {
		if hasMeta(segment) {
			break
		}
		literal++
	}
	if literal == 0 {
		return ""
	}
	if literal == len(segments) {
		return pattern
	}
	return strings.Join(segments[:literal], "/") + "/"
}

// Match reports whether a slash-separated path satisfies the glob pattern.
// `*` matches any run of non-separator characters, `**` matches across
// separators, `?` matches a single character, `[...]` character classes and
// `{a,b}` alternation are supported. Dot-prefixed segments carry no special
// treatment.
func Match(pattern, value string) bool {
	if pattern == "" || value == "" {
		return false
	}
	// Patterns of the exact shape **/<literal> only ever constrain the final
	// segment; compare against it directly to avoid the segment walk.
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok &&
		!strings.Contains(rest, "/") && !hasMeta(rest) {
		return lastSegment(value) == rest
	}
	for _, expanded := range expandBraces(pattern) {
		if matchGlob(expanded, value) {
			return true
		}
	}
	return false
}

func lastSegment(value string) string {
	if idx := strings.LastIndex(value, "/"); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

func matchGlob(pattern, value string) bool {
	pattern = normalize(pattern)
	value = normalize(value)
	if pattern == "" || value == "" {
		return false
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(value, "/"))
}

func normalize(v string) string {
	v = strings.TrimSpace(strings.ReplaceAll(v, "\\", "/"))
	v = strings.TrimPrefix(v, "./")
	v = strings.TrimPrefix(v, "/")
	return strings.TrimSuffix(v, "/")
}

func matchSegments(pParts, vParts []string) bool {
	if len(pParts) == 0 {
		return len(vParts) == 0
	}
	if pParts[0] == "**" {
		for i := 0; i <= len(vParts); i++ {
			if matchSegments(pParts[1:], vParts[i:]) {
				return true
			}
		}
		return false
	}
	if len(vParts) == 0 {
		return false
	}
	ok, err := path.Match(pParts[0], vParts[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pParts[1:], vParts[1:])
}

// expandBraces rewrites {a,b} alternation into plain glob variants. Nested
// braces expand recursively; an unbalanced brace is left verbatim.
func expandBraces(pattern string) []string {
	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		return []string{pattern}
	}
	depth := 0
	for i := open; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var out []string
				for _, alt := range splitAlternatives(pattern[open+1 : i]) {
					out = append(out, expandBraces(pattern[:open]+alt+pattern[i+1:])...)
				}
				return out
			}
		}
	}
	return []string{pattern}
}

func splitAlternatives(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}
