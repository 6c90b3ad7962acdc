// Package origin validates claimed sender origins against configured
// allow patterns. A pattern is either a literal origin or contains `*`
// segments that match any run of characters.
package origin

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

const wildcard = "*"

// metaChars are escaped before wildcard substitution so that URL
// punctuation stays literal and `*` is never itself escaped.
const metaChars = `.-[]()?\^$=:+{}|`

// Expression returns the anchored regular expression source for pattern.
func Expression(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	b.WriteString("^(?s:")
	for _, r := range pattern {
		switch {
		case r == '*':
			b.WriteString(".*?")
		case strings.ContainsRune(metaChars, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(")$")
	return b.String()
}

// Compile turns pattern into an anchored regular expression. It fails
// only when the expression exceeds the regexp size limits.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(Expression(pattern))
}

// Match reports whether origin satisfies pattern without caching. Input
// that the regexp engine cannot represent byte for byte (invalid UTF-8,
// oversized patterns) is matched segment by segment instead.
func Match(origin, pattern string) bool {
	if !HasWildcard(pattern) {
		return origin == pattern
	}
	if !utf8.ValidString(pattern) || !utf8.ValidString(origin) {
		return segmentMatch(origin, pattern)
	}
	re, err := Compile(pattern)
	if err != nil {
		return segmentMatch(origin, pattern)
	}
	return re.MatchString(origin)
}

// segmentMatch requires the fixed segments between wildcards to appear
// in order, with the first and last anchored at the ends of origin.
func segmentMatch(origin, pattern string) bool {
	parts := strings.Split(pattern, wildcard)
	if len(parts) == 1 {
		return origin == pattern
	}
	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(origin, first) {
		return false
	}
	rest := origin[len(first):]
	for _, mid := range parts[1 : len(parts)-1] {
		idx := strings.Index(rest, mid)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(mid):]
	}
	return strings.HasSuffix(rest, last)
}

// HasWildcard reports whether pattern needs compilation.
func HasWildcard(pattern string) bool {
	return strings.Contains(pattern, wildcard)
}

type entry struct {
	origin  string
	pattern string
	result  bool
}

// Validator answers origin checks, memoizing the most recent wildcard
// test. The zero value is ready to use.
type Validator struct {
	mu     sync.Mutex
	last   entry
	cached bool
	// compiles counts cache misses on the wildcard path.
	compiles int
}

// IsValid reports whether origin satisfies pattern. Patterns without a
// wildcard are compared for equality and never touch the cache.
func (v *Validator) IsValid(origin, pattern string) bool {
	if !HasWildcard(pattern) {
		return origin == pattern
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cached && v.last.origin == origin && v.last.pattern == pattern {
		return v.last.result
	}
	v.compiles++
	result := Match(origin, pattern)
	v.last = entry{origin: origin, pattern: pattern, result: result}
	v.cached = true
	return result
}

// Any reports whether origin satisfies at least one of patterns.
func (v *Validator) Any(origin string, patterns ...string) bool {
	for _, p := range patterns {
		if v.IsValid(origin, p) {
			return true
		}
	}
	return false
}

var defaultValidator Validator

// IsValidOrigin checks origin against pattern using a shared Validator.
func IsValidOrigin(origin, pattern string) bool {
	return defaultValidator.IsValid(origin, pattern)
}

// AllowOriginFunc adapts patterns to a CORS allow callback. Blank
// patterns are skipped.
func AllowOriginFunc(patterns ...string) func(string) bool {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	v := &Validator{}
	return func(origin string) bool {
		return v.Any(origin, cleaned...)
	}
}
