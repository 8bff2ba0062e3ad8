package variable

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// Adjacent identifier characters around a keyword. The left side also admits
// "/" so path-like matches surface and can be rejected later.
const (
	leftAdjacent  = `([-_\w\d/$]*)?`
	rightAdjacent = `([-_\w\d$]*)?`
)

// PatternBuilder compiles keyword extraction patterns and memoises them per
// token.
type PatternBuilder struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

// NewPatternBuilder creates a PatternBuilder with an empty pattern cache.
func NewPatternBuilder() *PatternBuilder {
	return &PatternBuilder{compiled: make(map[string]*regexp.Regexp)}
}

// Build returns one case-insensitive pattern per query token longer than a
// single character, in query order.
func (b *PatternBuilder) Build(query string) []*regexp.Regexp {
	tokens := strings.Split(query, " ")
	patterns := make([]*regexp.Regexp, 0, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		patterns = append(patterns, b.pattern(token))
	}
	return patterns
}

func (b *PatternBuilder) pattern(token string) *regexp.Regexp {
	key := strings.ToLower(token)

	b.mu.Lock()
	defer b.mu.Unlock()

	if re, ok := b.compiled[key]; ok {
		return re
	}
	re := KeywordPattern(token)
	b.compiled[key] = re
	return re
}

// KeywordPattern compiles the extraction pattern for a single token. The token
// is matched literally.
func KeywordPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + leftAdjacent + regexp.QuoteMeta(token) + rightAdjacent)
}
