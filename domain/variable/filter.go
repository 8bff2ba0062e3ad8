package variable

import (
	"strings"
	"unicode/utf8"
)

// MaxKeywordLength is the exclusive upper bound on candidate length.
const MaxKeywordLength = 64

// TrimMatch strips leading and trailing runs of "-" and "/" from a raw match.
func TrimMatch(match string) string {
	return strings.TrimRight(strings.TrimLeft(match, "-/"), "-/")
}

// IsLinkLike reports whether the match looks like a path or URL fragment.
func IsLinkLike(match string) bool {
	return strings.Contains(match, "/")
}

// IsTooLong reports whether the match is too long to be a variable name.
func IsTooLong(match string) bool {
	return utf8.RuneCountInString(match) >= MaxKeywordLength
}

// Indexable reports whether a trimmed match may be recorded in a RepoIndex.
func Indexable(match string) bool {
	return match != "" && !IsLinkLike(match) && !IsTooLong(match)
}

// keywordSet tracks accepted keywords of one extraction pass, ignoring case.
type keywordSet map[string]struct{}

// add records keyword and reports whether it was not present yet.
func (s keywordSet) add(keyword string) bool {
	key := strings.ToLower(keyword)
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}
