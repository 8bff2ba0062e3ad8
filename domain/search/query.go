// Package search provides the value types of a variable search: normalised
// queries, cache fingerprints, result pages and the observable search state.
package search

import (
	"strings"
)

// DefaultPerPage is the number of results requested per page.
const DefaultPerPage = 42

// NormalizeQuery trims value and collapses internal whitespace runs to a
// single space. Unicode spaces such as U+00A0 and U+3000 count as
// whitespace.
func NormalizeQuery(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Words splits a normalised query into its space separated words.
func Words(query string) []string {
	if query == "" {
		return nil
	}
	return strings.Split(query, " ")
}

// NormalizeLanguages returns the distinct, non-empty language filters in
// sorted order.
func NormalizeLanguages(languages []string) []string {
	seen := make(map[string]struct{}, len(languages))
	result := make([]string, 0, len(languages))
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		result = append(result, lang)
	}
	sortStrings(result)
	return result
}

// Request is a paged query against the remote index.
type Request struct {
	query     string
	page      int
	perPage   int
	languages []string
}

// NewRequest creates a Request. Languages are normalised and perPage falls
// back to DefaultPerPage when not positive.
func NewRequest(query string, page, perPage int, languages []string) Request {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 0 {
		page = 0
	}
	return Request{
		query:     query,
		page:      page,
		perPage:   perPage,
		languages: NormalizeLanguages(languages),
	}
}

// Query returns the effective query text.
func (r Request) Query() string { return r.query }

// Page returns the zero based page number.
func (r Request) Page() int { return r.page }

// PerPage returns the page size.
func (r Request) PerPage() int { return r.perPage }

// Languages returns the sorted language filters.
func (r Request) Languages() []string {
	langs := make([]string, len(r.languages))
	copy(langs, r.languages)
	return langs
}

// Fingerprint returns the cache fingerprint of the request.
func (r Request) Fingerprint() Fingerprint {
	return NewFingerprint(r.query, r.page, r.languages)
}
