// Package variable extracts candidate variable names from code search results.
//
// A search result page is a list of RepoRef values as returned by the remote
// index. The Extractor turns every page into an ordered list of Candidate
// values: identifier-like tokens that co-occur with the query terms, each
// linked to the repositories that produced it through a RepoIndex.
package variable

import (
	"sort"
	"strings"
)

const (
	gitProtocolPrefix  = "git://github.com"
	httpsGitHubPrefix  = "https://github.com"
	base64Marker       = ";base64,"
	maxEmbeddedLineLen = 256
)

// RepoRef is a single matched file from the remote index.
type RepoRef struct {
	ID         int64          `json:"id"`
	Repo       string         `json:"repo"`
	Language   string         `json:"language"`
	Lines      map[int]string `json:"lines"`
	Name       string         `json:"name,omitempty"`
	Filename   string         `json:"filename,omitempty"`
	Location   string         `json:"location,omitempty"`
	URL        string         `json:"url,omitempty"`
	LinesCount int            `json:"linescount,omitempty"`
}

// NormalizeRepoURL rewrites the git protocol GitHub prefix to https.
func NormalizeRepoURL(repo string) string {
	return strings.Replace(repo, gitProtocolPrefix, httpsGitHubPrefix, 1)
}

// WithNormalizedURL returns a copy of r with its repository URL rewritten.
func (r RepoRef) WithNormalizedURL() RepoRef {
	r.Repo = NormalizeRepoURL(r.Repo)
	return r
}

// LineNumbers returns the line numbers of r in ascending order.
func (r RepoRef) LineNumbers() []int {
	numbers := make([]int, 0, len(r.Lines))
	for n := range r.Lines {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// FlattenedLines joins the matched lines into a single string for matching.
// Embedded base64 payloads longer than 256 characters are dropped and CRLF
// pairs become a single space.
func (r RepoRef) FlattenedLines() string {
	var b strings.Builder
	for _, n := range r.LineNumbers() {
		line := r.Lines[n]
		if IsEmbeddedData(line) {
			continue
		}
		b.WriteString(line)
	}
	return strings.ReplaceAll(b.String(), "\r\n", " ")
}

// IsEmbeddedData reports whether line is a long base64 data payload.
func IsEmbeddedData(line string) bool {
	return strings.Contains(line, base64Marker) && len([]rune(line)) > maxEmbeddedLineLen
}
