package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint identifies a cached result page.
type Fingerprint string

// NewFingerprint hashes the effective query, the page and the language
// filters. Filter order does not change the result.
func NewFingerprint(query string, page int, languages []string) Fingerprint {
	langs := make([]string, len(languages))
	copy(langs, languages)
	sortStrings(langs)

	var data strings.Builder
	data.WriteString(query)
	data.WriteString("|")
	data.WriteString(strconv.Itoa(page))
	data.WriteString("|")
	data.WriteString(strings.Join(langs, ","))

	sum := sha256.Sum256([]byte(data.String()))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

func sortStrings(s []string) {
	sort.Strings(s)
}
