package variable

import "sync"

// Extractor turns a page of search results into variable candidates.
//
// Each pass runs the keyword patterns over the flattened lines of every
// result, records indexable matches in the shared RepoIndex and accepts the
// first occurrence of every keyword (ignoring case). Passes are serialised so
// concurrent pages do not interleave their index updates.
type Extractor struct {
	mu       sync.Mutex
	patterns *PatternBuilder
	index    *RepoIndex
	colorer  Colorer
}

// NewExtractor creates an Extractor recording into index. A nil colorer
// falls back to NewHueColorer.
func NewExtractor(index *RepoIndex, colorer Colorer) *Extractor {
	if index == nil {
		index = NewRepoIndex()
	}
	if colorer == nil {
		colorer = NewHueColorer()
	}
	return &Extractor{
		patterns: NewPatternBuilder(),
		index:    index,
		colorer:  colorer,
	}
}

// Index returns the repository index the extractor records into.
func (e *Extractor) Index() *RepoIndex {
	return e.index
}

// Extract returns the candidates found in results for query. Every result's
// repository URL is normalised before it is recorded or linked.
func (e *Extractor) Extract(query string, results []RepoRef) []Candidate {
	patterns := e.patterns.Build(query)
	if len(patterns) == 0 || len(results) == 0 {
		return []Candidate{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accepted := make(keywordSet)
	candidates := make([]Candidate, 0)

	for _, raw := range results {
		res := raw.WithNormalizedURL()
		lines := res.FlattenedLines()
		if lines == "" {
			continue
		}

		for _, re := range patterns {
			for _, match := range re.FindAllString(lines, -1) {
				keyword := TrimMatch(match)
				if keyword == "" {
					continue
				}
				e.index.Record(keyword, res)

				if IsLinkLike(keyword) || IsTooLong(keyword) {
					continue
				}
				if !accepted.add(keyword) {
					continue
				}
				candidates = append(candidates, Candidate{
					Keyword:  keyword,
					RepoLink: res.Repo,
					RepoLang: res.Language,
					Color:    e.colorer.ColorFor(keyword),
				})
			}
		}
	}

	for i := range candidates {
		candidates[i].RepoList = e.index.Lookup(candidates[i].Keyword)
	}
	return candidates
}
