package variable

// Candidate is an extracted token believed to be a variable name that
// co-occurs with the query.
type Candidate struct {
	Keyword  string    `json:"keyword"`
	RepoLink string    `json:"repoLink"`
	RepoLang string    `json:"repoLang"`
	Color    string    `json:"color"`
	RepoList []RepoRef `json:"repoList"`
}

// Keywords returns the keyword of every candidate in order.
func Keywords(candidates []Candidate) []string {
	keywords := make([]string, len(candidates))
	for i, c := range candidates {
		keywords[i] = c.Keyword
	}
	return keywords
}
