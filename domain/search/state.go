package search

import "github.com/helixml/codevar/domain/variable"

// Page is the payload published for one requestVariable call and stored in
// the fingerprint cache.
type Page struct {
	SearchValue string               `json:"searchValue"`
	Page        int                  `json:"page"`
	SearchLang  []string             `json:"searchLang"`
	Suggestion  []string             `json:"suggestion"`
	IsNonLatin  bool                 `json:"isNonLatin"`
	Variables   []variable.Candidate `json:"variables"`
}

// State is the observable state of a search session.
type State struct {
	IsNonLatin   bool                   `json:"isNonLatin"`
	SearchValue  *string                `json:"searchValue"`
	SearchLang   []string               `json:"searchLang"`
	Page         int                    `json:"page"`
	VariableList [][]variable.Candidate `json:"variableList"`
	Suggestion   []string               `json:"suggestion"`
	SourceCode   *string                `json:"sourceCode"`
}

// NewState returns the empty startup state.
func NewState() State {
	return State{
		SearchLang:   []string{},
		VariableList: [][]variable.Candidate{},
		Suggestion:   []string{},
	}
}

// WithPage returns the state after publishing p. The page's candidates are
// appended to the variable list and isNonLatin stays set once true.
func (s State) WithPage(p Page) State {
	next := s.Clone()
	value := p.SearchValue
	next.SearchValue = &value
	next.Page = p.Page
	next.SearchLang = cloneStrings(p.SearchLang)
	next.Suggestion = cloneStrings(p.Suggestion)
	next.IsNonLatin = s.IsNonLatin || p.IsNonLatin

	vars := p.Variables
	if vars == nil {
		vars = []variable.Candidate{}
	}
	next.VariableList = append(next.VariableList, cloneCandidates(vars))
	return next
}

// WithSourceCode returns the state with code as the selected source.
func (s State) WithSourceCode(code string) State {
	next := s.Clone()
	next.SourceCode = &code
	return next
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	if s.SearchValue != nil {
		v := *s.SearchValue
		c.SearchValue = &v
	}
	if s.SourceCode != nil {
		v := *s.SourceCode
		c.SourceCode = &v
	}
	c.SearchLang = cloneStrings(s.SearchLang)
	c.Suggestion = cloneStrings(s.Suggestion)
	c.VariableList = make([][]variable.Candidate, len(s.VariableList))
	for i, page := range s.VariableList {
		c.VariableList[i] = cloneCandidates(page)
	}
	return c
}

// Pages returns the number of pages published since the last reset.
func (s State) Pages() int { return len(s.VariableList) }

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneCandidates(in []variable.Candidate) []variable.Candidate {
	out := make([]variable.Candidate, len(in))
	for i, c := range in {
		out[i] = c
		out[i].RepoList = make([]variable.RepoRef, len(c.RepoList))
		copy(out[i].RepoList, c.RepoList)
	}
	return out
}
