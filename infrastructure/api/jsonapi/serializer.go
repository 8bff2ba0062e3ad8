package jsonapi

import (
	"strconv"

	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/domain/variable"
)

// Resource types.
const (
	TypeSearchState = "search_state"
	TypeSource      = "source"
	TypeCandidate   = "variable"
)

// SourceAttributes holds a fetched source file.
type SourceAttributes struct {
	Code string `json:"code"`
}

// CandidateAttributes represents a variable candidate.
type CandidateAttributes struct {
	Keyword  string             `json:"keyword"`
	RepoLink string             `json:"repo_link"`
	RepoLang string             `json:"repo_lang"`
	Color    string             `json:"color"`
	Repos    []variable.RepoRef `json:"repos"`
}

// Serializer converts domain values to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// StateResource converts a search state of a session.
func (s *Serializer) StateResource(sessionID string, state search.State) *Resource {
	r := NewResource(TypeSearchState, sessionID, state)
	r.Meta = &Meta{"pages": state.Pages()}
	return r
}

// SourceResource converts a fetched source file.
func (s *Serializer) SourceResource(id int64, code string) *Resource {
	return NewResource(TypeSource, strconv.FormatInt(id, 10), SourceAttributes{Code: code})
}

// CandidateResources converts the candidates of one page.
func (s *Serializer) CandidateResources(candidates []variable.Candidate) []*Resource {
	resources := make([]*Resource, len(candidates))
	for i, c := range candidates {
		repos := c.RepoList
		if repos == nil {
			repos = []variable.RepoRef{}
		}
		resources[i] = NewResource(TypeCandidate, c.Keyword, CandidateAttributes{
			Keyword:  c.Keyword,
			RepoLink: c.RepoLink,
			RepoLang: c.RepoLang,
			Color:    c.Color,
			Repos:    repos,
		})
	}
	return resources
}

// LatestPage returns the candidates of the most recently published page.
func LatestPage(state search.State) []variable.Candidate {
	if len(state.VariableList) == 0 {
		return []variable.Candidate{}
	}
	return state.VariableList[len(state.VariableList)-1]
}
