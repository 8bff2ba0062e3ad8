// Package dto holds the request bodies of the v1 API.
package dto

// VariableSearchAttributes holds the parameters of a variable search.
type VariableSearchAttributes struct {
	Query     string   `json:"query"`
	Page      int      `json:"page,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

// VariableSearchData wraps the search attributes.
type VariableSearchData struct {
	Type       string                   `json:"type"`
	Attributes VariableSearchAttributes `json:"attributes"`
}

// VariableSearchRequest is the body of POST /api/v1/variables.
type VariableSearchRequest struct {
	Data VariableSearchData `json:"data"`
}
