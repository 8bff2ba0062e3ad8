package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/codevar"
	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/domain/variable"
	"github.com/helixml/codevar/infrastructure/api/jsonapi"
	"github.com/helixml/codevar/infrastructure/api/v1/dto"
)

type stubIndex struct {
	results []variable.RepoRef
	err     error
	langs   [][]string
}

func (s *stubIndex) Search(_ context.Context, req search.Request) ([]variable.RepoRef, error) {
	s.langs = append(s.langs, req.Languages())
	return s.results, s.err
}

func (s *stubIndex) FetchSource(_ context.Context, _ int64) (string, error) {
	return "", s.err
}

func newClient(t *testing.T, index *stubIndex) *codevar.Client {
	t.Helper()
	client, err := codevar.New(codevar.WithRemoteIndex(index), codevar.WithSessionID("session-1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func postSearch(t *testing.T, router http.Handler, attrs dto.VariableSearchAttributes) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(dto.VariableSearchRequest{
		Data: dto.VariableSearchData{Type: "variable_search", Attributes: attrs},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVariablesRouter_Search(t *testing.T) {
	index := &stubIndex{results: []variable.RepoRef{{
		ID:       3,
		Repo:     "https://github.com/acme/shop",
		Language: "Python",
		Lines:    map[int]string{10: "order_total = sum(items)"},
	}}}
	client := newClient(t, index)
	router := NewVariablesRouter(client, nil).Routes()

	w := postSearch(t, router, dto.VariableSearchAttributes{
		Query:     "  Order ",
		Languages: []string{"Python", "Go"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc jsonapi.Document
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	require.NotNil(t, doc.Meta)
	assert.Contains(t, *doc.Meta, "state")

	state := client.Search.State()
	require.Len(t, state.VariableList, 1)
	assert.Equal(t, []string{"order_total"}, variable.Keywords(state.VariableList[0]))
	assert.Equal(t, []string{"Go", "Python"}, state.SearchLang)
	require.NotNil(t, state.SearchValue)
	assert.Equal(t, "Order", *state.SearchValue)

	require.Len(t, index.langs, 1)
	assert.Equal(t, []string{"Go", "Python"}, index.langs[0])
}

func TestVariablesRouter_SearchRemoteFailureStillAppendsPage(t *testing.T) {
	index := &stubIndex{err: errors.New("unreachable")}
	client := newClient(t, index)
	router := NewVariablesRouter(client, nil).Routes()

	w := postSearch(t, router, dto.VariableSearchAttributes{Query: "order"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	assert.Empty(t, doc.Data)
	assert.Equal(t, 1, client.Search.State().Pages())
}

func TestVariablesRouter_GetStateBeforeSearch(t *testing.T) {
	client := newClient(t, &stubIndex{})
	router := NewVariablesRouter(client, nil).Routes()

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Data struct {
			Type       string       `json:"type"`
			ID         string       `json:"id"`
			Attributes search.State `json:"attributes"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	assert.Equal(t, jsonapi.TypeSearchState, doc.Data.Type)
	assert.Equal(t, "session-1", doc.Data.ID)
	assert.Nil(t, doc.Data.Attributes.SearchValue)
	assert.Empty(t, doc.Data.Attributes.VariableList)
}

func TestSourceRouter_UpstreamErrorLeavesState(t *testing.T) {
	client := newClient(t, &stubIndex{err: errors.New("connection refused")})
	router := NewSourceRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/12", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, client.Search.State().SourceCode)
}
