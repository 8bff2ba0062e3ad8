// Package v1 implements the version 1 HTTP API.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/codevar"
	"github.com/helixml/codevar/application/service"
	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/infrastructure/api/jsonapi"
	"github.com/helixml/codevar/infrastructure/api/middleware"
	"github.com/helixml/codevar/infrastructure/api/v1/dto"
)

// VariablesRouter handles variable search endpoints.
type VariablesRouter struct {
	client     *codevar.Client
	apiKeys    []string
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewVariablesRouter creates a new VariablesRouter. Resetting the state is
// write-protected by apiKeys.
func NewVariablesRouter(client *codevar.Client, apiKeys []string) *VariablesRouter {
	return &VariablesRouter{
		client:     client,
		apiKeys:    apiKeys,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for variable endpoints.
func (r *VariablesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Search)
	router.Get("/state", r.GetState)
	router.With(middleware.RequireAPIKey(r.apiKeys)).Delete("/state", r.ResetState)

	return router
}

// Search handles POST /api/v1/variables.
//
// The request appends one page to the session state. The response holds the
// candidates of that page and the full state in meta.
func (r *VariablesRouter) Search(w http.ResponseWriter, req *http.Request) {
	var body dto.VariableSearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}

	attrs := body.Data.Attributes
	if attrs.Page < 0 {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "page must not be negative", nil), r.logger)
		return
	}

	if search.NormalizeQuery(attrs.Query) == "" {
		middleware.WriteError(w, req, fmt.Errorf("search: %w", service.ErrEmptyQuery), r.logger)
		return
	}

	state := r.client.Search.RequestVariable(req.Context(), attrs.Query, attrs.Page, attrs.Languages)

	doc := jsonapi.NewListResponse(r.serializer.CandidateResources(jsonapi.LatestPage(state)))
	doc.Meta = &jsonapi.Meta{
		"state": r.serializer.StateResource(r.client.SessionID(), state),
	}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// GetState handles GET /api/v1/variables/state.
func (r *VariablesRouter) GetState(w http.ResponseWriter, req *http.Request) {
	state := r.client.Search.State()
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		r.serializer.StateResource(r.client.SessionID(), state),
	))
}

// ResetState handles DELETE /api/v1/variables/state.
func (r *VariablesRouter) ResetState(w http.ResponseWriter, req *http.Request) {
	state := r.client.Search.Reset()
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		r.serializer.StateResource(r.client.SessionID(), state),
	))
}
