package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/codevar"
	"github.com/helixml/codevar/infrastructure/api/jsonapi"
	"github.com/helixml/codevar/infrastructure/api/middleware"
)

// SourceRouter serves the source files of search results.
type SourceRouter struct {
	client     *codevar.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewSourceRouter creates a new SourceRouter.
func NewSourceRouter(client *codevar.Client) *SourceRouter {
	return &SourceRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for source endpoints.
func (r *SourceRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{id}", r.Get)

	return router
}

// Get handles GET /api/v1/source/{id}. The fetched file also becomes the
// selected source of the session state.
func (r *SourceRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "id must be a positive integer", err), r.logger)
		return
	}

	code, _, err := r.client.Search.RequestSourceCode(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SourceResource(id, code)))
}
