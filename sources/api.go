package sources

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sanpo/journalfed/journal"
)

// SourceAPIServer serves source management over HTTP.
type SourceAPIServer struct {
	store *SourceStore
}

// NewSourceAPIServer creates a new source API server.
func NewSourceAPIServer(store *SourceStore) *SourceAPIServer {
	return &SourceAPIServer{
		store: store,
	}
}

// Routes returns the source routes, to be mounted under /api/v1/sources.
func (s *SourceAPIServer) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.HandleListSources)
	r.Post("/", s.HandleCreateSource)
	r.Get("/{id}", s.HandleGetSource)
	r.Put("/{id}", s.HandleUpdateSource)
	r.Delete("/{id}", s.HandleDeleteSource)
	return r
}

// ListSourcesResponse represents the response for GET /api/v1/sources.
type ListSourcesResponse struct {
	Sources []Source `json:"sources"`
	Total   int      `json:"total"`
}

// CreateSourceRequest represents the request for POST /api/v1/sources.
type CreateSourceRequest struct {
	journal.SourceConfig
	Enabled *bool `json:"enabled,omitempty"` // Default: true
}

// UpdateSourceRequest represents the request for PUT /api/v1/sources/{id}.
type UpdateSourceRequest struct {
	Name        *string `json:"name,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	URL         *string `json:"url,omitempty"`
	BaseURL     *string `json:"base_url,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Mode        *string `json:"mode,omitempty"`
	APIURL      *string `json:"api_url,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) map[string]errorBody {
	return map[string]errorBody{
		"error": {Code: code, Message: message},
	}
}

// handleError maps domain errors to HTTP responses.
func (s *SourceAPIServer) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSourceNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, ErrDuplicateURL), errors.Is(err, ErrDuplicateID):
		writeJSON(w, http.StatusConflict, errorResponse("conflict", err.Error()))
	case errors.Is(err, ErrMissingID), errors.Is(err, ErrMissingURL), errors.Is(err, ErrInvalidMode):
		writeJSON(w, http.StatusBadRequest, errorResponse("validation_error", err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

// HandleListSources handles GET /api/v1/sources.
func (s *SourceAPIServer) HandleListSources(w http.ResponseWriter, r *http.Request) {
	filter := SourceFilter{}

	if enabledParam := r.URL.Query().Get("enabled"); enabledParam != "" {
		enabled := enabledParam == "true"
		filter.Enabled = &enabled
	}

	sources, err := s.store.ListSources(filter)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if sources == nil {
		sources = []Source{}
	}

	writeJSON(w, http.StatusOK, ListSourcesResponse{
		Sources: sources,
		Total:   len(sources),
	})
}

// HandleGetSource handles GET /api/v1/sources/{id}.
func (s *SourceAPIServer) HandleGetSource(w http.ResponseWriter, r *http.Request) {
	source, err := s.store.GetSource(chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, source)
}

// HandleCreateSource handles POST /api/v1/sources.
func (s *SourceAPIServer) HandleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("validation_error", err.Error()))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("validation_error", "name is required"))
		return
	}

	// Sources are enabled unless explicitly disabled
	var enabledAt *time.Time
	if req.Enabled == nil || *req.Enabled {
		now := time.Now()
		enabledAt = &now
	}

	source, err := s.store.CreateSource(req.SourceConfig, enabledAt)
	if err != nil {
		s.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

// HandleUpdateSource handles PUT /api/v1/sources/{id}.
func (s *SourceAPIServer) HandleUpdateSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	update := SourceUpdate{
		Name:        req.Name,
		Publisher:   req.Publisher,
		URL:         req.URL,
		BaseURL:     req.BaseURL,
		Description: req.Description,
		Color:       req.Color,
		Mode:        req.Mode,
		APIURL:      req.APIURL,
	}

	// Convert the enabled flag to an enabled_at timestamp
	if req.Enabled != nil {
		if *req.Enabled {
			now := time.Now()
			update.EnabledAt = &now
		} else {
			update.ClearEnabledAt = true
		}
	}

	if err := s.store.UpdateSource(id, update); err != nil {
		s.handleError(w, err)
		return
	}

	source, err := s.store.GetSource(id)
	if err != nil {
		s.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, source)
}

// HandleDeleteSource handles DELETE /api/v1/sources/{id}.
func (s *SourceAPIServer) HandleDeleteSource(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSource(chi.URLParam(r, "id")); err != nil {
		s.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
