// Package api serves the latest harvest result, and optionally the source
// registry, over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sanpo/journalfed/journal"
	"github.com/sanpo/journalfed/sources"
)

// CacheControl is sent with every harvest response; results change at most
// once per run.
const CacheControl = "public, max-age=3600"

// JournalAPIServer serves a harvest result file. The file is read on every
// request so a new run is visible without a restart.
type JournalAPIServer struct {
	resultPath string
	sources    *sources.SourceStore
	logger     *slog.Logger
}

// NewJournalAPIServer creates a server for the result at resultPath. store
// may be nil, in which case the source routes are not mounted.
func NewJournalAPIServer(resultPath string, store *sources.SourceStore, logger *slog.Logger) *JournalAPIServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JournalAPIServer{
		resultPath: resultPath,
		sources:    store,
		logger:     logger,
	}
}

// ListJournalsResponse represents the response for GET /api/v1/journals.
type ListJournalsResponse struct {
	*journal.HarvestResult
	Total int `json:"total"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Router returns the complete HTTP handler.
func (s *JournalAPIServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)

	r.Get("/health", s.HandleHealth)

	r.Route("/api/v1/journals", func(r chi.Router) {
		r.Use(cacheControl)
		r.Get("/", s.HandleListJournals)
		r.Get("/{id}", s.HandleGetJournal)
	})

	if s.sources != nil {
		r.Mount("/api/v1/sources", sources.NewSourceAPIServer(s.sources).Routes())
	}

	return r
}

// HandleHealth handles GET /health.
func (s *JournalAPIServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleListJournals handles GET /api/v1/journals. The optional publisher
// query parameter filters by case-insensitive substring.
func (s *JournalAPIServer) HandleListJournals(w http.ResponseWriter, r *http.Request) {
	result, ok := s.load(w)
	if !ok {
		return
	}

	if publisher := r.URL.Query().Get("publisher"); publisher != "" {
		result.Journals = filterByPublisher(result.Journals, publisher)
	}

	writeJSON(w, http.StatusOK, ListJournalsResponse{
		HarvestResult: result,
		Total:         len(result.Journals),
	})
}

// HandleGetJournal handles GET /api/v1/journals/{id}.
func (s *JournalAPIServer) HandleGetJournal(w http.ResponseWriter, r *http.Request) {
	result, ok := s.load(w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	record, found := result.Find(id)
	if !found {
		s.writeError(w, http.StatusNotFound, "not_found", "Journal not found: "+id)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *JournalAPIServer) load(w http.ResponseWriter) (*journal.HarvestResult, bool) {
	result, err := journal.LoadResult(s.resultPath)
	if errors.Is(err, journal.ErrNoResult) {
		s.writeError(w, http.StatusServiceUnavailable, "no_data", "No harvest result available yet")
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to load harvest result", "path", s.resultPath, "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load harvest result")
		return nil, false
	}
	return result, true
}

func filterByPublisher(journals []journal.JournalRecord, publisher string) []journal.JournalRecord {
	var filtered []journal.JournalRecord
	publisher = strings.ToLower(publisher)
	for _, j := range journals {
		if strings.Contains(strings.ToLower(j.Publisher), publisher) {
			filtered = append(filtered, j)
		}
	}
	if filtered == nil {
		filtered = []journal.JournalRecord{}
	}
	return filtered
}

func (s *JournalAPIServer) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// CORSMiddleware adds CORS headers to responses and answers preflight
// requests.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheControl)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
