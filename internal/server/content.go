package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
)

const (
	contentsRoute = "GET /creator/contents/{status}"
	contentRoute  = "GET /creator/content/{id}"

	statusSuccess = "success"
)

// ContentStore is the read side of the track store the backend serves from.
type ContentStore interface {
	ListTracks(status string) ([]models.Track, error)
	GetDetail(contentID string) (models.TrackDetail, error)
}

// ContentHandler serves track lists and content details.
type ContentHandler struct {
	store  ContentStore
	logger *log.Logger
}

// NewContentHandler creates a handler over store.
func NewContentHandler(store ContentStore, logger *log.Logger) *ContentHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ContentHandler{store: store, logger: logger}
}

// Routes returns the creator endpoints.
func (h *ContentHandler) Routes() []string {
	return []string{contentsRoute, contentRoute}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case contentsRoute:
		h.contents(w, r)
	case contentRoute:
		h.content(w, r)
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (h *ContentHandler) contents(w http.ResponseWriter, r *http.Request) {
	status := r.PathValue("status")

	tracks, err := h.store.ListTracks(status)
	if err != nil {
		h.logger.Error("failed to list tracks", "status", status, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to load contents")
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}

	writeJSON(w, http.StatusOK, models.ContentResponse{Data: tracks, Status: statusSuccess})
}

func (h *ContentHandler) content(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := h.store.GetDetail(id)
	switch {
	case errors.Is(err, shared.ErrTrackNotFound):
		writeDetail(w, http.StatusNotFound, "Content not found")
		return
	case err != nil:
		h.logger.Error("failed to load detail", "id", id, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to load content")
		return
	}

	writeJSON(w, http.StatusOK, models.ContentDetailResponse{Data: detail, Status: statusSuccess})
}

// NewContentRouter wires a [ContentHandler] behind recovery, logging and optional bearer auth.
func NewContentRouter(store ContentStore, token string, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	router := NewBasicRouter()
	router.Use(Recovery(logger), Logging(logger), BearerAuth(token))
	router.Handler(NewContentHandler(store, logger))
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
