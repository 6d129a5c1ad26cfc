// Package httpapi exposes the usecases as a JSON HTTP API under /api/v1.
// Handlers only decode requests, call a usecase and encode the result; all
// domain rules live below this layer.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cliploop/internal/adapter/mapping"
	"github.com/eslsoft/cliploop/internal/usecase"
)

type handler struct {
	sessions usecase.SessionUsecase
	library  usecase.LibraryUsecase
	progress usecase.ProgressUsecase
	logger   *logrus.Logger
}

// NewHandler builds the API router.
func NewHandler(
	sessions usecase.SessionUsecase,
	library usecase.LibraryUsecase,
	progress usecase.ProgressUsecase,
	logger *logrus.Logger,
) http.Handler {
	h := &handler{sessions: sessions, library: library, progress: progress, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/sessions/preview", h.previewSession)
	mux.HandleFunc("POST /api/v1/sessions", h.obtainSession)
	mux.HandleFunc("GET /api/v1/sessions", h.listSessions)
	mux.HandleFunc("POST /api/v1/sessions/{id}/advance", h.advanceSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/complete", h.completeSession)
	mux.HandleFunc("GET /api/v1/stats", h.stats)

	mux.HandleFunc("GET /api/v1/collections", h.listCollections)
	mux.HandleFunc("POST /api/v1/collections", h.createCollection)
	mux.HandleFunc("PATCH /api/v1/collections/{id}", h.updateCollection)
	mux.HandleFunc("DELETE /api/v1/collections/{id}", h.deleteCollection)

	mux.HandleFunc("POST /api/v1/videos", h.uploadVideo)
	mux.HandleFunc("GET /api/v1/videos", h.listVideos)
	mux.HandleFunc("GET /api/v1/videos/{id}", h.getVideo)
	mux.HandleFunc("DELETE /api/v1/videos/{id}", h.deleteVideo)
	mux.HandleFunc("POST /api/v1/videos/{id}/missing", h.reportMissing)

	mux.HandleFunc("PUT /api/v1/videos/{id}/progress", h.saveProgress)
	mux.HandleFunc("GET /api/v1/videos/{id}/progress", h.getProgress)
	mux.HandleFunc("DELETE /api/v1/videos/{id}/progress", h.clearProgress)

	mux.HandleFunc("GET /api/v1/media/{id}", h.serveMedia)

	return mux
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Warn("encode response")
	}
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := mapping.StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}
	h.writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeBody(r *http.Request, into any) error {
	defer r.Body.Close() //nolint:errcheck
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

// listBody is the standard paginated list envelope.
type listBody[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
