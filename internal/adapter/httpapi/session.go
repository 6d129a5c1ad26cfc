package httpapi

import (
	"net/http"
	"strconv"

	"github.com/eslsoft/cliploop/internal/adapter/mapping"
	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

func (h *handler) previewSession(w http.ResponseWriter, r *http.Request) {
	extra := r.URL.Query().Get("extra") == "true"
	preview, err := h.sessions.Preview(r.Context(), extra)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToSessionPreview(preview))
}

type obtainSessionBody struct {
	Type  string `json:"type"`
	Extra bool   `json:"extra"`
}

func (h *handler) obtainSession(w http.ResponseWriter, r *http.Request) {
	var body obtainSessionBody
	if err := decodeBody(r, &body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	typ, err := entity.ParseReviewType(body.Type)
	if err != nil {
		h.writeError(w, err)
		return
	}
	playlist, err := h.sessions.ObtainSession(r.Context(), typ, body.Extra)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToPlaylist(playlist))
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	query := &repository.ListPlaylistQuery{Pagination: parsePagination(r)}
	if raw := r.URL.Query().Get("type"); raw != "" {
		typ, err := entity.ParseReviewType(raw)
		if err != nil {
			h.writeError(w, err)
			return
		}
		query.Type = typ
	}
	playlists, total, err := h.sessions.History(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, listBody[mapping.Playlist]{Items: mapping.ToPlaylists(playlists), Total: total})
}

type advanceSessionBody struct {
	Index int `json:"index"`
}

func (h *handler) advanceSession(w http.ResponseWriter, r *http.Request) {
	var body advanceSessionBody
	if err := decodeBody(r, &body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	playlist, err := h.sessions.Advance(r.Context(), r.PathValue("id"), body.Index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToPlaylist(playlist))
}

func (h *handler) completeSession(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.sessions.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToPlaylist(playlist))
}

func (h *handler) reportMissing(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ReportMissing(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sessions.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToStats(stats))
}

func parsePagination(r *http.Request) repository.Pagination {
	p := repository.Pagination{PageNo: 1, PageSize: 50}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PageNo = int32(n)
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PageSize = int32(n)
		}
	}
	return p
}
