package httpapi

import (
	"net/http"

	"github.com/eslsoft/cliploop/internal/adapter/mapping"
)

type saveProgressBody struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

func (h *handler) saveProgress(w http.ResponseWriter, r *http.Request) {
	var body saveProgressBody
	if err := decodeBody(r, &body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	if err := h.progress.SaveProgress(r.Context(), r.PathValue("id"), body.Position, body.Duration); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

// getProgress returns 200 with the saved offset, or 204 when nothing is
// saved. offer_resume tells the player whether the offset is worth a prompt.
func (h *handler) getProgress(w http.ResponseWriter, r *http.Request) {
	point, offer, err := h.progress.ResumePosition(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if point == nil {
		h.writeJSON(w, http.StatusNoContent, nil)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToResumePoint(point, offer))
}

func (h *handler) clearProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.progress.ClearProgress(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}
