package httpapi

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/eslsoft/cliploop/internal/adapter/mapping"
	"github.com/eslsoft/cliploop/internal/repository"
	"github.com/eslsoft/cliploop/internal/usecase"
)

// uploads are streamed; this only bounds the in-memory part of the form
const maxUploadMemory = 32 << 20

func (h *handler) listCollections(w http.ResponseWriter, r *http.Request) {
	stats, err := h.library.ListCollections(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToCollections(stats))
}

type createCollectionBody struct {
	Name string `json:"name"`
}

func (h *handler) createCollection(w http.ResponseWriter, r *http.Request) {
	var body createCollectionBody
	if err := decodeBody(r, &body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	collection, err := h.library.CreateCollection(r.Context(), body.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, mapping.ToCollection(collection))
}

type updateCollectionBody struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (h *handler) updateCollection(w http.ResponseWriter, r *http.Request) {
	var body updateCollectionBody
	if err := decodeBody(r, &body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}
	id := r.PathValue("id")

	collection, err := h.library.GetCollection(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if body.Name != nil {
		if collection, err = h.library.RenameCollection(r.Context(), id, *body.Name); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if body.IsActive != nil {
		if collection, err = h.library.SetCollectionActive(r.Context(), id, *body.IsActive); err != nil {
			h.writeError(w, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, mapping.ToCollection(collection))
}

func (h *handler) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.library.DeleteCollection(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *handler) uploadVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing file part"})
		return
	}
	defer file.Close() //nolint:errcheck

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		}
	}
	video, err := h.library.AddVideo(r.Context(), &usecase.AddVideoInput{
		CollectionID: r.FormValue("collection_id"),
		Filename:     header.Filename,
		MimeType:     mimeType,
		SizeBytes:    header.Size,
		Content:      file,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, mapping.ToVideo(video))
}

func (h *handler) listVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &repository.ListVideoQuery{
		Pagination: parsePagination(r),
		FilterOrder: repository.FilterOrder{
			Filter:  q.Get("filter"),
			OrderBy: q.Get("order_by"),
		},
		CollectionID: q.Get("collection_id"),
	}
	videos, total, err := h.library.ListVideos(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, listBody[mapping.Video]{Items: mapping.ToVideos(videos), Total: total})
}

func (h *handler) getVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.library.GetVideo(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.ToVideo(video))
}

func (h *handler) deleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.library.DeleteVideo(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusNoContent, nil)
}

// serveMedia streams the blob with range support so players can seek.
func (h *handler) serveMedia(w http.ResponseWriter, r *http.Request) {
	path, err := h.library.MediaPath(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}
