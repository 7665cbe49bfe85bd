package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/modifai/backend/pkg/utils"
)

const maxUploadSize = 64 << 20

// Uploader pushes bytes to the file-hosting service and returns a
// shareable URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error)
}

// Handler exposes the Drive upload endpoint.
type Handler struct {
	uploader Uploader
}

// New creates the upload handler.
func New(uploader Uploader) *Handler {
	return &Handler{uploader: uploader}
}

// RegisterRoutes mounts the upload endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload_drive", h.handleUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "read file upload failed")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	url, err := h.uploader.Upload(r.Context(), data, header.Filename, mimeType)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Drive upload error: %v", err))
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}
