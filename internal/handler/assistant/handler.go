package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	assistantService "github.com/modifai/backend/internal/service/assistant"
	"github.com/modifai/backend/pkg/utils"
)

// maxUploadSize bounds in-memory multipart parsing (32 MiB).
const maxUploadSize = 32 << 20

// Router classifies and dispatches chat and decorate requests.
type Router interface {
	Chat(ctx context.Context, message string) (assistantService.Reply, error)
	Decorate(ctx context.Context, prompt string, seedImage []byte) ([]byte, error)
}

// Handler exposes the assistant pipelines over HTTP.
type Handler struct {
	router Router
}

// New creates the assistant handler.
func New(router Router) *Handler {
	return &Handler{router: router}
}

// RegisterRoutes mounts the assistant endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/decorate", h.handleDecorate)
}

// handleChat answers a free-text message with either a text reply or a
// generated PNG, depending on the classified intent.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	message := r.FormValue("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message field is required")
		return
	}

	reply, err := h.router.Chat(r.Context(), message)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Chat/image error: %v", err))
		return
	}

	if reply.Image != nil {
		utils.RespondPNG(w, reply.Image)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply.Text})
}

// handleDecorate runs the explicit image-generation pipeline with an
// optional seed image.
func (h *Handler) handleDecorate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	prompt := r.FormValue("prompt")
	seed, err := readOptionalFile(r, "file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, err := h.router.Decorate(r.Context(), prompt, seed)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, assistantService.ErrEmptyPrompt) || errors.Is(err, assistantService.ErrBadSeedImage) {
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, fmt.Sprintf("Diffusion image generation error: %v", err))
		return
	}

	utils.RespondPNG(w, img)
}

// readOptionalFile returns the uploaded file's bytes, or nil when the
// field is absent.
func readOptionalFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %v", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %v", field, err)
	}
	return data, nil
}
