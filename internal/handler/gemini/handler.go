package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/modifai/backend/internal/imaging"
	ai "github.com/modifai/backend/internal/service/ai"
	"github.com/modifai/backend/pkg/utils"
)

const maxUploadSize = 32 << 20

// Generator is the slice of the AI service these endpoints use.
type Generator interface {
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (*ai.Result, error)
	Converse(ctx context.Context, chatID, message string, image []byte, mimeType string) (*ai.Result, error)
}

// Handler exposes the Gemini one-shot and multi-turn endpoints.
type Handler struct {
	generator Generator
}

// New creates the Gemini handler.
func New(generator Generator) *Handler {
	return &Handler{generator: generator}
}

// RegisterRoutes mounts the Gemini endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/generate_gemini_image", h.handleGenerate)
	r.Post("/gemini_chat", h.handleChat)
}

// handleGenerate runs a one-shot image-grounded generation: a prompt
// plus a required photo of the room.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	prompt := r.FormValue("prompt")
	if prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt field is required")
		return
	}

	image, mimeType, err := readFile(r, "file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if image == nil {
		utils.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}

	result, err := h.generator.GenerateWithImage(r.Context(), prompt, image, mimeType)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Gemini image generation error: %v", err))
		return
	}

	if result.Image != nil {
		h.respondImage(w, result)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"text": result.Text()})
}

// handleChat appends a turn to a multi-turn session. The response is
// the first inline image when the model produced one, otherwise the
// list of text parts.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	chatID := r.FormValue("chat_id")
	message := r.FormValue("message")
	if chatID == "" || message == "" {
		utils.RespondError(w, http.StatusBadRequest, "chat_id and message fields are required")
		return
	}

	image, mimeType, err := readFile(r, "file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.generator.Converse(r.Context(), chatID, message, image, mimeType)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Gemini chat error: %v", err))
		return
	}

	if result.Image != nil {
		h.respondImage(w, result)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"results": result.Parts})
}

// respondImage transcodes the inline image to PNG when needed.
func (h *Handler) respondImage(w http.ResponseWriter, result *ai.Result) {
	png, err := imaging.ToPNG(result.Image)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("Gemini returned an undecodable image: %v", err))
		return
	}
	utils.RespondPNG(w, png)
}

// readFile returns the uploaded file's bytes and MIME type, or nils
// when the field is absent.
func readFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s upload: %v", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read %s upload: %v", field, err)
	}

	return data, uploadMIME(header), nil
}

// uploadMIME trusts the client's declared content type and falls back
// to PNG, which is what the mobile client sends.
func uploadMIME(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return "image/png"
}
