package chatlog

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/modifai/backend/internal/model/chat"
	chatService "github.com/modifai/backend/internal/service/chat"
	"github.com/modifai/backend/pkg/utils"
)

// Handler exposes stored two-party chat history over HTTP.
type Handler struct {
	store chatService.Store
}

// New creates the chat history handler.
func New(store chatService.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the history endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/send", h.handleSend)
	r.Get("/chat/history", h.handleHistory)
}

// handleSend appends a message. Repeated sends of the same payload are
// stored again; delivery is at-least-once.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var message chat.Message
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if message.Sender == "" || message.Receiver == "" {
		utils.RespondError(w, http.StatusBadRequest, "sender and receiver are required")
		return
	}

	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	if err := h.store.Append(r.Context(), message); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHistory returns every message between user1 and user2 in
// insertion order. An unknown pair yields an empty list.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user1 := r.URL.Query().Get("user1")
	user2 := r.URL.Query().Get("user2")
	if user1 == "" || user2 == "" {
		utils.RespondError(w, http.StatusBadRequest, "user1 and user2 query parameters are required")
		return
	}

	messages, err := h.store.History(r.Context(), user1, user2)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}
