package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	assistantHandler "github.com/modifai/backend/internal/handler/assistant"
	chatlogHandler "github.com/modifai/backend/internal/handler/chatlog"
	geminiHandler "github.com/modifai/backend/internal/handler/gemini"
	uploadHandler "github.com/modifai/backend/internal/handler/upload"
	middlewarePkg "github.com/modifai/backend/internal/middleware"
	chatService "github.com/modifai/backend/internal/service/chat"
	"github.com/modifai/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. Optional integrations
// may be nil when their credentials are absent; their routes then
// answer with a backend error instead of failing the whole process.
func NewRouter(assistantSvc assistantHandler.Router, geminiSvc geminiHandler.Generator, chatStore chatService.Store, uploaderSvc uploadHandler.Uploader) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	if assistantSvc != nil {
		assistantHandler.New(assistantSvc).RegisterRoutes(r)
	} else {
		r.Post("/chat", unavailable("generation backends"))
		r.Post("/decorate", unavailable("diffusion backend"))
	}

	if geminiSvc != nil {
		geminiHandler.New(geminiSvc).RegisterRoutes(r)
	} else {
		r.Post("/generate_gemini_image", unavailable("gemini backend"))
		r.Post("/gemini_chat", unavailable("gemini backend"))
	}

	chatlogHandler.New(chatStore).RegisterRoutes(r)

	if uploaderSvc != nil {
		uploadHandler.New(uploaderSvc).RegisterRoutes(r)
	} else {
		r.Post("/upload_drive", unavailable("drive integration"))
	}

	return r
}

// unavailable reports a backend that was not configured at startup.
func unavailable(what string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusInternalServerError, what+" not configured")
	}
}
