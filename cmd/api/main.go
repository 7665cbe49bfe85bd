package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/modifai/backend/internal/config"
	"github.com/modifai/backend/internal/handler"
	assistantHandler "github.com/modifai/backend/internal/handler/assistant"
	geminiHandler "github.com/modifai/backend/internal/handler/gemini"
	uploadHandler "github.com/modifai/backend/internal/handler/upload"
	"github.com/modifai/backend/internal/service/ai"
	"github.com/modifai/backend/internal/service/assistant"
	"github.com/modifai/backend/internal/service/chat"
	"github.com/modifai/backend/internal/service/diffusion"
	"github.com/modifai/backend/internal/service/drive"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	chatStore := newChatStore(cfg.Chat)

	// Initialize AI (Gemini) service
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize Gemini service: %v", err)
			log.Println("continuing without Gemini functionality - check GEMINI_API_KEY")
		} else {
			log.Println("Gemini service initialized successfully")
		}
	} else {
		log.Println("GEMINI_API_KEY not set, skipping Gemini initialization")
	}

	// Initialize diffusion client
	var diffusionClient *diffusion.Client
	if cfg.Diffusion.Enabled() {
		diffusionClient = diffusion.NewClient(cfg.Diffusion.BaseURL, cfg.Diffusion.MaxConcurrent)
		log.Printf("Diffusion client initialized for %s (max concurrent %d)", cfg.Diffusion.BaseURL, cfg.Diffusion.MaxConcurrent)
	} else {
		log.Println("SD_API_URL not set, skipping diffusion initialization")
	}

	// The assistant router needs both back-ends.
	var assistantSvc assistantHandler.Router
	if aiService != nil && diffusionClient != nil {
		assistantSvc = assistant.New(aiService, diffusionClient)
	} else {
		log.Println("assistant pipelines disabled, /chat and /decorate will answer with errors")
	}

	var geminiSvc geminiHandler.Generator
	if aiService != nil {
		geminiSvc = aiService
	}

	// Initialize Drive uploader
	var uploader uploadHandler.Uploader
	if cfg.Drive.Enabled() {
		credentials := drive.NewCredentialStore(cfg.Drive.CredentialsFile, cfg.Drive.TokenFile)
		uploader = drive.NewUploader(credentials)
		log.Println("Drive uploader initialized successfully")
	} else {
		log.Println("Drive client secret file not found, skipping Drive initialization")
	}

	router := handler.NewRouter(assistantSvc, geminiSvc, chatStore, uploader)

	startServer(ctx, cfg.Server, router)
}

// newChatStore picks sqlite when a database path is configured and
// falls back to process memory otherwise.
func newChatStore(cfg config.ChatConfig) chat.Store {
	if cfg.DBPath == "" {
		return chat.NewMemoryStore()
	}

	store, err := chat.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Printf("warning: failed to open chat database at %s: %v", cfg.DBPath, err)
		log.Println("falling back to in-memory chat history")
		return chat.NewMemoryStore()
	}

	log.Printf("chat history persisted at %s", cfg.DBPath)
	return store
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("modifai backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
