package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/modifai/backend/internal/config"
)

// Service wraps the Gemini client behind the few operations the
// handlers need: plain text generation, one-shot image-grounded
// generation, and multi-turn sessions (see session.go).
type Service struct {
	client   *genai.Client
	cfg      config.AIConfig
	sessions *SessionRegistry
}

// NewService dials the Gemini API and prepares the session registry.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	svc := &Service{
		client: client,
		cfg:    cfg,
	}
	svc.sessions = NewSessionRegistry(svc.visionModel)
	return svc, nil
}

// GenerateText submits the prompt to the text model and returns the
// trimmed reply.
func (s *Service) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.cfg.TextModel)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini text generation: %w", err)
	}

	result, err := CollectParts(resp)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(result.Text())
	log.Printf("[ai] generated text reply, length=%d", len(reply))
	return reply, nil
}

// GenerateWithImage runs a one-shot call against the vision-capable
// model with the prompt plus an inline image. The model may answer
// with text, an image, or both; part routing decides what the caller
// gets back.
func (s *Service) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (*Result, error) {
	model := s.visionModel()

	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini image-grounded generation: %w", err)
	}

	return CollectParts(resp)
}

// Converse appends a turn to the identified multi-turn session,
// creating it on first use.
func (s *Service) Converse(ctx context.Context, chatID, message string, image []byte, mimeType string) (*Result, error) {
	return s.sessions.Send(ctx, chatID, message, image, mimeType)
}

// visionModel configures the mixed text/image model with the web
// search retrieval tool enabled.
func (s *Service) visionModel() *genai.GenerativeModel {
	model := s.client.GenerativeModel(s.cfg.VisionModel)
	model.Tools = []*genai.Tool{
		{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}},
	}
	return model
}

// Close releases the underlying client connection.
func (s *Service) Close() error {
	return s.client.Close()
}
