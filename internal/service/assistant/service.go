package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/modifai/backend/internal/analysis/intent"
	"github.com/modifai/backend/internal/imaging"
	"github.com/modifai/backend/internal/service/diffusion"
)

// InteriorAssistantPrompt is the fixed system preamble for text
// answers.
const InteriorAssistantPrompt = "You are an expert interior design assistant. " +
	"Answer user questions about room decoration, furniture, color schemes, and home improvement in a helpful, concise, and friendly way."

// ErrEmptyPrompt marks a client mistake: a decorate request whose
// prompt is empty after trimming.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// ErrBadSeedImage marks an uploaded file that does not decode as an
// image.
var ErrBadSeedImage = errors.New("uploaded file is not a valid image")

// TextGenerator produces a text reply for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces PNG images from a prompt, optionally seeded
// with an input image.
type ImageGenerator interface {
	TextToImage(ctx context.Context, prompt string, steps int) ([]byte, error)
	ImageToImage(ctx context.Context, prompt string, seed []byte, strength float64, steps int) ([]byte, error)
}

// Reply is the outcome of the chat pipeline: either a text answer or
// PNG bytes, never both.
type Reply struct {
	Text  string
	Image []byte
}

// Service routes inbound requests to the text or image pipeline based
// on the classified intent and the presence of a seed image.
type Service struct {
	text  TextGenerator
	image ImageGenerator
}

// New wires the router to its generation back-ends.
func New(text TextGenerator, image ImageGenerator) *Service {
	return &Service{text: text, image: image}
}

// Chat handles a single free-text message. Image-intent messages go to
// the diffusion pipeline; everything else goes to the text model under
// the interior-design preamble.
func (s *Service) Chat(ctx context.Context, message string) (Reply, error) {
	if intent.IsImageRequest(message) {
		log.Printf("[assistant] routing message to image pipeline")
		img, err := s.image.TextToImage(ctx, strings.TrimSpace(message), diffusion.DefaultSteps)
		if err != nil {
			return Reply{}, fmt.Errorf("chat image generation: %w", err)
		}
		return Reply{Image: img}, nil
	}

	prompt := fmt.Sprintf("%s\nUser: %s\nAssistant:", InteriorAssistantPrompt, message)
	reply, err := s.text.GenerateText(ctx, prompt)
	if err != nil {
		return Reply{}, fmt.Errorf("chat text generation: %w", err)
	}
	return Reply{Text: strings.TrimSpace(reply)}, nil
}

// Decorate handles an explicit image-generation request. A seed image,
// when present, is normalized to the canonical resolution and drives
// the image-to-image path with the fixed denoising strength.
func (s *Service) Decorate(ctx context.Context, prompt string, seedImage []byte) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if len(seedImage) == 0 {
		return s.image.TextToImage(ctx, prompt, diffusion.DefaultSteps)
	}

	seed, err := imaging.NormalizeSeed(seedImage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSeedImage, err)
	}
	return s.image.ImageToImage(ctx, prompt, seed, diffusion.DefaultStrength, diffusion.DefaultSteps)
}
