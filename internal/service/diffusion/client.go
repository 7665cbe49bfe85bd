package diffusion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
)

// DefaultSteps is the inference-step budget used for every generation
// call.
const DefaultSteps = 30

// DefaultStrength is the denoising strength for image-to-image calls.
// Higher values let the prompt dominate over the seed image's content.
const DefaultStrength = 0.75

var ErrNoImage = errors.New("diffusion service returned no images")

// txt2imgRequest mirrors the Stable Diffusion webui txt2img payload.
type txt2imgRequest struct {
	Prompt string `json:"prompt"`
	Steps  int    `json:"steps"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// img2imgRequest mirrors the webui img2img payload. Init images travel
// base64 encoded.
type img2imgRequest struct {
	Prompt            string   `json:"prompt"`
	Steps             int      `json:"steps"`
	InitImages        []string `json:"init_images"`
	DenoisingStrength float64  `json:"denoising_strength"`
}

type generateResponse struct {
	Images []string `json:"images"`
}

// Client talks to a Stable Diffusion webui-compatible API. The
// underlying pipeline is not reentrant-safe, so calls are funneled
// through a slot semaphore sized to the pipeline's real concurrency
// limit (one, unless configured otherwise).
type Client struct {
	baseURL string
	httpc   *http.Client
	slots   chan struct{}
}

// NewClient creates a diffusion client for the given base URL.
// maxConcurrent below 1 is treated as 1.
func NewClient(baseURL string, maxConcurrent int) *Client {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Client{
		baseURL: baseURL,
		httpc:   http.DefaultClient,
		slots:   make(chan struct{}, maxConcurrent),
	}
}

// TextToImage generates a PNG from the prompt alone.
func (c *Client) TextToImage(ctx context.Context, prompt string, steps int) ([]byte, error) {
	payload := txt2imgRequest{
		Prompt: prompt,
		Steps:  steps,
		Width:  512,
		Height: 512,
	}
	return c.generate(ctx, "/sdapi/v1/txt2img", payload)
}

// ImageToImage generates a PNG from the prompt plus a seed image. The
// seed must already be normalized to the canonical resolution.
func (c *Client) ImageToImage(ctx context.Context, prompt string, seed []byte, strength float64, steps int) ([]byte, error) {
	payload := img2imgRequest{
		Prompt:            prompt,
		Steps:             steps,
		InitImages:        []string{base64.StdEncoding.EncodeToString(seed)},
		DenoisingStrength: strength,
	}
	return c.generate(ctx, "/sdapi/v1/img2img", payload)
}

func (c *Client) generate(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode diffusion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build diffusion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call diffusion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("diffusion service status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode diffusion response: %w", err)
	}
	if len(decoded.Images) == 0 {
		return nil, ErrNoImage
	}

	img, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decode diffusion image payload: %w", err)
	}

	log.Printf("[diffusion] generated image, %d bytes", len(img))
	return img, nil
}

// acquire blocks until a pipeline slot is free or the request context
// is cancelled.
func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	<-c.slots
}
