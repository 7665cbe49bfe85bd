package ai

import (
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// ErrEmptyResponse reports that the model produced no usable parts.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Part is one element of a mixed-output reply, as exposed to clients.
type Part struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Result is a routed model response. When the model emits any inline
// image, Image holds the first one and the response is the image;
// otherwise the text parts make up the reply.
type Result struct {
	Image     []byte
	ImageMIME string
	Parts     []Part
}

// Text concatenates the text parts.
func (r *Result) Text() string {
	var b strings.Builder
	for _, p := range r.Parts {
		if p.Type == "text" {
			b.WriteString(p.Content)
		}
	}
	return b.String()
}

// CollectParts flattens a generation response into a Result. A
// response with zero parts is a backend error.
func CollectParts(resp *genai.GenerateContentResponse) (*Result, error) {
	result := &Result{}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			switch v := part.(type) {
			case genai.Text:
				if string(v) != "" {
					result.Parts = append(result.Parts, Part{Type: "text", Content: string(v)})
				}
			case genai.Blob:
				if result.Image == nil && len(v.Data) > 0 {
					result.Image = v.Data
					result.ImageMIME = v.MIMEType
				}
			}
		}
	}

	if result.Image == nil && len(result.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	return result, nil
}
