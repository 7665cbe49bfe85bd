package ai

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/generative-ai-go/genai"
)

// SessionRegistry maps caller-supplied chat identifiers to live Gemini
// chat sessions. The accumulated turn history lives inside the model
// session, not here; the registry only owns the handles.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*genai.ChatSession
	newModel func() *genai.GenerativeModel
}

// NewSessionRegistry creates a registry that spawns sessions from the
// supplied model factory.
func NewSessionRegistry(newModel func() *genai.GenerativeModel) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*genai.ChatSession),
		newModel: newModel,
	}
}

// Send appends the next turn to the identified session, lazily
// creating the session on first use.
func (r *SessionRegistry) Send(ctx context.Context, chatID, message string, image []byte, mimeType string) (*Result, error) {
	session := r.lookupOrCreate(chatID)

	parts := []genai.Part{genai.Text(message)}
	if len(image) > 0 {
		parts = append(parts, genai.Blob{MIMEType: mimeType, Data: image})
	}

	resp, err := session.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini chat turn: %w", err)
	}

	return CollectParts(resp)
}

func (r *SessionRegistry) lookupOrCreate(chatID string) *genai.ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[chatID]
	if !ok {
		session = r.newModel().StartChat()
		r.sessions[chatID] = session
		log.Printf("[ai] created chat session %s", chatID)
	}
	return session
}
