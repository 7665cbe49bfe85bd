package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/modifai/backend/internal/model/chat"
)

// Store abstracts chat history persistence so the backing container
// can be swapped (in-memory for development, sqlite when a database
// path is configured) and so handler tests can inject a fake.
type Store interface {
	// Append stores a message under its normalized conversation key.
	// Appends are not deduplicated: sending the same message twice
	// stores it twice.
	Append(ctx context.Context, message chat.Message) error

	// History returns every message between the two participants in
	// insertion order. An unknown pair yields an empty slice, not an
	// error.
	History(ctx context.Context, user1, user2 string) ([]chat.Message, error)
}

// MemoryStore keeps per-conversation message lists in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

// NewMemoryStore bootstraps the in-memory history store suitable for a
// single-process deployment.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[string][]chat.Message),
	}
}

// Append stores the message under its conversation key.
func (s *MemoryStore) Append(_ context.Context, message chat.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	key := chat.ConversationKey(message.Sender, message.Receiver)

	s.mu.Lock()
	s.messages[key] = append(s.messages[key], message)
	s.mu.Unlock()

	return nil
}

// History returns a copy of the stored messages for the pair.
func (s *MemoryStore) History(_ context.Context, user1, user2 string) ([]chat.Message, error) {
	key := chat.ConversationKey(user1, user2)

	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[key]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
