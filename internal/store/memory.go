package store

import (
	"context"
	"sync"

	"github.com/autodocx/relay-api/internal/model"
)

// MemoryStore keeps messages in process. It backs development setups
// without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []model.ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	s.messages = append(s.messages, *msg)
	s.mu.Unlock()
	return nil
}

// Conversation returns the messages of one conversation in insert order.
func (s *MemoryStore) Conversation(conversationID string) []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ChatMessage
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of stored messages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
