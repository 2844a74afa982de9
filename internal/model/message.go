// Package model defines data structures for the relay API.
package model

import (
	"time"
)

// Role identifies which side of a chat turn a message belongs to.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// ChatMessage is one persisted side of a chat turn. Records are
// append-only; nothing in this service updates or deletes them.
type ChatMessage struct {
	ID             string    `json:"id,omitempty"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Message        string    `json:"message"`
	IsUser         bool      `json:"is_user"`
	Timestamp      time.Time `json:"timestamp"`
}

// Role returns the turn side of the message.
func (m *ChatMessage) Role() Role {
	if m.IsUser {
		return RoleUser
	}
	return RoleAI
}
