package model

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	UserID         string `json:"user_id" validate:"required"`
	ConversationID string `json:"conversation_id,omitempty" validate:"omitempty,max=256"`
}

// ChatResponse is the envelope returned for a chat turn.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
