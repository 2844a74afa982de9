package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/autodocx/relay-api/internal/model"
)

const (
	maxMessageBytes        = 100000 // ~100KB
	maxConversationIDBytes = 256
	maxCodeBytes           = 500000
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errMissingChatFields = errors.New("Missing message or user_id")

// ValidateChatRequest checks a chat request before it is relayed.
func ValidateChatRequest(req *model.ChatRequest) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() != "ConversationID" {
					return errMissingChatFields
				}
			}
			return errors.New("conversation_id exceeds maximum length")
		}
		return errMissingChatFields
	}
	if err := ValidateMessageContent(req.Message); err != nil {
		return err
	}
	return ValidateConversationID(req.ConversationID)
}

// ValidateSummarizeRequest checks a summarize request.
func ValidateSummarizeRequest(req *model.SummarizeRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.New("Code input is required.")
	}
	if len(req.Code) > maxCodeBytes {
		return errors.New("code exceeds maximum length")
	}
	if !utf8.ValidString(req.Code) {
		return errors.New("code must be valid UTF-8")
	}
	return nil
}

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > maxMessageBytes {
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateConversationID validates an optional caller-supplied
// conversation ID. Identifiers are opaque; only size and encoding are
// checked.
func ValidateConversationID(id string) error {
	if len(id) > maxConversationIDBytes {
		return errors.New("conversation_id exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("conversation_id must be valid UTF-8")
	}
	return nil
}
