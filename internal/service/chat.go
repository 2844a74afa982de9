// Package service implements the chat and summarizer relays.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autodocx/relay-api/internal/langflow"
	"github.com/autodocx/relay-api/internal/model"
	"github.com/autodocx/relay-api/internal/store"
	"github.com/autodocx/relay-api/pkg/logger"
	"github.com/autodocx/relay-api/pkg/metrics"
)

const defaultPersistTimeout = 5 * time.Second

// ChatRelay is the upstream conversational endpoint.
type ChatRelay interface {
	Configured() bool
	Run(ctx context.Context, input string) (string, error)
}

// ChatService relays chat turns and records their transcripts.
type ChatService struct {
	relay          ChatRelay
	store          store.Store
	logger         *logger.Logger
	newID          func() string
	now            func() time.Time
	persistTimeout time.Duration
}

// ChatOption configures a ChatService.
type ChatOption func(*ChatService)

// WithIDGenerator replaces the conversation identifier generator.
func WithIDGenerator(fn func() string) ChatOption {
	return func(s *ChatService) { s.newID = fn }
}

// WithPersistTimeout bounds each transcript write. Non-positive values
// keep the default.
func WithPersistTimeout(d time.Duration) ChatOption {
	return func(s *ChatService) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// NewChatService creates a chat relay. st may be nil, in which case turns
// are not recorded.
func NewChatService(relay ChatRelay, st store.Store, log *logger.Logger, opts ...ChatOption) *ChatService {
	s := &ChatService{
		relay:          relay,
		store:          st,
		logger:         log,
		newID:          NewConversationID,
		now:            func() time.Time { return time.Now().UTC() },
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Turn sends one user message upstream and returns the reply envelope.
// Validation and configuration failures return before any outbound call;
// upstream failures return before anything is persisted.
func (s *ChatService) Turn(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	if req.Message == "" || req.UserID == "" {
		metrics.RecordChatTurn("invalid")
		return nil, newError(ErrInvalidInput, "Missing message or user_id", nil)
	}

	if s.relay == nil || !s.relay.Configured() {
		metrics.RecordChatTurn("not_configured")
		s.logger.Error("chat relay credentials are not configured")
		return nil, newError(ErrNotConfigured, "Server configuration error", nil)
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = s.newID()
	}

	log := s.logger.With(
		zap.String("conversation_id", conversationID),
		zap.String("user_id", req.UserID),
	)

	reply, err := s.relay.Run(ctx, req.Message)
	if err != nil {
		return nil, s.upstreamError(log, err)
	}

	s.persist(ctx, log, &model.ChatMessage{
		ConversationID: conversationID,
		UserID:         req.UserID,
		Message:        req.Message,
		IsUser:         true,
		Timestamp:      s.now(),
	})
	s.persist(ctx, log, &model.ChatMessage{
		ConversationID: conversationID,
		UserID:         req.UserID,
		Message:        reply,
		IsUser:         false,
		Timestamp:      s.now(),
	})

	metrics.RecordChatTurn("success")

	return &model.ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Success:        true,
	}, nil
}

func (s *ChatService) upstreamError(log *logger.Logger, err error) error {
	var statusErr *langflow.StatusError
	switch {
	case errors.Is(err, langflow.ErrTimeout):
		metrics.RecordChatTurn("timeout")
		log.Warn("chat upstream timed out", zap.Error(err))
		return newError(ErrUpstreamTimeout, "Request timed out", err)
	case errors.As(err, &statusErr):
		metrics.RecordChatTurn("upstream_error")
		log.Error("chat upstream returned error status",
			zap.Int("status", statusErr.StatusCode),
			zap.String("body", statusErr.Body),
		)
		return newError(ErrUpstreamStatus, "Chat service unavailable", err)
	default:
		metrics.RecordChatTurn("unavailable")
		log.Error("chat upstream call failed", zap.Error(err))
		return newError(ErrUpstreamUnavailable, "Failed to get response from chat service", err)
	}
}

// persist writes one message. Failures are logged and counted, never
// returned. The write outlives client cancellation so a disconnect after
// the reply arrives does not drop the transcript.
func (s *ChatService) persist(ctx context.Context, log *logger.Logger, msg *model.ChatMessage) {
	if s.store == nil {
		return
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	if err := s.store.Insert(ctx, msg); err != nil {
		metrics.RecordPersistenceFailure(string(msg.Role()))
		log.Error("failed to persist chat message",
			zap.String("role", string(msg.Role())),
			zap.Error(err),
		)
	}
}
