package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/autodocx/relay-api/internal/middleware"
	"github.com/autodocx/relay-api/internal/model"
	"github.com/autodocx/relay-api/internal/service"
	"github.com/autodocx/relay-api/pkg/logger"
)

// ChatHandler handles the chat relay endpoint.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WithRequest(middleware.GetCorrelationID(ctx), "").Debug("malformed chat body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	log := h.logger.WithRequest(middleware.GetCorrelationID(ctx), req.UserID)

	if err := middleware.ValidateChatRequest(&req); err != nil {
		log.Debug("rejected chat request", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !middleware.CanActAs(ctx, req.UserID) {
		log.Warn("user_id does not match token subject", zap.String("subject", middleware.GetUserID(ctx)))
		writeError(w, http.StatusForbidden, "user_id does not match the authenticated user")
		return
	}

	resp, err := h.service.Turn(ctx, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
