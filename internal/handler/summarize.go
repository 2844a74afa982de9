package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/autodocx/relay-api/internal/middleware"
	"github.com/autodocx/relay-api/internal/model"
	"github.com/autodocx/relay-api/internal/service"
	"github.com/autodocx/relay-api/pkg/logger"
)

// SummarizeHandler handles the code summarization endpoint.
type SummarizeHandler struct {
	service *service.SummaryService
	logger  *logger.Logger
}

// NewSummarizeHandler creates a new summarize handler.
func NewSummarizeHandler(svc *service.SummaryService, log *logger.Logger) *SummarizeHandler {
	return &SummarizeHandler{
		service: svc,
		logger:  log,
	}
}

// Summarize handles POST /api/summarize
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithRequest(middleware.GetCorrelationID(r.Context()), middleware.GetUserID(r.Context()))

	var req model.SummarizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Debug("malformed summarize body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateSummarizeRequest(&req); err != nil {
		log.Debug("rejected summarize request", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Summarize(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
