// Package generate serves content generation for the reader.
//
// Endpoints:
//   - POST /api/generate-content - {type, feedTimeWindow} -> {content}
//
// Every successful generation is recorded in the caller's history.
package generate

import (
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/dispatch"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

// Handler handles generation requests.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new generate handler.
func NewHandler(dispatcher *dispatch.Dispatcher, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, errLog: errLog, logger: logger}
}

type generateRequest struct {
	Type           string `json:"type"`
	FeedTimeWindow string `json:"feedTimeWindow"`
}

type generateResponse struct {
	Content string `json:"content"`
}

// typeLabel keeps caller-supplied types out of metric labels.
func typeLabel(t string) string {
	if models.IsValidContentType(t) {
		return t
	}
	return "unknown"
}

// GenerateHandler handles POST requests.
//
// Request body:
//
//	{"type": "quick", "feedTimeWindow": "4hours"}
//
// Response (200 OK):
//
//	{"content": "..."}
func (h *Handler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	var in generateRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		metrics.Generations.WithLabelValues("unknown", metrics.OutcomeInvalid).Inc()
		jsonutil.BadRequest(w, "Invalid content type")
		return
	}

	res, err := h.dispatcher.Generate(r.Context(), me.Email, in.Type, in.FeedTimeWindow)
	switch {
	case errors.Is(err, dispatch.ErrInvalidContentType):
		metrics.Generations.WithLabelValues(typeLabel(in.Type), metrics.OutcomeInvalid).Inc()
		jsonutil.BadRequest(w, "Invalid content type")
		return
	case errors.Is(err, dispatch.ErrNotConnected):
		metrics.Generations.WithLabelValues(in.Type, metrics.OutcomeDenied).Inc()
		jsonutil.BadRequest(w, "BlueSky account not connected")
		return
	case err != nil:
		metrics.Generations.WithLabelValues(in.Type, metrics.OutcomeError).Inc()
		h.errLog.LogWithFields(r, "content generation failed", err, zap.String("type", in.Type))
		jsonutil.InternalError(w)
		return
	}

	metrics.Generations.WithLabelValues(in.Type, metrics.OutcomeOK).Inc()
	h.logger.Info("content generated",
		zap.String("email", me.Email),
		zap.String("type", in.Type),
		zap.String("id", res.Entry.ID))
	jsonutil.OK(w, generateResponse{Content: res.Content})
}
