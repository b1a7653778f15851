// Package history serves the signed-in user's generation history.
//
// Endpoints:
//   - GET   /api/user/history - The caller's entries, newest first
//   - PATCH /api/user/history - {id, action: "toggle-favorite"}
package history

import (
	"net/http"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/historyledger"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

// ActionToggleFavorite is the only PATCH action.
const ActionToggleFavorite = "toggle-favorite"

// Handler handles history requests.
type Handler struct {
	ledger *historyledger.Ledger
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new history handler.
func NewHandler(ledger *historyledger.Ledger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{ledger: ledger, errLog: errLog, logger: logger}
}

type listResponse struct {
	History []models.HistoryEntry `json:"history"`
}

// ListHandler handles GET requests.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	entries, err := h.ledger.ListFor(r.Context(), me.Email)
	if err != nil {
		h.errLog.Log(r, "history fetch failed", err)
		jsonutil.InternalError(w)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	jsonutil.OK(w, listResponse{History: entries})
}

type updateRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// UpdateHandler handles PATCH requests. It answers {"success": true} whether
// or not anything changed: unknown ids and unknown actions are no-ops.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	var in updateRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid request body")
		return
	}

	if in.Action == ActionToggleFavorite {
		favorited, err := h.ledger.ToggleFavorite(r.Context(), me.Email, in.ID)
		if err != nil {
			h.errLog.Log(r, "favorite toggle failed", err)
			jsonutil.InternalError(w)
			return
		}
		metrics.FavoriteToggles.Inc()
		h.logger.Debug("favorite toggled",
			zap.String("email", me.Email),
			zap.String("id", in.ID),
			zap.Bool("favorited", favorited))
	}

	jsonutil.Success(w, "")
}
