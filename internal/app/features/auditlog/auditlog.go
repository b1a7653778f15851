// Package auditlog serves recent security events to administrators.
//
//   - GET /api/admin/audit?category=auth&eventType=signout&limit=50
package auditlog

import (
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	"github.com/dalemusser/papilloncast/internal/app/store/audit"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Handler provides audit log handlers.
type Handler struct {
	auditStore *audit.Store
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new audit log Handler.
func NewHandler(auditStore *audit.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{auditStore: auditStore, errLog: errLog, logger: logger}
}

// Routes returns a chi.Router with the audit endpoint behind the admin API gate.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdminAPI)
	r.Get("/", h.list)
	return r
}

type listResponse struct {
	Events []audit.Event `json:"events"`
}

// parseLimit clamps the limit query parameter to [1, maxLimit].
func parseLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	eventType := q.Get("eventType")
	limit := parseLimit(q.Get("limit"))

	// Filters apply after the store read, so read everything when filtering.
	fetch := limit
	if category != "" || eventType != "" {
		fetch = 0
	}
	events, err := h.auditStore.Recent(r.Context(), fetch)
	if err != nil {
		h.errLog.Log(r, "audit fetch failed", err)
		jsonutil.InternalError(w)
		return
	}

	out := make([]audit.Event, 0, len(events))
	for _, e := range events {
		if category != "" && e.Category != category {
			continue
		}
		if eventType != "" && e.EventType != eventType {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	jsonutil.OK(w, listResponse{Events: out})
}
