// internal/app/features/logout/logout.go
package logout

import (
	"net/http"

	"github.com/dalemusser/papilloncast/internal/app/system/auditlog"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides the sign-out handler.
type Handler struct {
	sessionMgr  *auth.SessionManager
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new logout Handler. auditLogger may be nil.
func NewHandler(sessionMgr *auth.SessionManager, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		sessionMgr:  sessionMgr,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns a chi.Router for POST /auth/signout. Anonymous callers are
// sent home too, so signing out twice is harmless.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.handleLogout)
	return r
}

// handleLogout terminates the session.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.CurrentUser(r); ok {
		h.auditLogger.SignOut(r.Context(), r, user.Email)
		h.logger.Debug("signed out", zap.String("email", user.Email))
	}

	h.sessionMgr.DestroySession(w, r)

	http.Redirect(w, r, auth.HomePath, http.StatusSeeOther)
}
