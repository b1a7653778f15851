package settingsapi

import (
	"net/http"

	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the settings endpoints.
//
// When mounted at /api/user/settings:
//   - GET   /api/user/settings
//   - PATCH /api/user/settings
//
// Anonymous callers get 401.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedInAPI)
	r.Get("/", h.GetHandler)
	r.Patch("/", h.UpdateHandler)
	return r
}
