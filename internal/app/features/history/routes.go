package history

import (
	"net/http"

	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the history endpoints, mounted at
// /api/user/history. Anonymous callers get 401.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedInAPI)
	r.Get("/", h.ListHandler)
	r.Patch("/", h.UpdateHandler)
	return r
}
