package generate

import (
	"net/http"

	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the generation endpoint, mounted at
// /api/generate-content. Anonymous callers get 401.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedInAPI)
	r.Post("/", h.GenerateHandler)
	return r
}
