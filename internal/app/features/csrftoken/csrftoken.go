// Package csrftoken hands the CSRF token to script clients.
//
//   - GET /api/csrf -> {"csrfToken": "..."}
//
// Pages already carry the token in a meta tag; this endpoint serves clients
// that have no page to read it from.
package csrftoken

import (
	"net/http"

	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
)

type tokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// Routes returns a router with the token endpoint.
func Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", serveToken)
	return r
}

func serveToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	jsonutil.OK(w, tokenResponse{CSRFToken: csrf.Token(r)})
}
