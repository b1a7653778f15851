// Package pages serves the HTML shells for the landing page, the reader,
// and the admin console. The shells load their data from the JSON API.
package pages

import (
	"net/http"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	"github.com/dalemusser/papilloncast/internal/app/resources"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides page handlers.
type Handler struct {
	sessionMgr *auth.SessionManager
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new pages Handler.
func NewHandler(sessionMgr *auth.SessionManager, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{sessionMgr: sessionMgr, errLog: errLog, logger: logger}
}

// HomeRouter returns a router for the public landing page.
func (h *Handler) HomeRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showPage("index", "PapillonCast"))
	return r
}

// ReaderRouter returns a router for the reader. Everything under it requires
// a session; anonymous visitors are sent to sign in.
func (h *Handler) ReaderRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(h.sessionMgr.RequireSignedIn)
	r.Get("/", h.showPage("reader", "Reader"))
	r.Get("/history", h.showPage("reader", "History"))
	return r
}

// AdminRouter returns a router for the admin console. Anonymous visitors go
// to sign in; signed-in users outside the admin domain go home.
func (h *Handler) AdminRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(h.sessionMgr.RequireAdminPage)
	r.Get("/", h.showPage("admin", "Admin"))
	return r
}

// showPage returns a handler that renders the named page shell.
func (h *Handler) showPage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := resources.RenderPage(w, http.StatusOK, name, viewdata.New(r, title)); err != nil {
			h.errLog.Log(r, "page render failed", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
