// internal/app/features/login/login.go
package login

import (
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	"github.com/dalemusser/papilloncast/internal/app/resources"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/authutil"
	"github.com/dalemusser/papilloncast/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DevProvider labels dev sign-ins in audit events and metrics.
const DevProvider = "dev"

// Handler serves the sign-in and auth error pages, and the dev-only direct
// sign-in.
type Handler struct {
	completer     *authutil.Completer
	errLog        *errorsfeature.ErrorLogger
	googleEnabled bool
	devEnabled    bool
	logger        *zap.Logger
}

// NewHandler creates a new login Handler. devEnabled must only be true in
// the dev environment: it signs in any active email without verification.
func NewHandler(completer *authutil.Completer, errLog *errorsfeature.ErrorLogger, googleEnabled, devEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		completer:     completer,
		errLog:        errLog,
		googleEnabled: googleEnabled,
		devEnabled:    devEnabled,
		logger:        logger,
	}
}

// Routes returns a chi.Router for /auth.
//
//   - GET  /signin     sign-in page
//   - POST /signin/dev dev sign-in (dev env only)
//   - GET  /error      auth error page
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/signin", h.serveSignIn)
	if h.devEnabled {
		r.Post("/signin/dev", h.handleDevSignIn)
	}
	r.Get("/error", h.serveError)
	return r
}

func (h *Handler) serveSignIn(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, authutil.ReaderPath, http.StatusSeeOther)
		return
	}

	vm := viewdata.New(r, "Sign in")
	vm.GoogleSignIn = h.googleEnabled
	vm.DevSignIn = h.devEnabled
	if code := r.URL.Query().Get("error"); code != "" {
		vm.Message = authutil.ErrorMessage(code)
	}
	h.render(w, r, http.StatusOK, "signin", vm)
}

func (h *Handler) serveError(w http.ResponseWriter, r *http.Request) {
	vm := viewdata.New(r, "Authentication Error")
	vm.Message = authutil.ErrorMessage(r.URL.Query().Get("error"))
	h.render(w, r, http.StatusOK, "autherror", vm)
}

func (h *Handler) handleDevSignIn(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	h.logger.Info("dev sign-in attempt", zap.String("email", email))
	http.Redirect(w, r, h.completer.Complete(w, r, email, DevProvider), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, vm resources.PageData) {
	if err := resources.RenderPage(w, status, page, vm); err != nil {
		h.errLog.Log(r, "render "+page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
