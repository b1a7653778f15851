// internal/app/features/systemusers/systemusers.go
// Package systemusers is the administrative user API.
//
//   - GET   /api/admin/users                  all user records, newest first
//   - PATCH /api/admin/users {email, status}  change a user's status
//
// Both sit behind the admin API gate.
package systemusers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/app/system/access"
	"github.com/dalemusser/papilloncast/internal/app/system/auditlog"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/inputval"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides the admin user handlers.
type Handler struct {
	users       *userstore.Store
	access      *access.Machine
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new system users Handler.
func NewHandler(
	users *userstore.Store,
	machine *access.Machine,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:       users,
		access:      machine,
		errLog:      errLog,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// Routes returns a chi.Router with the admin user endpoints.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireAdminAPI)
	r.Get("/", h.list)
	r.Patch("/", h.update)
	return r
}

type listResponse struct {
	Users []models.UserRecord `json:"users"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.errLog.Log(r, "admin users fetch failed", err)
		jsonutil.InternalError(w)
		return
	}
	if users == nil {
		users = []models.UserRecord{}
	}
	jsonutil.OK(w, listResponse{Users: users})
}

type updateRequest struct {
	Email  string `json:"email" validate:"required"`
	Status string `json:"status" validate:"required,userstatus"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	var in updateRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, "Email and status are required")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if res := inputval.Validate(in); !res.OK() {
		if res.Failed(inputval.RuleRequired) {
			jsonutil.BadRequest(w, "Email and status are required")
		} else {
			jsonutil.BadRequest(w, "Invalid status")
		}
		return
	}

	_, from, err := h.access.ChangeStatus(r.Context(), actor.Email, in.Email, in.Status)
	switch {
	case errors.Is(err, access.ErrInvalidStatus):
		jsonutil.BadRequest(w, "Invalid status")
		return
	case errors.Is(err, access.ErrNotFound):
		jsonutil.NotFound(w, "User not found")
		return
	case err != nil:
		h.errLog.Log(r, "admin user update failed", err)
		jsonutil.InternalError(w)
		return
	}

	metrics.StatusChanges.WithLabelValues(in.Status).Inc()
	h.auditLogger.StatusChanged(r.Context(), r, actor.Email, in.Email, from, in.Status)
	jsonutil.Success(w, fmt.Sprintf("User %s updated to %s", in.Email, in.Status))
}
