// Package waitlist provides the public signup endpoint.
//
//   - POST /api/waitlist {email}
package waitlist

import (
	"errors"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	"github.com/dalemusser/papilloncast/internal/app/system/access"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves waitlist signups.
type Handler struct {
	access *access.Machine
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new waitlist Handler.
func NewHandler(machine *access.Machine, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{access: machine, errLog: errLog, logger: logger}
}

// Routes returns a chi.Router for the waitlist endpoint. Extra middleware,
// such as a throttle, wraps the POST.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.With(mw...).Post("/", h.join)
	return r
}

type joinRequest struct {
	Email string `json:"email"`
}

type joinResponse struct {
	Success       bool   `json:"success,omitempty"`
	AlreadyExists bool   `json:"alreadyExists,omitempty"`
	Message       string `json:"message"`
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	var in joinRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		metrics.WaitlistSignups.WithLabelValues(metrics.OutcomeInvalid).Inc()
		jsonutil.BadRequest(w, "Valid email is required")
		return
	}

	res, err := h.access.RequestJoin(r.Context(), strings.TrimSpace(in.Email))
	switch {
	case errors.Is(err, access.ErrInvalidEmail):
		metrics.WaitlistSignups.WithLabelValues(metrics.OutcomeInvalid).Inc()
		jsonutil.BadRequest(w, "Valid email is required")
		return
	case err != nil:
		metrics.WaitlistSignups.WithLabelValues(metrics.OutcomeError).Inc()
		h.errLog.Log(r, "waitlist signup failed", err)
		jsonutil.InternalError(w)
		return
	}

	if !res.Created {
		metrics.WaitlistSignups.WithLabelValues(metrics.OutcomeExisting).Inc()
		jsonutil.OK(w, joinResponse{AlreadyExists: true, Message: res.Message})
		return
	}
	metrics.WaitlistSignups.WithLabelValues(metrics.OutcomeCreated).Inc()
	jsonutil.OK(w, joinResponse{Success: true, Message: res.Message})
}
