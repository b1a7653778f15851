// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides health check endpoints.
type Handler struct {
	store   Pinger
	backend string
	logger  *zap.Logger
}

// NewHandler creates a new health check Handler. backend names the record
// store in responses.
func NewHandler(store Pinger, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		store:   store,
		backend: backend,
		logger:  logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the Kubernetes-style probes to the root router.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

func (h *Handler) ping(r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	return h.store.Ping(ctx)
}

// Check reports the status of each backing service.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: "ok", Services: map[string]string{}}
	if err := h.ping(r); err != nil {
		resp.Status = "degraded"
		resp.Services[h.backend] = "unavailable"
		h.logger.Warn("health check: store ping failed", zap.String("backend", h.backend), zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Services[h.backend] = "ok"
	jsonutil.OK(w, resp)
}

// Ready reports whether the service can serve requests.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.ping(r); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "not ready"})
		return
	}
	jsonutil.OK(w, Response{Status: "ready"})
}

// Live reports that the process is up.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, Response{Status: "alive"})
}
