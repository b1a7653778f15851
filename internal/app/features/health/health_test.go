package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/papilloncast/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestEndpoints(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name       string
		store      Pinger
		path       string
		wantStatus int
		wantBody   string
	}{
		{"check ok", testutil.SetupTestStore(t), "/health", http.StatusOK, `"memory":"ok"`},
		{"check degraded", fakePinger{down}, "/health", http.StatusServiceUnavailable, `"status":"degraded"`},
		{"ready ok", fakePinger{}, "/health/ready", http.StatusOK, `"status":"ready"`},
		{"ready down", fakePinger{down}, "/health/ready", http.StatusServiceUnavailable, `"status":"not ready"`},
		{"readyz", fakePinger{}, "/readyz", http.StatusOK, `"status":"ready"`},
		{"live", fakePinger{down}, "/health/live", http.StatusOK, `"status":"alive"`},
		{"livez", fakePinger{down}, "/livez", http.StatusOK, `"status":"alive"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.store, "memory", zap.NewNop())
			r := chi.NewRouter()
			r.Mount("/health", Routes(h))
			MountRootEndpoints(r, h)

			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			rec.AssertStatus(t, tt.wantStatus)
			rec.AssertContains(t, tt.wantBody)
		})
	}
}
