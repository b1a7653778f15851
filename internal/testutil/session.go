package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"go.uber.org/zap"
)

// SessionKey is a 32-byte key for test session managers.
const SessionKey = "test-session-key-for-testing-123"

// NewSessionManager returns a cookie session manager trusting AdminSuffix.
func NewSessionManager(t testing.TB) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(SessionKey, "test-session", "", time.Hour, false, AdminSuffix, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// WithCookies copies the cookies a handler set in rec onto req.
func WithCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}
