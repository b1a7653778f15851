package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/papilloncast/internal/app/store/audit"
	"github.com/dalemusser/papilloncast/internal/app/system/auditlog"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/testutil"
	"go.uber.org/zap"
)

func TestLogout(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	rs := testutil.SetupTestStore(t)
	auditStore := audit.New(rs)
	h := NewHandler(sm, auditlog.New(auditStore, zap.NewNop(), auditlog.Config{Auth: auditlog.DestDB}), zap.NewNop())

	// Sign in, then carry the cookie into the sign-out request.
	login := httptest.NewRecorder()
	if err := sm.CreateSession(login, httptest.NewRequest(http.MethodGet, "/", nil), "a@x.com", ""); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", testutil.MemberUser())
	testutil.WithCookies(req, login)

	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("logout = %d %q, want 303 /", rec.Code, rec.Header().Get("Location"))
	}

	// The replacement cookie carries no session.
	next := testutil.WithCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	var signedIn bool
	sm.LoadSessionUser(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, signedIn = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), next)
	if signedIn {
		t.Error("session survived sign-out")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := auditStore.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 1 || events[0].EventType != audit.EventSignOut || events[0].Email != "a@x.com" {
		t.Errorf("audit events = %+v, want one sign-out", events)
	}
}

func TestLogout_Anonymous(t *testing.T) {
	h := NewHandler(testutil.NewSessionManager(t), nil, zap.NewNop())
	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	rec.AssertRedirect(t, "/")
}

func TestLogout_GetNotAllowed(t *testing.T) {
	h := NewHandler(testutil.NewSessionManager(t), nil, zap.NewNop())
	rec := httptest.NewRecorder()
	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}
}
