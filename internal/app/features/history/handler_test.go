package history

import (
	"net/http"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	historystore "github.com/dalemusser/papilloncast/internal/app/store/history"
	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/app/system/historyledger"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"github.com/dalemusser/papilloncast/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	router http.Handler
	ledger *historyledger.Ledger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	rs := testutil.SetupTestStore(t)
	users := userstore.New(rs)
	hist := historystore.New(rs)
	hist.SetClock(testutil.FixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second))
	ledger := historyledger.New(hist, users, zap.NewNop())
	h := NewHandler(ledger, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return fixture{router: Routes(h, testutil.NewSessionManager(t)), ledger: ledger}
}

func (f fixture) appendEntry(t *testing.T, owner, typ string) *models.HistoryEntry {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e, err := f.ledger.Append(ctx, owner, typ, models.FeedWindow4Hours, "some generated words")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	return e
}

func (f fixture) list(t *testing.T, user testutil.TestUser) []models.HistoryEntry {
	t.Helper()
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", user))
	rec.AssertStatus(t, http.StatusOK)
	var body listResponse
	rec.DecodeJSON(t, &body)
	return body.History
}

func TestListHandler(t *testing.T) {
	f := newFixture(t)
	older := f.appendEntry(t, "a@x.com", models.ContentQuick)
	newer := f.appendEntry(t, "a@x.com", models.ContentDeepDive)
	f.appendEntry(t, "b@x.com", models.ContentQuick)

	got := f.list(t, testutil.MemberUser())
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 (own only)", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("order = %s, %s; want newest first", got[0].ID, got[1].ID)
	}
	if got[0].ID != historystore.MakeID("a@x.com", newer.CreatedAt) {
		t.Errorf("id = %q, want email:millis", got[0].ID)
	}
}

func TestListHandler_Empty(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"history":[]`)
}

func TestUpdateHandler_ToggleFavorite(t *testing.T) {
	f := newFixture(t)
	e := f.appendEntry(t, "a@x.com", models.ContentQuick)

	for i, want := range []bool{true, false} {
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/",
			updateRequest{ID: e.ID, Action: ActionToggleFavorite}, testutil.MemberUser()))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"success":true`)

		if got := f.list(t, testutil.MemberUser())[0].Favorited; got != want {
			t.Errorf("toggle %d: favorited = %v, want %v", i+1, got, want)
		}
	}
}

func TestUpdateHandler_NoOps(t *testing.T) {
	f := newFixture(t)
	e := f.appendEntry(t, "a@x.com", models.ContentQuick)

	tests := []struct {
		name string
		body updateRequest
	}{
		{"unknown id", updateRequest{ID: "a@x.com:1", Action: ActionToggleFavorite}},
		{"malformed id", updateRequest{ID: "nonsense", Action: ActionToggleFavorite}},
		{"empty id", updateRequest{Action: ActionToggleFavorite}},
		{"unknown action", updateRequest{ID: e.ID, Action: "delete"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			f.router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/", tt.body, testutil.MemberUser()))
			rec.AssertStatus(t, http.StatusOK)
			rec.AssertContains(t, `"success":true`)
		})
	}
	if f.list(t, testutil.MemberUser())[0].Favorited {
		t.Error("no-op requests changed the entry")
	}
}

func TestUpdateHandler_Malformed(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/", "{id:", testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestAnonymous(t *testing.T) {
	f := newFixture(t)
	for _, method := range []string{http.MethodGet, http.MethodPatch} {
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, testutil.NewJSONRequest(method, "/", updateRequest{}))
		rec.AssertStatus(t, http.StatusUnauthorized)
	}
}

func TestStoreFailure(t *testing.T) {
	rs := testutil.FailingStore{}
	ledger := historyledger.New(historystore.New(rs), userstore.New(rs), zap.NewNop())
	router := Routes(NewHandler(ledger, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop()), testutil.NewSessionManager(t))

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusInternalServerError)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest(http.MethodPatch, "/",
		updateRequest{ID: "a@x.com:1", Action: ActionToggleFavorite}, testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusInternalServerError)
}
