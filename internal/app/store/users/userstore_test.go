package userstore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"github.com/dalemusser/papilloncast/internal/testutil"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*Store, records.Store) {
	t.Helper()
	rs := testutil.SetupTestStore(t)
	s := New(rs)
	s.SetClock(testutil.FixedClock(t0, time.Second))
	return s, rs
}

func TestStore_Create(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "a@x.com", models.StatusWaitlist)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != models.StatusWaitlist {
		t.Errorf("Status = %q, want waitlist", created.Status)
	}
	if created.FeedTimeWindow != models.DefaultFeedTimeWindow {
		t.Errorf("FeedTimeWindow = %q, want %q", created.FeedTimeWindow, models.DefaultFeedTimeWindow)
	}
	if created.BlueskyConnected {
		t.Error("BlueskyConnected should default to false")
	}

	got, err := store.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, t0)
	}
	if got.LastLogin != nil || got.UpdatedAt != nil {
		t.Errorf("new record should have no lastLogin/updatedAt: %+v", got)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "a@x.com", models.StatusWaitlist); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.SetStatus(ctx, "a@x.com", models.StatusActive, "ops@peaksynergyai.com"); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	_, err := store.Create(ctx, "a@x.com", models.StatusWaitlist)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("second Create() error = %v, want ErrExists", err)
	}

	got, _ := store.Get(ctx, "a@x.com")
	if got.Status != models.StatusActive {
		t.Errorf("Status = %q, duplicate Create must not overwrite", got.Status)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "nobody@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_Get_CaseSensitive(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "A@X.com", models.StatusWaitlist); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Get(ctx, "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() with different case error = %v, want ErrNotFound", err)
	}
}

func TestStore_SetStatus(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "a@x.com", models.StatusWaitlist); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	at, err := store.SetStatus(ctx, "a@x.com", models.StatusActive, "ops@peaksynergyai.com")
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	got, _ := store.Get(ctx, "a@x.com")
	if got.Status != models.StatusActive {
		t.Errorf("Status = %q, want active", got.Status)
	}
	if got.UpdatedBy != "ops@peaksynergyai.com" {
		t.Errorf("UpdatedBy = %q", got.UpdatedBy)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, at)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}
	if got.FeedTimeWindow != models.DefaultFeedTimeWindow {
		t.Errorf("FeedTimeWindow = %q, merge should keep other fields", got.FeedTimeWindow)
	}
}

func TestStore_UpdateSettings(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "a@x.com", models.StatusActive); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	window := models.FeedWindow24Hours
	if err := store.UpdateSettings(ctx, "a@x.com", SettingsUpdate{FeedTimeWindow: &window}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	connected := true
	if err := store.UpdateSettings(ctx, "a@x.com", SettingsUpdate{BlueskyConnected: &connected}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	got, _ := store.Get(ctx, "a@x.com")
	if got.FeedTimeWindow != models.FeedWindow24Hours {
		t.Errorf("FeedTimeWindow = %q, want 24hours", got.FeedTimeWindow)
	}
	if !got.BlueskyConnected {
		t.Error("BlueskyConnected = false, want true")
	}
	if got.UpdatedAt == nil {
		t.Error("UpdatedAt should be set")
	}
}

func TestStore_UpdateSettings_Empty(t *testing.T) {
	store, rs := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.UpdateSettings(ctx, "ghost@x.com", SettingsUpdate{}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if _, err := rs.Get(ctx, "user:ghost@x.com"); !errors.Is(err, records.ErrNotFound) {
		t.Error("empty update must not write a record")
	}
}

func TestStore_Touch(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "a@x.com", models.StatusActive); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.TouchLastLogin(ctx, "a@x.com"); err != nil {
		t.Fatalf("TouchLastLogin() error = %v", err)
	}
	refresh := t0.Add(time.Hour)
	if err := store.TouchLastFeedRefresh(ctx, "a@x.com", refresh); err != nil {
		t.Fatalf("TouchLastFeedRefresh() error = %v", err)
	}

	got, _ := store.Get(ctx, "a@x.com")
	if got.LastLogin == nil || !got.LastLogin.After(got.CreatedAt) {
		t.Errorf("LastLogin = %v, want after CreatedAt", got.LastLogin)
	}
	if got.LastFeedRefresh == nil || !got.LastFeedRefresh.Equal(refresh) {
		t.Errorf("LastFeedRefresh = %v, want %v", got.LastFeedRefresh, refresh)
	}
}

func TestStore_List(t *testing.T) {
	store, rs := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, e := range []string{"first@x.com", "second@x.com", "third@x.com"} {
		if _, err := store.Create(ctx, e, models.StatusWaitlist); err != nil {
			t.Fatalf("Create(%s) error = %v", e, err)
		}
	}
	// Unrelated keys must not show up.
	if err := rs.Put(ctx, "history:first@x.com:1", records.Fields{"type": "quick"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	users, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("List() returned %d users, want 3", len(users))
	}
	want := []string{"third@x.com", "second@x.com", "first@x.com"}
	for i, u := range users {
		if u.Email != want[i] {
			t.Errorf("users[%d] = %q, want %q (newest first)", i, u.Email, want[i])
		}
	}
}

func TestDecode_Tolerant(t *testing.T) {
	u := decode(records.Fields{
		"email":     "a@x.com",
		"status":    "active",
		"createdAt": "2026-03-01T12:00:00.000Z",
		"lastLogin": "null",
		"updatedAt": "not-a-time",
	})
	if u.LastLogin != nil || u.UpdatedAt != nil {
		t.Errorf("unparsable times should decode to nil: %+v", u)
	}
	if u.FeedTimeWindow != models.DefaultFeedTimeWindow {
		t.Errorf("missing feedTimeWindow should default, got %q", u.FeedTimeWindow)
	}
	if !u.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", u.CreatedAt, t0)
	}
}

func TestFetcher(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := NewFetcher(store, testutil.AdminSuffix, zap.NewNop())

	if _, err := store.Create(ctx, "a@x.com", models.StatusWaitlist); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create(ctx, "ops@peaksynergyai.com", models.StatusActive); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if u, err := f.FetchUser(ctx, "a@x.com"); u != nil || err != nil {
		t.Errorf("waitlisted user: FetchUser() = %v, %v; want nil, nil", u, err)
	}
	if u, err := f.FetchUser(ctx, "nobody@x.com"); u != nil || err != nil {
		t.Errorf("missing user: FetchUser() = %v, %v; want nil, nil", u, err)
	}

	u, err := f.FetchUser(ctx, "ops@peaksynergyai.com")
	if err != nil || u == nil {
		t.Fatalf("active admin: FetchUser() = %v, %v", u, err)
	}
	if !u.IsAdmin || u.Status != models.StatusActive {
		t.Errorf("FetchUser() = %+v, want active admin", u)
	}
}
