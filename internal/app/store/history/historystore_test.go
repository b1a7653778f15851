package historystore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/papilloncast/internal/domain/models"
	"github.com/dalemusser/papilloncast/internal/testutil"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(owner string) models.HistoryEntry {
	return models.HistoryEntry{
		OwnerEmail:     owner,
		Type:           models.ContentQuick,
		FeedTimeWindow: models.FeedWindow1Hour,
		Content:        "one two three",
		WordCount:      3,
		ReadingTime:    1,
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		id      string
		owner   string
		ms      int64
		wantErr bool
	}{
		{"a@x.com:1700000000000", "a@x.com", 1700000000000, false},
		{"we:ird@x.com:5", "we:ird@x.com", 5, false},
		{"a@x.com", "", 0, true},
		{"a@x.com:", "", 0, true},
		{":123", "", 0, true},
		{"a@x.com:abc", "", 0, true},
		{"a@x.com:-1", "", 0, true},
	}
	for _, tt := range tests {
		owner, at, err := ParseID(tt.id)
		if tt.wantErr {
			if !errors.Is(err, ErrBadID) {
				t.Errorf("ParseID(%q) error = %v, want ErrBadID", tt.id, err)
			}
			continue
		}
		if err != nil || owner != tt.owner || at.UnixMilli() != tt.ms {
			t.Errorf("ParseID(%q) = %q, %d, %v", tt.id, owner, at.UnixMilli(), err)
		}
	}
}

func TestStore_Append(t *testing.T) {
	store := New(testutil.SetupTestStore(t))
	store.SetClock(func() time.Time { return t0 })
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.Append(ctx, entry("a@x.com"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if got.ID != MakeID("a@x.com", t0) {
		t.Errorf("ID = %q", got.ID)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, t0)
	}

	loaded, err := store.Get(ctx, got.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loaded.Content != "one two three" || loaded.WordCount != 3 || loaded.ReadingTime != 1 || loaded.Favorited {
		t.Errorf("Get() = %+v", loaded)
	}
}

func TestStore_Append_SameMillisecond(t *testing.T) {
	store := New(testutil.SetupTestStore(t))
	store.SetClock(func() time.Time { return t0 })
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Append(ctx, entry("a@x.com"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	second, err := store.Append(ctx, entry("a@x.com"))
	if err != nil {
		t.Fatalf("second Append() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("same-millisecond appends share ID %q", first.ID)
	}
	if !second.CreatedAt.Equal(t0.Add(time.Millisecond)) {
		t.Errorf("second CreatedAt = %v, want t0+1ms", second.CreatedAt)
	}

	// Another owner is unaffected by a's collision.
	other, _ := store.Append(ctx, entry("b@x.com"))
	if !other.CreatedAt.Equal(t0) {
		t.Errorf("other owner CreatedAt = %v, want %v", other.CreatedAt, t0)
	}

	list, _ := store.ListFor(ctx, "a@x.com")
	if len(list) != 2 {
		t.Errorf("ListFor() returned %d entries, want 2", len(list))
	}
}

func TestStore_ListFor(t *testing.T) {
	store := New(testutil.SetupTestStore(t))
	store.SetClock(testutil.FixedClock(t0, time.Minute))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, entry("a@x.com")); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if _, err := store.Append(ctx, entry("b@x.com")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	// An owner whose email extends a@x.com with a colon must not leak in.
	if _, err := store.Append(ctx, entry("a@x.com:z")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	list, err := store.ListFor(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("ListFor() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListFor() returned %d entries, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("entries not newest-first at %d: %v after %v", i, list[i].CreatedAt, list[i-1].CreatedAt)
		}
	}
	for _, e := range list {
		if e.OwnerEmail != "a@x.com" {
			t.Errorf("ListFor(a@x.com) returned entry of %q", e.OwnerEmail)
		}
	}

	empty, err := store.ListFor(ctx, "nobody@x.com")
	if err != nil || len(empty) != 0 {
		t.Errorf("ListFor(nobody) = %v, %v; want empty", empty, err)
	}
}

func TestStore_SetFavorited(t *testing.T) {
	store := New(testutil.SetupTestStore(t))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Append(ctx, entry("a@x.com"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.SetFavorited(ctx, e.ID, true); err != nil {
		t.Fatalf("SetFavorited() error = %v", err)
	}
	got, _ := store.Get(ctx, e.ID)
	if !got.Favorited {
		t.Error("Favorited = false, want true")
	}
	if got.Content != e.Content {
		t.Error("SetFavorited must not touch other fields")
	}
}

func TestStore_Get_Missing(t *testing.T) {
	store := New(testutil.SetupTestStore(t))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "a@x.com:1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, "garbage"); !errors.Is(err, ErrBadID) {
		t.Errorf("Get() error = %v, want ErrBadID", err)
	}
}
