package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/papilloncast/internal/testutil"
)

func TestStore_LogAndRecent(t *testing.T) {
	s := New(testutil.SetupTestStore(t))
	s.now = testutil.FixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events := []Event{
		{Category: CategoryAuth, EventType: EventSignInSuccess, Email: "a@x.com", Success: true, IP: "10.0.0.1"},
		{Category: CategoryAuth, EventType: EventSignInDeniedStatus, Email: "b@x.com", FailureReason: "waitlist"},
		{Category: CategoryAdmin, EventType: EventUserStatusChanged, Email: "b@x.com", ActorEmail: "ops@peaksynergyai.com",
			Success: true, Details: map[string]string{"from": "waitlist", "to": "active"}},
	}
	for _, e := range events {
		if err := s.Log(ctx, e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d events, want 3", len(got))
	}
	if got[0].EventType != EventUserStatusChanged {
		t.Errorf("newest event = %q, want %q", got[0].EventType, EventUserStatusChanged)
	}
	if got[0].Details["to"] != "active" || got[0].ActorEmail != "ops@peaksynergyai.com" {
		t.Errorf("admin event round trip = %+v", got[0])
	}
	if got[1].Success || got[1].FailureReason != "waitlist" {
		t.Errorf("denied event = %+v", got[1])
	}
	if !strings.Contains(got[2].ID, ":") {
		t.Errorf("ID = %q, want millis:uuid", got[2].ID)
	}

	limited, _ := s.Recent(ctx, 2)
	if len(limited) != 2 {
		t.Errorf("Recent(2) returned %d events", len(limited))
	}
}
