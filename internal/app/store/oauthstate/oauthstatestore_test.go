package oauthstate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/papilloncast/internal/testutil"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T) (*Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := New(testutil.SetupTestStore(t))
	s.SetClock(c.now)
	return s, c
}

func TestStore_CreateAndVerify(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state := "random-state-token-12345"
	if err := s.Create(ctx, state, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !s.Verify(ctx, state) {
		t.Error("Verify() should accept a fresh state")
	}
	if s.Verify(ctx, state) {
		t.Error("Verify() should reject a used state")
	}
}

func TestStore_VerifyRejects(t *testing.T) {
	s, c := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Create(ctx, "old", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	c.advance(TTL)

	tests := []struct {
		name  string
		state string
	}{
		{"expired", "old"},
		{"unknown", "never-issued"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s.Verify(ctx, tt.state) {
				t.Errorf("Verify(%q) = true, want false", tt.state)
			}
		})
	}
}

func TestStore_CreateDuplicate(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Create(ctx, "dup", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Create(ctx, "dup", ""); err == nil {
		t.Error("second Create() should fail")
	}
}

func TestStore_VerifyConcurrentSingleUse(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Create(ctx, "race", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Verify(ctx, "race") {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	if ok.Load() != 1 {
		t.Errorf("%d callers verified the state, want 1", ok.Load())
	}
}

func TestStore_DeleteExpired(t *testing.T) {
	s, c := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, st := range []string{"a", "b"} {
		if err := s.Create(ctx, st, ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if !s.Verify(ctx, "a") {
		t.Fatal("Verify(a) = false")
	}

	n, err := s.DeleteExpired(ctx)
	if err != nil || n != 0 {
		t.Fatalf("DeleteExpired() before expiry = %d, %v", n, err)
	}

	c.advance(TTL + time.Second)
	if err := s.Create(ctx, "fresh", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	n, err = s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	// "b" and the claim marker for "a".
	if n != 2 {
		t.Errorf("DeleteExpired() = %d, want 2", n)
	}
	if !s.Verify(ctx, "fresh") {
		t.Error("unexpired state was removed")
	}
}

func TestStore_ConsumeReturnsVerifier(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Create(ctx, "pkce", "verifier-abc"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	v, ok := s.Consume(ctx, "pkce")
	if !ok || v != "verifier-abc" {
		t.Errorf("Consume() = %q, %v; want the stored verifier", v, ok)
	}
	if _, ok := s.Consume(ctx, "pkce"); ok {
		t.Error("second Consume() should fail")
	}
}
