package throttle

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestLimiter_Allow(t *testing.T) {
	// Effectively no refill during the test.
	l, err := New(0.0001, 2, 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("first two requests should pass the burst")
	}
	if l.Allow("1.1.1.1") {
		t.Error("third request should be limited")
	}
	if !l.Allow("2.2.2.2") {
		t.Error("other keys have their own bucket")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l, err := New(0, 1, 10)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i := 0; i < 100; i++ {
		if !l.Allow("k") {
			t.Fatalf("request %d limited with limiting disabled", i)
		}
	}
}

func TestLimiter_Eviction(t *testing.T) {
	l, err := New(0.0001, 1, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("a should be limited")
	}
	l.Allow("b") // evicts a
	if !l.Allow("a") {
		t.Error("evicted key should start with a fresh bucket")
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := New(0.0001, 1, 10)
	limited := 0
	h := l.Middleware(zap.NewNop(), false, func() { limited++ })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/waitlist", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}
	if limited != 1 {
		t.Errorf("onLimited called %d times, want 1", limited)
	}
}
