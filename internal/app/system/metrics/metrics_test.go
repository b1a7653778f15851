package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	return rec.Body.String()
}

func TestHandler(t *testing.T) {
	Generations.WithLabelValues("quick", OutcomeOK).Inc()
	WaitlistSignups.WithLabelValues(OutcomeCreated).Inc()
	SignInDecisions.WithLabelValues(OutcomeDenied, "google").Inc()

	body := scrape(t)
	for _, want := range []string{
		`papilloncast_content_generations_total{outcome="ok",type="quick"}`,
		`papilloncast_waitlist_signups_total{outcome="created"}`,
		`papilloncast_signin_decisions_total{outcome="denied",provider="google"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %s", want)
		}
	}
}
