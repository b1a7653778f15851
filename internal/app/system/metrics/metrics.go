// Package metrics holds the Prometheus collectors for the application and the
// /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeInvalid  = "invalid"
	OutcomeLimited  = "limited"
	OutcomeError    = "error"
	OutcomeAllowed  = "allowed"
	OutcomeDenied   = "denied"
	OutcomeOK       = "ok"
)

var WaitlistSignups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "papilloncast_waitlist_signups_total",
	Help: "Waitlist signup requests by outcome",
}, []string{"outcome"})

var SignInDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "papilloncast_signin_decisions_total",
	Help: "Sign-in admission decisions by outcome and provider",
}, []string{"outcome", "provider"})

var StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "papilloncast_user_status_changes_total",
	Help: "Admin status changes by target status",
}, []string{"status"})

var Generations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "papilloncast_content_generations_total",
	Help: "Content generation requests by type and outcome",
}, []string{"type", "outcome"})

var FavoriteToggles = promauto.NewCounter(prometheus.CounterOpts{
	Name: "papilloncast_history_favorite_toggles_total",
	Help: "History favorite toggle requests",
})

var TaskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "papilloncast_task_runs_total",
	Help: "Background task executions by task and outcome",
}, []string{"task", "outcome"})

var StoreUp = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "papilloncast_store_up",
	Help: "1 if the last record store ping succeeded, else 0",
})

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
