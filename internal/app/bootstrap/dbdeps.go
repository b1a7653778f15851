// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/papilloncast/internal/app/store/records"
	"github.com/dalemusser/papilloncast/internal/app/system/mailer"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// ConnectDB creates it and passes it to EnsureSchema, Startup, BuildHandler,
// and Shutdown. Shutdown closes what it holds.
type DBDeps struct {
	// Records is the record store every repository reads and writes,
	// wrapped with the configured per-call timeout.
	Records records.Store
	// Backend names the store behind Records, for health output and logs.
	Backend string

	// Notifier sends waitlist and access emails. Nil when SMTP is not configured.
	Notifier *mailer.Notifier
}
