// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle.
// Each function is called in order by app.Run, from configuration
// loading through store setup, one-time startup work, HTTP handler
// construction, and finally graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "papilloncast",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig, // store backend, admin suffix, audit destinations
	ConnectDB:      ConnectDB,      // record store backend + mailer
	EnsureSchema:   EnsureSchema,   // store ping
	Startup:        Startup,        // templates, admin seed, task runner
	BuildHandler:   BuildHandler,   // router + middleware stack
	Shutdown:       Shutdown,       // task runner, mail queue, store
}
