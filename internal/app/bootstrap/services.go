// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/dalemusser/papilloncast/internal/app/store/audit"
	historystore "github.com/dalemusser/papilloncast/internal/app/store/history"
	"github.com/dalemusser/papilloncast/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/app/system/access"
	"github.com/dalemusser/papilloncast/internal/app/system/auditlog"
	"github.com/dalemusser/papilloncast/internal/app/system/dispatch"
	"github.com/dalemusser/papilloncast/internal/app/system/historyledger"
	"go.uber.org/zap"
)

// services are the repositories and domain components built over the
// record store. Startup and BuildHandler both build them from DBDeps; they
// hold no state of their own beyond the store.
type services struct {
	users       *userstore.Store
	ledger      *historyledger.Ledger
	access      *access.Machine
	dispatcher  *dispatch.Dispatcher
	oauthStates *oauthstate.Store
	auditStore  *audit.Store
	auditLogger *auditlog.Logger
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	users := userstore.New(deps.Records)
	ledger := historyledger.New(
		historystore.New(deps.Records),
		users,
		logger,
		historyledger.WithOwnershipCheck(appCfg.HistoryEnforceOwnership),
	)

	var observers []access.Observer
	if deps.Notifier != nil {
		observers = append(observers, deps.Notifier)
	}

	gens, err := dispatch.DefaultGenerators()
	if err != nil {
		return nil, err
	}

	auditStore := audit.New(deps.Records)
	return &services{
		users:       users,
		ledger:      ledger,
		access:      access.New(users, logger, observers...),
		dispatcher:  dispatch.New(users, ledger, logger, gens...),
		oauthStates: oauthstate.New(deps.Records),
		auditStore:  auditStore,
		auditLogger: auditlog.New(auditStore, logger, auditlog.Config{
			Auth:  appCfg.AuditLogAuth,
			Admin: appCfg.AuditLogAdmin,
		}),
	}, nil
}
