// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/resources"
	"github.com/dalemusser/papilloncast/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// seedActor is recorded as updatedBy on the seeded administrator.
const seedActor = "system:seed"

// Startup runs once after the record store is reachable, before the HTTP
// handler is built. It parses the page templates, seeds the first
// administrator, and starts the background task runner.
//
// Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := resources.LoadTemplates(); err != nil {
		logger.Error("page templates failed to parse", zap.Error(err))
		return err
	}

	svc, err := newServices(appCfg, deps, logger)
	if err != nil {
		return err
	}

	if err := seedAdmin(ctx, appCfg, svc, logger); err != nil {
		return err
	}

	startTaskRunner(svc, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// storePingInterval is how often the store-ping job refreshes the store gauge.
const storePingInterval = time.Minute

// seedAdmin activates the configured seed address exactly as written.
// Emails are case-sensitive record keys, so no case folding happens here.
func seedAdmin(ctx context.Context, appCfg AppConfig, svc *services, logger *zap.Logger) error {
	email := appCfg.SeedAdminEmail
	if email == "" {
		return nil
	}
	if err := svc.access.EnsureActive(ctx, seedActor, email); err != nil {
		logger.Error("failed to seed admin user", zap.String("email", email), zap.Error(err))
		return err
	}
	if !strings.HasSuffix(email, appCfg.AdminEmailSuffix) {
		logger.Warn("seeded user is active but outside the admin suffix",
			zap.String("email", email),
			zap.String("admin_email_suffix", appCfg.AdminEmailSuffix))
	}
	logger.Info("admin user ensured", zap.String("email", email))
	return nil
}

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(svc *services, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)
	taskRunner.Register(tasks.OAuthStateCleanupJob(svc.oauthStates, logger))
	taskRunner.Register(tasks.StorePingJob(deps.Records, storePingInterval))
	taskRunner.Start()
	logger.Info("background task runner started", zap.Strings("jobs", taskRunner.Jobs()))
}
