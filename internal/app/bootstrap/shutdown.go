// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown runs after the HTTP server has drained. It stops background work,
// lets queued emails finish, and closes the record store. ctx carries the
// shutdown deadline.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var firstErr error

	// Stop background task runner with context timeout
	if taskRunner != nil {
		logger.Info("stopping background task runner")
		if err := taskRunner.Stop(ctx); err != nil {
			logger.Warn("background task runner did not stop cleanly", zap.Error(err))
			firstErr = err
		}
	}

	if deps.Notifier != nil {
		done := make(chan struct{})
		go func() {
			deps.Notifier.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			logger.Warn("pending emails abandoned at shutdown")
		}
	}

	if deps.Records != nil {
		logger.Info("closing record store", zap.String("backend", deps.Backend))
		if err := deps.Records.Close(ctx); err != nil {
			logger.Error("record store close failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
