package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/store/oauthstate"
	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Job names.
const (
	JobOAuthStateCleanup = "oauth-state-cleanup"
	JobStorePing         = "store-ping"
)

// OAuthStateCleanupJob deletes expired OAuth state tokens. Backends without
// key expiry keep them until this runs.
func OAuthStateCleanupJob(states *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:  JobOAuthStateCleanup,
		Every: 15 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := states.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("expired oauth states removed", zap.Int("deleted", n))
			}
			return nil
		},
	}
}

// Pinger is the part of the record store the ping job needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorePingJob pings the record store and reports the result on the
// papilloncast_store_up gauge.
func StorePingJob(store Pinger, every time.Duration) Job {
	return Job{
		Name:  JobStorePing,
		Every: every,
		Run: func(ctx context.Context) error {
			if err := store.Ping(ctx); err != nil {
				metrics.StoreUp.Set(0)
				return err
			}
			metrics.StoreUp.Set(1)
			return nil
		},
	}
}
