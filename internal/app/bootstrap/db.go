// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
	"github.com/dalemusser/papilloncast/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appName is used in email subjects and bodies.
const appName = "PapillonCast"

// ConnectDB connects the configured record store backend and the mailer.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. coreCfg.DBConnectTimeout already bounds ctx.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	store, err := openRecords(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	if appCfg.StoreTimeout > 0 {
		store = records.WithTimeout(store, appCfg.StoreTimeout)
	}

	deps := DBDeps{
		Records: store,
		Backend: appCfg.StoreBackend,
	}

	mailCfg := mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}
	if mailCfg.Enabled() {
		deps.Notifier = mailer.NewNotifier(mailer.New(mailCfg, logger), appName, appCfg.BaseURL, appCfg.WaitlistNotifyEmail, logger)
		logger.Info("initialized email mailer",
			zap.String("host", appCfg.MailSMTPHost),
			zap.Int("port", appCfg.MailSMTPPort),
		)
	} else {
		logger.Info("email disabled (mail_smtp_host or mail_from not set)")
	}

	return deps, nil
}

// openRecords opens the backend named by appCfg.StoreBackend.
func openRecords(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (records.Store, error) {
	switch appCfg.StoreBackend {
	case records.BackendRedis:
		s, err := records.NewRedisStore(ctx, appCfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to Redis")
		return s, nil

	case records.BackendMongo:
		poolCfg := wafflemongo.DefaultPoolConfig()
		if appCfg.MongoMaxPoolSize > 0 {
			poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
		}
		if appCfg.MongoMinPoolSize > 0 {
			poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
		}
		client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to MongoDB",
			zap.String("database", appCfg.MongoDatabase),
			zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
			zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
		)
		return records.NewMongoStore(client, client.Database(appCfg.MongoDatabase)), nil

	case records.BackendMemory:
		logger.Warn("using in-memory record store; data is lost on restart")
		return records.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", appCfg.StoreBackend)
}

// EnsureSchema confirms the record store answers before startup work begins.
//
// Records are schemaless key/field maps: Redis hashes need nothing, and the
// Mongo records collection is keyed by _id, which is always indexed.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := deps.Records.Ping(ctx); err != nil {
		logger.Error("record store ping failed", zap.String("backend", deps.Backend), zap.Error(err))
		return fmt.Errorf("record store unavailable: %w", err)
	}
	logger.Info("record store ready", zap.String("backend", deps.Backend))
	return nil
}
