// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
	"github.com/dalemusser/papilloncast/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "PAPILLONCAST"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: store_backend, session_name, etc.
//   - Environment variables: PAPILLONCAST_STORE_BACKEND, PAPILLONCAST_SESSION_NAME, etc.
//   - Command-line flags: --store_backend, --session_name, etc.
var appConfigKeys = []config.AppKey{
	// Record store
	{Name: "store_backend", Default: records.BackendRedis, Desc: "Record store backend: 'redis', 'mongo', or 'memory'"},
	{Name: "redis_url", Default: "redis://localhost:6379/0", Desc: "Redis connection URL (redis backend)"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (mongo backend)"},
	{Name: "mongo_database", Default: "papilloncast", Desc: "MongoDB database name (mongo backend)"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "store_timeout", Default: "5s", Desc: "Deadline for each record store call (0 disables)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "papilloncast-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie max age (e.g., 24h, 720h, 30m)"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL for OAuth redirects and email links"},

	// Access control
	{Name: "admin_email_suffix", Default: "@peaksynergyai.com", Desc: "Email suffix that grants admin access"},
	{Name: "history_enforce_ownership", Default: false, Desc: "Ignore favorite toggles on entries the caller does not own"},
	{Name: "seed_admin_email", Default: "", Desc: "Email to join and activate on startup"},

	// Waitlist throttling
	{Name: "waitlist_rate_limit", Default: 10, Desc: "Waitlist signups allowed per client per minute"},
	{Name: "waitlist_rate_burst", Default: 5, Desc: "Waitlist signup burst per client"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Read the client IP from X-Forwarded-For / X-Real-IP"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables email)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@example.com", Desc: "From email address"},
	{Name: "mail_from_name", Default: "PapillonCast", Desc: "From display name"},
	{Name: "waitlist_notify_email", Default: "", Desc: "Address notified of new waitlist signups (blank disables)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: auditlog.DestAll, Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: auditlog.DestAll, Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		RedisURL:         appValues.String("redis_url"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		StoreTimeout:     appValues.Duration("store_timeout", 5*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		CSRFKey: appValues.String("csrf_key"),

		// Google OAuth
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		BaseURL:            strings.TrimRight(appValues.String("base_url"), "/"),

		// Access control
		AdminEmailSuffix:        strings.TrimSpace(appValues.String("admin_email_suffix")),
		HistoryEnforceOwnership: appValues.Bool("history_enforce_ownership"),
		SeedAdminEmail:          strings.TrimSpace(appValues.String("seed_admin_email")),

		// Waitlist throttling
		WaitlistRateLimit: appValues.Int("waitlist_rate_limit"),
		WaitlistRateBurst: appValues.Int("waitlist_rate_burst"),
		TrustProxyHeaders: appValues.Bool("trust_proxy_headers"),

		// Email/SMTP
		MailSMTPHost:        appValues.String("mail_smtp_host"),
		MailSMTPPort:        appValues.Int("mail_smtp_port"),
		MailSMTPUser:        appValues.String("mail_smtp_user"),
		MailSMTPPass:        appValues.String("mail_smtp_pass"),
		MailFrom:            appValues.String("mail_from"),
		MailFromName:        appValues.String("mail_from_name"),
		WaitlistNotifyEmail: appValues.String("waitlist_notify_email"),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateAppConfig(appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

// validateAppConfig holds the checks that need no logger, so tests can call it directly.
func validateAppConfig(appCfg AppConfig) error {
	switch appCfg.StoreBackend {
	case records.BackendRedis:
		if _, err := redis.ParseURL(appCfg.RedisURL); err != nil {
			return fmt.Errorf("invalid Redis URL: %w", err)
		}
	case records.BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case records.BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", appCfg.StoreBackend)
	}

	if !strings.HasPrefix(appCfg.AdminEmailSuffix, "@") || len(appCfg.AdminEmailSuffix) < 2 {
		return fmt.Errorf("admin_email_suffix must start with @, got %q", appCfg.AdminEmailSuffix)
	}
	if appCfg.StoreTimeout < 0 {
		return fmt.Errorf("store_timeout must not be negative")
	}
	if appCfg.WaitlistRateLimit <= 0 || appCfg.WaitlistRateBurst <= 0 {
		return fmt.Errorf("waitlist_rate_limit and waitlist_rate_burst must be positive")
	}
	for name, dest := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		if !auditlog.IsValidDest(dest) {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", name, dest)
		}
	}
	return nil
}
