// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// Values come from flags, PAPILLONCAST_* environment variables, or config
// files (loaded in LoadConfig). Framework settings such as ports, TLS, log
// level, and CORS live in WAFFLE's CoreConfig instead.
type AppConfig struct {
	// Record store
	StoreBackend     string        // redis, mongo, or memory
	RedisURL         string        // e.g. redis://localhost:6379/0
	MongoURI         string        // e.g. mongodb://localhost:27017
	MongoDatabase    string        // database holding the records collection
	MongoMaxPoolSize uint64        // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64        // Minimum connections to keep warm (default: 10)
	StoreTimeout     time.Duration // per-call deadline applied to every store operation

	// Session management
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: papilloncast-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// CSRF protection
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth redirects and email links
	BaseURL string // e.g., "https://papilloncast.example" or "http://localhost:8080"

	// Access control
	AdminEmailSuffix        string // signed-in emails ending in this suffix are administrators
	HistoryEnforceOwnership bool   // favorite toggles ignore entries the caller does not own
	SeedAdminEmail          string // joined and activated at startup when set

	// Waitlist throttling
	WaitlistRateLimit int  // signups per client per minute
	WaitlistRateBurst int  // burst allowance per client
	TrustProxyHeaders bool // take the client IP from X-Forwarded-For / X-Real-IP

	// Email/SMTP
	MailSMTPHost        string
	MailSMTPPort        int
	MailSMTPUser        string
	MailSMTPPass        string
	MailFrom            string
	MailFromName        string
	WaitlistNotifyEmail string // receives new-signup notices; blank disables them

	// Audit logging
	// Values: "all" (store + zap), "db" (store only), "log" (zap only), "off" (disabled)
	AuditLogAuth  string // sign-in, sign-out
	AuditLogAdmin string // status changes
}
