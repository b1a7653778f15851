// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/papilloncast/internal/app/store/audit"
	"github.com/dalemusser/papilloncast/internal/app/system/network"
	"go.uber.org/zap"
)

// Destination settings for Config fields.
const (
	DestAll = "all" // record store + zap
	DestDB  = "db"  // record store only
	DestLog = "log" // zap only
	DestOff = "off"
)

// IsValidDest reports whether s is a known destination setting.
func IsValidDest(s string) bool {
	switch s {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls sign-in and sign-out events.
	Auth string
	// Admin controls status changes made through the admin API.
	Admin string
}

// Logger provides convenience methods for logging audit events.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor_email", event.ActorEmail))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op, so tests can pass nil.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = DestAll
	}

	if setting == DestOff {
		return
	}
	if setting == DestAll || setting == DestLog {
		l.logToZap(event)
	}
	if (setting == DestAll || setting == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r != nil {
		e.IP = network.GetClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

// SignInSuccess logs an admitted sign-in.
func (l *Logger) SignInSuccess(ctx context.Context, r *http.Request, email, provider string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignInSuccess,
		Email:     email,
		Success:   true,
		Details:   map[string]string{"provider": provider},
	}))
}

// SignInDenied logs a refused sign-in. status is the record's status, or
// empty when no record exists.
func (l *Logger) SignInDenied(ctx context.Context, r *http.Request, email, provider, status string) {
	e := audit.Event{
		Category: audit.CategoryAuth,
		Email:    email,
		Success:  false,
		Details:  map[string]string{"provider": provider},
	}
	if status == "" {
		e.EventType = audit.EventSignInDeniedNoRecord
		e.FailureReason = "no record"
	} else {
		e.EventType = audit.EventSignInDeniedStatus
		e.FailureReason = status
	}
	l.Log(ctx, fromRequest(r, e))
}

// SignOut logs a sign-out.
func (l *Logger) SignOut(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignOut,
		Email:     email,
		Success:   true,
	}))
}

// --- Admin Events ---

// StatusChanged logs an admin status change.
func (l *Logger) StatusChanged(ctx context.Context, r *http.Request, actor, target, from, to string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:   audit.CategoryAdmin,
		EventType:  audit.EventUserStatusChanged,
		Email:      target,
		ActorEmail: actor,
		Success:    true,
		Details:    map[string]string{"from": from, "to": to},
	}))
}
