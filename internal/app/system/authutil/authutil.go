// internal/app/system/authutil/authutil.go
// Package authutil finishes a sign-in once a provider has verified an email.
// Every provider goes through the same admission decision, session creation,
// and audit trail.
package authutil

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/papilloncast/internal/app/system/access"
	"github.com/dalemusser/papilloncast/internal/app/system/auditlog"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Redirect targets.
const (
	ReaderPath = "/reader"
	ErrorPath  = "/auth/error"
)

// Error codes carried in ?error= on ErrorPath.
const (
	ErrAccessDenied  = "AccessDenied"
	ErrConfiguration = "Configuration"
	ErrVerification  = "Verification"
)

// ErrorURL returns the auth error page for code.
func ErrorURL(code string) string {
	return ErrorPath + "?error=" + url.QueryEscape(code)
}

// ErrorMessage is the user-facing text for an auth error code.
func ErrorMessage(code string) string {
	switch code {
	case ErrAccessDenied:
		return "Access denied. Your account may not be active or you may not be in our system. Please join the waitlist first."
	case ErrConfiguration:
		return "There was a problem with the server configuration. Please contact support."
	case ErrVerification:
		return "The verification link was invalid or has expired."
	default:
		return "An unexpected error occurred during authentication."
	}
}

// Completer turns a verified email into a session, or a denial.
type Completer struct {
	access   *access.Machine
	sessions *auth.SessionManager
	audit    *auditlog.Logger
	logger   *zap.Logger
}

// NewCompleter creates a Completer. audit may be nil.
func NewCompleter(machine *access.Machine, sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Completer {
	return &Completer{access: machine, sessions: sessions, audit: audit, logger: logger}
}

// Complete decides whether email may sign in via provider and, if so,
// establishes the session. It returns where to send the browser: the reader
// on success, the AccessDenied error page otherwise. A failed store lookup
// denies the sign-in.
func (c *Completer) Complete(w http.ResponseWriter, r *http.Request, email, provider string) string {
	ctx := r.Context()
	email = strings.TrimSpace(email)
	if email == "" {
		metrics.SignInDecisions.WithLabelValues(metrics.OutcomeDenied, provider).Inc()
		return ErrorURL(ErrAccessDenied)
	}

	adm, err := c.access.AdmitSignIn(ctx, email)
	if err != nil {
		metrics.SignInDecisions.WithLabelValues(metrics.OutcomeError, provider).Inc()
		c.logger.Error("sign-in admission failed",
			zap.String("email", email),
			zap.String("provider", provider),
			zap.Error(err))
		return ErrorURL(ErrAccessDenied)
	}
	if !adm.Allowed {
		metrics.SignInDecisions.WithLabelValues(metrics.OutcomeDenied, provider).Inc()
		c.audit.SignInDenied(ctx, r, email, provider, adm.Status)
		return ErrorURL(ErrAccessDenied)
	}

	if err := c.sessions.CreateSession(w, r, email, ""); err != nil {
		metrics.SignInDecisions.WithLabelValues(metrics.OutcomeError, provider).Inc()
		c.logger.Error("failed to create session",
			zap.String("email", email),
			zap.Error(err))
		return ErrorURL(ErrConfiguration)
	}

	metrics.SignInDecisions.WithLabelValues(metrics.OutcomeAllowed, provider).Inc()
	c.audit.SignInSuccess(ctx, r, email, provider)
	return ReaderPath
}
