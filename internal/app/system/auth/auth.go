package auth

// Terminology: User Identifiers
//   - Email: the only identity a session carries; the UserRecord key is derived from it
//   - Admin: a signed-in user whose email ends with the configured trusted suffix

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session error classification for logging.
type sessionErrorType int

const (
	sessionErrUnknown   sessionErrorType = iota
	sessionErrExpired                    // timestamp expired - normal
	sessionErrTampered                   // MAC invalid - potential attack
	sessionErrCorrupted                  // decode/decrypt failed - corruption or key rotation
	sessionErrBackend                    // store/backend failure
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey       = "is_authenticated"
	userEmailKey    = "user_email"
	sessionTokenKey = "session_token"
)

// Redirect targets for page gates.
const (
	SignInPath = "/auth/signin"
	HomePath   = "/"
)

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager encapsulates the cookie session store and the per-request
// gates built on it. Use NewSessionManager to create an instance.
type SessionManager struct {
	store       *sessions.CookieStore
	logger      *zap.Logger
	name        string
	adminSuffix string
	userFetcher UserFetcher
}

// NewSessionManager creates a new SessionManager.
//
// Parameters:
//   - sessionKey: signing key for cookies (must be ≥32 chars in production)
//   - name: session cookie name (defaults to "papilloncast-session" if empty)
//   - domain: cookie domain (empty means current host)
//   - maxAge: session cookie lifetime
//   - secure: if true, cookies are marked Secure (HTTPS production)
//   - adminSuffix: email suffix that grants admin access
//   - logger: zap logger for session error logging
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, adminSuffix string, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, &SessionConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}
	if adminSuffix == "" {
		return nil, &SessionConfigError{Message: "admin email suffix is empty"}
	}

	isWeak := len(sessionKey) < 32 || isDefaultKey(sessionKey)
	if secure {
		if isWeak {
			return nil, &SessionConfigError{
				Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)),
			zap.Bool("is_default", isDefaultKey(sessionKey)))
	}

	if name == "" {
		name = "papilloncast-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		// Lax so the OAuth callback (a top-level cross-site navigation) still
		// carries the cookie.
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("name", name),
		zap.String("domain", domain),
		zap.String("admin_suffix", adminSuffix))

	return &SessionManager{
		store:       store,
		logger:      logger,
		name:        name,
		adminSuffix: adminSuffix,
	}, nil
}

// SessionConfigError is returned when session configuration is invalid.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string {
	return e.Message
}

// SessionName returns the configured session cookie name.
func (sm *SessionManager) SessionName() string {
	return sm.name
}

// AdminSuffix returns the trusted email suffix.
func (sm *SessionManager) AdminSuffix() string {
	return sm.adminSuffix
}

// IsTrustedEmail reports whether email ends with the trusted admin suffix.
// The comparison is literal and case-sensitive.
func (sm *SessionManager) IsTrustedEmail(email string) bool {
	return email != "" && strings.HasSuffix(email, sm.adminSuffix)
}

// SetUserFetcher sets the UserFetcher used by LoadSessionUser. It must be
// called after the record store is initialized.
func (sm *SessionManager) SetUserFetcher(uf UserFetcher) {
	sm.userFetcher = uf
}

/*─────────────────────────────────────────────────────────────────────────────*
| UserFetcher interface                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// UserFetcher loads the current state of a session's user.
type UserFetcher interface {
	// FetchUser returns (nil, nil) when the user is missing or not active,
	// which clears the session. A non-nil error means the lookup itself failed;
	// the session is kept and the gates answer 500.
	FetchUser(ctx context.Context, email string) (*SessionUser, error)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the authenticated user in the request context. It is rebuilt
// from the store on each request so status changes take effect immediately.
type SessionUser struct {
	Email   string
	Status  string
	IsAdmin bool
	Token   string // Session token for session tracking
}

type ctxKey string

const (
	currentUserKey  ctxKey = "currentUser"
	lookupFailedKey ctxKey = "userLookupFailed"
)

// CurrentUser returns the user & "found?" flag from the request context.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LookupFailed reports whether the request had a session but its user could
// not be loaded because the store failed.
func LookupFailed(r *http.Request) bool {
	failed, _ := r.Context().Value(lookupFailedKey).(bool)
	return failed
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser returns middleware that injects the user into context if
// the request carries a valid session for an active user.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.logSessionError(r, err)
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			email := getString(sess, userEmailKey)
			token := getString(sess, sessionTokenKey)

			switch {
			case email == "":
			case sm.userFetcher == nil:
				r = withUser(r, &SessionUser{
					Email:   email,
					IsAdmin: sm.IsTrustedEmail(email),
					Token:   token,
				})
			default:
				u, ferr := sm.userFetcher.FetchUser(r.Context(), email)
				switch {
				case ferr != nil:
					sm.logger.Error("session user lookup failed",
						zap.Error(ferr),
						zap.String("email", email),
						zap.String("path", r.URL.Path))
					r = r.WithContext(context.WithValue(r.Context(), lookupFailedKey, true))
				case u == nil:
					sm.logger.Info("session invalidated: user missing or not active",
						zap.String("email", email),
						zap.String("path", r.URL.Path))
					sess.Values[isAuthKey] = false
					delete(sess.Values, userEmailKey)
					_ = sess.Save(r, w) // best effort
				default:
					u.Token = token
					r = withUser(r, u)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn is the page gate for signed-in users. Anonymous requests
// are redirected to the sign-in page.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if LookupFailed(r) {
			pageError(w)
			return
		}
		http.Redirect(w, r, SignInPath, http.StatusSeeOther)
	})
}

// RequireSignedInAPI is the API gate for signed-in users. Anonymous requests
// get 401 {"error":"Unauthorized"}; a failed user lookup gets 500.
func (sm *SessionManager) RequireSignedInAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if LookupFailed(r) {
			jsonutil.InternalError(w)
			return
		}
		jsonutil.Unauthorized(w, "Unauthorized")
	})
}

// RequireAdminPage is the page gate for the admin console. Anonymous requests
// go to the sign-in page; signed-in users outside the trusted suffix go home.
func (sm *SessionManager) RequireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok && LookupFailed(r) {
			pageError(w)
			return
		}
		if !ok {
			http.Redirect(w, r, SignInPath, http.StatusSeeOther)
			return
		}
		if !sm.IsTrustedEmail(u.Email) {
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminAPI is the API gate for admin operations. Anything other than a
// signed-in trusted caller gets 403 {"error":"Unauthorized"}.
func (sm *SessionManager) RequireAdminAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok && LookupFailed(r) {
			jsonutil.InternalError(w)
			return
		}
		if !ok || !sm.IsTrustedEmail(u.Email) {
			sm.logger.Debug("admin request rejected", zap.String("path", r.URL.Path))
			jsonutil.Forbidden(w, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session Management                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateSession establishes a session for email. If token is empty a new one
// is generated.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, email, token string) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sess, _ = sm.store.New(r, sm.name)
	}

	if token == "" {
		token, err = GenerateSessionToken()
		if err != nil {
			return err
		}
	}

	sess.Values[isAuthKey] = true
	sess.Values[userEmailKey] = email
	sess.Values[sessionTokenKey] = token

	return sess.Save(r, w)
}

// DestroySession terminates the user's session.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return
	}

	sess.Values[isAuthKey] = false
	delete(sess.Values, userEmailKey)
	delete(sess.Values, sessionTokenKey)

	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

// GenerateSessionToken generates a random URL-safe token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func pageError(w http.ResponseWriter) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// WithTestUser injects a SessionUser into the request context for testing.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func (sm *SessionManager) logSessionError(r *http.Request, err error) {
	errType, category := classifySessionError(err)
	switch errType {
	case sessionErrExpired:
		sm.logger.Debug("session expired, starting fresh session",
			zap.String("category", category),
			zap.String("path", r.URL.Path))
	case sessionErrTampered:
		sm.logger.Warn("session MAC validation failed (possible tampering)",
			zap.String("category", category),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()))
	case sessionErrCorrupted:
		sm.logger.Info("session decode failed, starting fresh session",
			zap.String("category", category),
			zap.String("path", r.URL.Path))
	default:
		sm.logger.Warn("session error, starting fresh session",
			zap.Error(err),
			zap.String("category", category),
			zap.String("path", r.URL.Path))
	}
}

// isDefaultKey checks if the session key looks like a placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range []string{"dev-only", "change-me", "placeholder", "default", "example", "insecure", "test-key", "secret123", "password"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifySessionError categorizes a session/cookie error for logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	errStr := strings.ToLower(err.Error())

	if scErr, ok := err.(securecookie.Error); ok {
		if !scErr.IsDecode() {
			return sessionErrBackend, "backend"
		}
		switch {
		case strings.Contains(errStr, "expired timestamp"):
			return sessionErrExpired, "expired"
		case strings.Contains(errStr, "mac") || strings.Contains(errStr, "hash"):
			return sessionErrTampered, "mac_invalid"
		case strings.Contains(errStr, "decrypt"):
			return sessionErrCorrupted, "decrypt_failed"
		case strings.Contains(errStr, "base64") || strings.Contains(errStr, "decode"):
			return sessionErrCorrupted, "decode_failed"
		default:
			return sessionErrCorrupted, "decode_other"
		}
	}

	return sessionErrBackend, "unknown"
}
