// Package authgoogle signs users in with Google using the authorization code
// flow with PKCE. Google only proves the email address; whether that address
// may enter is decided by the access rules behind authutil.Completer.
//
//   - GET /auth/google           redirect to Google's consent screen
//   - GET /auth/google/callback  finish sign-in
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	"github.com/dalemusser/papilloncast/internal/app/store/oauthstate"
	"github.com/dalemusser/papilloncast/internal/app/system/authutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Provider labels Google sign-ins in audit events and metrics.
const Provider = "google"

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	identityTimeout   = 10 * time.Second
)

var errUnverified = errors.New("google account email not verified")

// Handler serves the Google sign-in flow.
type Handler struct {
	completer   *authutil.Completer
	errLog      *errorsfeature.ErrorLogger
	states      *oauthstate.Store
	oauth       *oauth2.Config
	userInfoURL string
	logger      *zap.Logger
}

// NewHandler creates a Handler whose callback is baseURL + /auth/google/callback.
func NewHandler(
	completer *authutil.Completer,
	errLog *errorsfeature.ErrorLogger,
	states *oauthstate.Store,
	clientID string,
	clientSecret string,
	baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		completer: completer,
		errLog:    errLog,
		states:    states,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		logger:      logger,
	}
}

// Routes returns a chi.Router for /auth/google.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.startAuth)
	r.Get("/callback", h.handleCallback)
	return r
}

func (h *Handler) startAuth(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		h.fail(w, r, "oauth state generation failed", err)
		return
	}
	verifier := oauth2.GenerateVerifier()
	if err := h.states.Create(r.Context(), state, verifier); err != nil {
		h.fail(w, r, "oauth state store failed", err)
		return
	}

	target := h.oauth.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	verifier, ok := h.states.Consume(r.Context(), q.Get("state"))
	if !ok {
		h.logger.Warn("oauth callback with unknown, expired, or replayed state")
		http.Redirect(w, r, authutil.ErrorURL(authutil.ErrVerification), http.StatusSeeOther)
		return
	}

	// The user cancelled or Google refused.
	if reason := q.Get("error"); reason != "" {
		h.logger.Info("google declined sign-in", zap.String("reason", reason))
		http.Redirect(w, r, authutil.ErrorURL(authutil.ErrAccessDenied), http.StatusSeeOther)
		return
	}

	email, err := h.identify(r.Context(), q.Get("code"), verifier)
	switch {
	case errors.Is(err, errUnverified):
		h.logger.Warn("google sign-in with unverified email", zap.String("email", email))
		http.Redirect(w, r, authutil.ErrorURL(authutil.ErrAccessDenied), http.StatusSeeOther)
	case err != nil:
		h.fail(w, r, "google identity lookup failed", err)
	default:
		http.Redirect(w, r, h.completer.Complete(w, r, email, Provider), http.StatusSeeOther)
	}
}

// userInfo is the subset of Google's userinfo response we read.
type userInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

// identify redeems code and returns the account's email. An unverified
// address comes back together with errUnverified.
func (h *Handler) identify(ctx context.Context, code, verifier string) (string, error) {
	tok, err := h.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, identityTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return "", fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo: status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("userinfo: %w", err)
	}
	if info.Email == "" {
		return "", errors.New("userinfo: no email")
	}
	if !info.VerifiedEmail {
		return info.Email, errUnverified
	}
	return info.Email, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.errLog.Log(r, msg, err)
	http.Redirect(w, r, authutil.ErrorURL(authutil.ErrConfiguration), http.StatusSeeOther)
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
