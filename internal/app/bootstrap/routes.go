// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	auditlogfeature "github.com/dalemusser/papilloncast/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/papilloncast/internal/app/features/authgoogle"
	csrftokenfeature "github.com/dalemusser/papilloncast/internal/app/features/csrftoken"
	errorsfeature "github.com/dalemusser/papilloncast/internal/app/features/errors"
	generatefeature "github.com/dalemusser/papilloncast/internal/app/features/generate"
	healthfeature "github.com/dalemusser/papilloncast/internal/app/features/health"
	historyfeature "github.com/dalemusser/papilloncast/internal/app/features/history"
	loginfeature "github.com/dalemusser/papilloncast/internal/app/features/login"
	logoutfeature "github.com/dalemusser/papilloncast/internal/app/features/logout"
	pagesfeature "github.com/dalemusser/papilloncast/internal/app/features/pages"
	settingsapifeature "github.com/dalemusser/papilloncast/internal/app/features/settingsapi"
	systemusersfeature "github.com/dalemusser/papilloncast/internal/app/features/systemusers"
	waitlistfeature "github.com/dalemusser/papilloncast/internal/app/features/waitlist"
	appresources "github.com/dalemusser/papilloncast/internal/app/resources"
	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/app/system/auth"
	"github.com/dalemusser/papilloncast/internal/app/system/authutil"
	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"github.com/dalemusser/papilloncast/internal/app/system/throttle"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, store connection, and Startup have
// completed. CORS and security headers come from WAFFLE's core config; the
// rest of the stack is built by newRouter.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	return newRouter(coreCfg.Env, appCfg, deps, logger,
		// CORS middleware: must be early in the chain to handle preflight requests.
		middleware.CORSFromConfig(coreCfg),
		// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
		middleware.SecurityHeadersFromConfig(coreCfg),
	)
}

// newRouter builds the router. outer middleware runs first, ahead of the
// timeout, session, and CSRF layers.
func newRouter(env string, appCfg AppConfig, deps DBDeps, logger *zap.Logger, outer ...func(http.Handler) http.Handler) (http.Handler, error) {
	svc, err := newServices(appCfg, deps, logger)
	if err != nil {
		return nil, err
	}

	// Secure cookies are enabled in production mode.
	secure := env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, appCfg.AdminEmailSuffix, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-read the user record on every request so status changes and
	// disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(svc.users, appCfg.AdminEmailSuffix, logger))

	if err := appresources.LoadTemplates(); err != nil {
		logger.Error("page templates failed to parse", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler(errLog)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(outer...)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// Session middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection. Pages carry the token in a meta tag and forms; script
	// clients send it as X-CSRF-Token. The cookie name is app-specific to avoid
	// collisions with other services on the same domain.
	r.Use(newCSRF(secure, appCfg, logger))

	// ─────────────────────────────────────────────────────────────────────────────
	// Operational endpoints
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(deps.Records, deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)
	r.Handle("/metrics", metrics.Handler())

	// Static assets
	// /static/* serves files from disk (static directory) with pre-compressed variants
	r.Handle("/static/*", fileserver.Handler("/static", "static"))
	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// ─────────────────────────────────────────────────────────────────────────────
	// Authentication
	// ─────────────────────────────────────────────────────────────────────────────

	completer := authutil.NewCompleter(svc.access, sessionMgr, svc.auditLogger, logger)
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""
	// Dev sign-in skips the identity provider, so it only exists in dev mode.
	devSignIn := env == "dev"

	loginHandler := loginfeature.NewHandler(completer, errLog, googleEnabled, devSignIn, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, svc.auditLogger, logger)
	r.Mount("/auth/signout", logoutfeature.Routes(logoutHandler))

	// Google OAuth (only mount if configured)
	if googleEnabled {
		googleHandler := authgooglefeature.NewHandler(
			completer,
			errLog,
			svc.oauthStates,
			appCfg.GoogleClientID,
			appCfg.GoogleClientSecret,
			appCfg.BaseURL,
			logger,
		)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		logger.Info("Google OAuth enabled", zap.String("redirect_url", appCfg.BaseURL+"/auth/google/callback"))
	}
	if devSignIn {
		logger.Warn("dev sign-in enabled at POST /auth/signin/dev")
	}

	// ─────────────────────────────────────────────────────────────────────────────
	// Pages
	// ─────────────────────────────────────────────────────────────────────────────

	pagesHandler := pagesfeature.NewHandler(sessionMgr, errLog, logger)
	r.Mount("/", pagesHandler.HomeRouter())
	r.Mount("/reader", pagesHandler.ReaderRouter())
	r.Mount("/admin", pagesHandler.AdminRouter())

	// ─────────────────────────────────────────────────────────────────────────────
	// JSON API
	// ─────────────────────────────────────────────────────────────────────────────

	limiter, err := throttle.New(float64(appCfg.WaitlistRateLimit)/60, appCfg.WaitlistRateBurst, throttle.DefaultMaxKeys)
	if err != nil {
		return nil, err
	}
	waitlistThrottle := limiter.Middleware(logger, appCfg.TrustProxyHeaders, func() {
		metrics.WaitlistSignups.WithLabelValues(metrics.OutcomeLimited).Inc()
	})

	r.Route("/api", func(api chi.Router) {
		api.Mount("/csrf", csrftokenfeature.Routes())

		waitlistHandler := waitlistfeature.NewHandler(svc.access, errLog, logger)
		api.Mount("/waitlist", waitlistfeature.Routes(waitlistHandler, waitlistThrottle))

		settingsHandler := settingsapifeature.NewHandler(svc.users, errLog, logger)
		api.Mount("/user/settings", settingsapifeature.Routes(settingsHandler, sessionMgr))

		historyHandler := historyfeature.NewHandler(svc.ledger, errLog, logger)
		api.Mount("/user/history", historyfeature.Routes(historyHandler, sessionMgr))

		generateHandler := generatefeature.NewHandler(svc.dispatcher, errLog, logger)
		api.Mount("/generate-content", generatefeature.Routes(generateHandler, sessionMgr))

		// Admin API (403 for anyone outside the admin suffix)
		sysUsersHandler := systemusersfeature.NewHandler(svc.users, svc.access, errLog, svc.auditLogger, logger)
		api.Mount("/admin/users", systemusersfeature.Routes(sysUsersHandler, sessionMgr))

		auditHandler := auditlogfeature.NewHandler(svc.auditStore, errLog, logger)
		api.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

		api.NotFound(errorsHandler.NotFound)
		api.MethodNotAllowed(errorsHandler.MethodNotAllowed)
	})

	// 404 / 405 catch-alls for unmatched routes
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r, nil
}

// newCSRF builds the gorilla/csrf middleware.
func newCSRF(secure bool, appCfg AppConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("papilloncast_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			if isAPIPath(req.URL.Path) {
				jsonutil.Forbidden(w, "CSRF token invalid or missing")
				return
			}
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if origins := trustedOrigins(secure, appCfg.BaseURL); len(origins) > 0 {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins(origins))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	return csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
}

// trustedOrigins lists the hosts whose Referer passes the CSRF origin check:
// the configured base URL's host, plus localhost in non-production modes.
func trustedOrigins(secure bool, baseURL string) []string {
	var origins []string
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		origins = append(origins, u.Host)
	}
	if !secure {
		origins = append(origins,
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		)
	}
	return origins
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
