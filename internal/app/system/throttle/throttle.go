// Package throttle limits request rates per client key (usually the client IP).
package throttle

import (
	"net/http"
	"sync"

	"github.com/dalemusser/papilloncast/internal/app/system/jsonutil"
	"github.com/dalemusser/papilloncast/internal/app/system/network"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultMaxKeys bounds how many client keys are tracked at once. The least
// recently seen key is dropped first; a dropped client starts with a full bucket.
const DefaultMaxKeys = 10_000

// Limiter hands out a token bucket per key.
type Limiter struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// New creates a Limiter allowing perSecond requests per key with the given
// burst. A non-positive perSecond disables limiting.
func New(perSecond float64, burst, maxKeys int) (*Limiter, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	if burst < 1 {
		burst = 1
	}
	c, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, err
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{buckets: c, limit: limit, burst: burst}, nil
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}
	l.mu.Lock()
	b, ok := l.buckets.Get(key)
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(key, b)
	}
	l.mu.Unlock()
	return b.Allow()
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
// trustProxy selects whether forwarding headers name the client. onLimited,
// when non-nil, is called for every rejected request.
func (l *Limiter) Middleware(logger *zap.Logger, trustProxy bool, onLimited func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := network.ClientIP(r, trustProxy)
			if !l.Allow(ip) {
				logger.Info("request throttled",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path))
				if onLimited != nil {
					onLimited()
				}
				jsonutil.TooManyRequests(w, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
