// internal/app/store/oauthstate/oauthstatestore.go
package oauthstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
)

// TTL is how long an issued state token stays valid.
const TTL = 10 * time.Minute

const (
	keyPrefix  = "oauthstate:"
	usedSuffix = ":used"
	timeFormat = "2006-01-02T15:04:05.000Z07:00"
)

// Store issues and consumes single-use OAuth state tokens.
type Store struct {
	rs  records.Store
	now func() time.Time
}

// New creates a new OAuth state store.
func New(rs records.Store) *Store {
	return &Store{rs: rs, now: time.Now}
}

// SetClock replaces the time source. Tests use it.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores a new OAuth state token that expires after TTL, with the
// PKCE code verifier to hand back when the callback consumes it. verifier may
// be empty.
func (s *Store) Create(ctx context.Context, state, verifier string) error {
	if state == "" {
		return errors.New("oauthstate: empty state")
	}
	now := s.now().UTC()
	return s.rs.Create(ctx, keyPrefix+state, records.Fields{
		"createdAt": now.Format(timeFormat),
		"expiresAt": now.Add(TTL).Format(timeFormat),
		"verifier":  verifier,
	})
}

// Consume checks that state was issued, is unexpired, and has not been used,
// then marks it used and returns its verifier. A second Consume of the same
// state fails.
func (s *Store) Consume(ctx context.Context, state string) (verifier string, ok bool) {
	if state == "" {
		return "", false
	}
	key := keyPrefix + state
	f, err := s.rs.Get(ctx, key)
	if err != nil {
		return "", false
	}
	exp, err := time.Parse(timeFormat, f["expiresAt"])
	if err != nil || !s.now().Before(exp) {
		return "", false
	}

	// The claim marker makes consumption atomic across concurrent callbacks.
	if err := s.rs.Create(ctx, key+usedSuffix, records.Fields{"expiresAt": f["expiresAt"]}); err != nil {
		return "", false
	}
	_ = s.rs.Delete(ctx, key)
	return f["verifier"], true
}

// Verify is Consume for callers that do not use PKCE.
func (s *Store) Verify(ctx context.Context, state string) bool {
	_, ok := s.Consume(ctx, state)
	return ok
}

// DeleteExpired removes expired tokens and claim markers and returns how many
// records were deleted.
func (s *Store) DeleteExpired(ctx context.Context) (int, error) {
	recs, err := s.rs.ScanPrefix(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("scan oauth states: %w", err)
	}
	now := s.now()
	n := 0
	for _, r := range recs {
		exp, err := time.Parse(timeFormat, r.Fields["expiresAt"])
		if err == nil && now.Before(exp) {
			continue
		}
		if err := s.rs.Delete(ctx, r.Key); err != nil {
			return n, fmt.Errorf("delete %s: %w", r.Key, err)
		}
		n++
	}
	return n, nil
}
