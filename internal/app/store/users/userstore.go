// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - Email: the unique identifier of a UserRecord, used verbatim (case-sensitive)
//   - Key: "user:" + email, private to this package

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
	"github.com/dalemusser/papilloncast/internal/domain/models"
)

const keyPrefix = "user:"

// Field names as persisted in the record store.
const (
	fEmail            = "email"
	fStatus           = "status"
	fCreatedAt        = "createdAt"
	fUpdatedAt        = "updatedAt"
	fUpdatedBy        = "updatedBy"
	fLastLogin        = "lastLogin"
	fLastFeedRefresh  = "lastFeedRefresh"
	fFeedTimeWindow   = "feedTimeWindow"
	fBlueskyConnected = "blueskyConnected"
)

// TimeFormat is the persisted timestamp layout (ISO-8601, UTC, millisecond precision).
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrNotFound is returned when no UserRecord exists for an email.
	ErrNotFound = errors.New("user not found")
	// ErrExists is returned by Create when a UserRecord already exists for an email.
	ErrExists = errors.New("user already exists")
)

// Store is the UserRepository. It owns the "user:" key scheme; callers only
// ever pass emails.
type Store struct {
	rs  records.Store
	now func() time.Time
}

// New creates a user Store over the given record store.
func New(rs records.Store) *Store {
	return &Store{rs: rs, now: time.Now}
}

// SetClock overrides the time source. Tests use it to get deterministic timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the store's current time, truncated to the persisted precision.
func (s *Store) Now() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func key(email string) string {
	return keyPrefix + email
}

// Get loads the UserRecord for email, or ErrNotFound.
func (s *Store) Get(ctx context.Context, email string) (*models.UserRecord, error) {
	f, err := s.rs.Get(ctx, key(email))
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u := decode(f)
	if u.Email == "" {
		u.Email = email
	}
	return &u, nil
}

// Create inserts a new UserRecord with the given status and default preferences.
// It returns ErrExists, without writing, if a record already exists for email.
func (s *Store) Create(ctx context.Context, email, status string) (*models.UserRecord, error) {
	u := models.UserRecord{
		Email:            email,
		Status:           status,
		CreatedAt:        s.Now(),
		FeedTimeWindow:   models.DefaultFeedTimeWindow,
		BlueskyConnected: false,
	}
	if err := s.rs.Create(ctx, key(email), encode(u)); err != nil {
		if errors.Is(err, records.ErrExists) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// SetStatus merges status, updatedAt, and updatedBy. It does not check existence;
// the caller decides whether a missing record is an error.
func (s *Store) SetStatus(ctx context.Context, email, status, updatedBy string) (time.Time, error) {
	now := s.Now()
	err := s.rs.Put(ctx, key(email), records.Fields{
		fStatus:    status,
		fUpdatedAt: formatTime(now),
		fUpdatedBy: updatedBy,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("set user status: %w", err)
	}
	return now, nil
}

// TouchLastLogin sets lastLogin to now.
func (s *Store) TouchLastLogin(ctx context.Context, email string) error {
	if err := s.rs.Put(ctx, key(email), records.Fields{fLastLogin: formatTime(s.Now())}); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// TouchLastFeedRefresh sets lastFeedRefresh to at.
func (s *Store) TouchLastFeedRefresh(ctx context.Context, email string, at time.Time) error {
	if err := s.rs.Put(ctx, key(email), records.Fields{fLastFeedRefresh: formatTime(at)}); err != nil {
		return fmt.Errorf("touch last feed refresh: %w", err)
	}
	return nil
}

// SettingsUpdate holds the user-editable preferences. Nil fields are left unchanged.
type SettingsUpdate struct {
	FeedTimeWindow   *string
	BlueskyConnected *bool
}

// IsEmpty reports whether the update changes nothing.
func (u SettingsUpdate) IsEmpty() bool {
	return u.FeedTimeWindow == nil && u.BlueskyConnected == nil
}

// UpdateSettings merges the non-nil preference fields plus updatedAt.
func (s *Store) UpdateSettings(ctx context.Context, email string, upd SettingsUpdate) error {
	if upd.IsEmpty() {
		return nil
	}
	set := records.Fields{fUpdatedAt: formatTime(s.Now())}
	if upd.FeedTimeWindow != nil {
		set[fFeedTimeWindow] = *upd.FeedTimeWindow
	}
	if upd.BlueskyConnected != nil {
		set[fBlueskyConnected] = strconv.FormatBool(*upd.BlueskyConnected)
	}
	if err := s.rs.Put(ctx, key(email), set); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// List returns every UserRecord, newest createdAt first.
//
// This is a full prefix scan over the key space; cost grows linearly with the
// number of users.
func (s *Store) List(ctx context.Context) ([]models.UserRecord, error) {
	recs, err := s.rs.ScanPrefix(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.UserRecord, 0, len(recs))
	for _, r := range recs {
		if len(r.Fields) == 0 {
			continue
		}
		u := decode(r.Fields)
		if u.Email == "" {
			u.Email = r.Key[len(keyPrefix):]
		}
		users = append(users, u)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Encoding                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func encode(u models.UserRecord) records.Fields {
	f := records.Fields{
		fEmail:            u.Email,
		fStatus:           u.Status,
		fCreatedAt:        formatTime(u.CreatedAt),
		fFeedTimeWindow:   u.FeedTimeWindow,
		fBlueskyConnected: strconv.FormatBool(u.BlueskyConnected),
	}
	if u.UpdatedAt != nil {
		f[fUpdatedAt] = formatTime(*u.UpdatedAt)
	}
	if u.UpdatedBy != "" {
		f[fUpdatedBy] = u.UpdatedBy
	}
	if u.LastLogin != nil {
		f[fLastLogin] = formatTime(*u.LastLogin)
	}
	if u.LastFeedRefresh != nil {
		f[fLastFeedRefresh] = formatTime(*u.LastFeedRefresh)
	}
	return f
}

func decode(f records.Fields) models.UserRecord {
	u := models.UserRecord{
		Email:            f[fEmail],
		Status:           f[fStatus],
		UpdatedBy:        f[fUpdatedBy],
		FeedTimeWindow:   f[fFeedTimeWindow],
		BlueskyConnected: f[fBlueskyConnected] == "true",
		UpdatedAt:        parseTimePtr(f[fUpdatedAt]),
		LastLogin:        parseTimePtr(f[fLastLogin]),
		LastFeedRefresh:  parseTimePtr(f[fLastFeedRefresh]),
	}
	if t := parseTimePtr(f[fCreatedAt]); t != nil {
		u.CreatedAt = *t
	}
	if u.FeedTimeWindow == "" {
		u.FeedTimeWindow = models.DefaultFeedTimeWindow
	}
	return u
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// parseTimePtr returns nil for empty or unparsable values (including the
// literal "null" older records may carry).
func parseTimePtr(s string) *time.Time {
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}
