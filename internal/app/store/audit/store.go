// internal/app/store/audit/store.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
	"github.com/google/uuid"
)

const keyPrefix = "audit:"

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventSignInSuccess        = "signin_success"
	EventSignInDeniedNoRecord = "signin_denied_no_record"
	EventSignInDeniedStatus   = "signin_denied_status"
	EventSignOut              = "signout"
)

// Admin event types
const (
	EventUserStatusChanged = "user_status_changed"
)

// Event is one audit record.
type Event struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Category  string `json:"category"`
	EventType string `json:"eventType"`

	// Who
	Email      string `json:"email,omitempty"`      // affected user
	ActorEmail string `json:"actorEmail,omitempty"` // who performed the action (admin events)

	// Context
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`

	// Outcome
	Success       bool   `json:"success"`
	FailureReason string `json:"failureReason,omitempty"`

	Details map[string]string `json:"details,omitempty"`
}

// Store persists audit events as "audit:{epochMillis}:{uuid}" records.
type Store struct {
	rs  records.Store
	now func() time.Time
}

// New creates an audit Store.
func New(rs records.Store) *Store {
	return &Store{rs: rs, now: time.Now}
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Log stores an event, stamping ID and CreatedAt.
func (s *Store) Log(ctx context.Context, e Event) error {
	e.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	e.ID = strconv.FormatInt(e.CreatedAt.UnixMilli(), 10) + ":" + uuid.NewString()

	f := records.Fields{
		"category":  e.Category,
		"eventType": e.EventType,
		"createdAt": e.CreatedAt.Format(time.RFC3339Nano),
		"success":   strconv.FormatBool(e.Success),
	}
	setIf(f, "email", e.Email)
	setIf(f, "actorEmail", e.ActorEmail)
	setIf(f, "ip", e.IP)
	setIf(f, "userAgent", e.UserAgent)
	setIf(f, "failureReason", e.FailureReason)
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		f["details"] = string(b)
	}

	if err := s.rs.Create(ctx, keyPrefix+e.ID, f); err != nil {
		return fmt.Errorf("store audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns all of them.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	recs, err := s.rs.ScanPrefix(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	out := make([]Event, 0, len(recs))
	for _, r := range recs {
		out = append(out, decode(r.Key[len(keyPrefix):], r.Fields))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func decode(id string, f records.Fields) Event {
	e := Event{
		ID:            id,
		Category:      f["category"],
		EventType:     f["eventType"],
		Email:         f["email"],
		ActorEmail:    f["actorEmail"],
		IP:            f["ip"],
		UserAgent:     f["userAgent"],
		Success:       f["success"] == "true",
		FailureReason: f["failureReason"],
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, f["createdAt"])
	if d := f["details"]; d != "" {
		_ = json.Unmarshal([]byte(d), &e.Details)
	}
	return e
}

func setIf(f records.Fields, k, v string) {
	if v != "" {
		f[k] = v
	}
}
