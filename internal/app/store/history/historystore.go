// internal/app/store/history/historystore.go
package historystore

// Terminology: History Identifiers
//   - ID: what clients see, "{ownerEmail}:{epochMillis}"
//   - Key: "history:" + ID, private to this package

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
	"github.com/dalemusser/papilloncast/internal/domain/models"
)

const keyPrefix = "history:"

// maxCollisionRetries bounds how far Append walks forward from the current
// millisecond looking for a free key.
const maxCollisionRetries = 1000

const (
	fID             = "id"
	fOwnerEmail     = "ownerEmail"
	fType           = "type"
	fFeedTimeWindow = "feedTimeWindow"
	fContent        = "content"
	fCreatedAt      = "createdAt"
	fWordCount      = "wordCount"
	fReadingTime    = "readingTime"
	fFavorited      = "favorited"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	// ErrNotFound is returned when no entry exists for an ID.
	ErrNotFound = errors.New("history entry not found")
	// ErrBadID is returned for IDs that are not "{email}:{epochMillis}".
	ErrBadID = errors.New("malformed history id")
)

// Store is the HistoryRepository.
type Store struct {
	rs  records.Store
	now func() time.Time
}

// New creates a history Store over the given record store.
func New(rs records.Store) *Store {
	return &Store{rs: rs, now: time.Now}
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// MakeID builds the client-facing ID for an entry.
func MakeID(ownerEmail string, createdAt time.Time) string {
	return ownerEmail + ":" + strconv.FormatInt(createdAt.UnixMilli(), 10)
}

// ParseID splits an ID into owner email and creation time. The email may
// itself contain colons, so the split is on the last one.
func ParseID(id string) (ownerEmail string, createdAt time.Time, err error) {
	i := strings.LastIndexByte(id, ':')
	if i <= 0 || i == len(id)-1 {
		return "", time.Time{}, ErrBadID
	}
	ms, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil || ms < 0 {
		return "", time.Time{}, ErrBadID
	}
	return id[:i], time.UnixMilli(ms).UTC(), nil
}

// Append persists a new entry for e.OwnerEmail, stamping ID and CreatedAt.
// If another entry already holds this millisecond for the same owner, the
// timestamp is advanced one millisecond at a time until a key is free.
func (s *Store) Append(ctx context.Context, e models.HistoryEntry) (*models.HistoryEntry, error) {
	at := s.now().UTC().Truncate(time.Millisecond)
	for i := 0; i < maxCollisionRetries; i++ {
		e.CreatedAt = at
		e.ID = MakeID(e.OwnerEmail, at)
		err := s.rs.Create(ctx, keyPrefix+e.ID, encode(e))
		if err == nil {
			return &e, nil
		}
		if !errors.Is(err, records.ErrExists) {
			return nil, fmt.Errorf("append history: %w", err)
		}
		at = at.Add(time.Millisecond)
	}
	return nil, fmt.Errorf("append history: no free timestamp for %s", e.OwnerEmail)
}

// Get loads one entry by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	if _, _, err := ParseID(id); err != nil {
		return nil, err
	}
	f, err := s.rs.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	e := decode(id, f)
	return &e, nil
}

// SetFavorited writes the favorited flag for an existing entry.
func (s *Store) SetFavorited(ctx context.Context, id string, favorited bool) error {
	if err := s.rs.Put(ctx, keyPrefix+id, records.Fields{fFavorited: strconv.FormatBool(favorited)}); err != nil {
		return fmt.Errorf("set favorited: %w", err)
	}
	return nil
}

// ListFor returns every entry owned by ownerEmail, newest createdAt first.
// Entries with equal createdAt keep the order the store returned them in.
func (s *Store) ListFor(ctx context.Context, ownerEmail string) ([]models.HistoryEntry, error) {
	prefix := keyPrefix + ownerEmail + ":"
	recs, err := s.rs.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]models.HistoryEntry, 0, len(recs))
	for _, r := range recs {
		id := strings.TrimPrefix(r.Key, keyPrefix)
		// The prefix also matches owners whose email extends this one with a
		// colon ("a@x.com:b"); only a bare millisecond suffix belongs here.
		if owner, _, err := ParseID(id); err != nil || owner != ownerEmail {
			continue
		}
		out = append(out, decode(id, r.Fields))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func encode(e models.HistoryEntry) records.Fields {
	return records.Fields{
		fID:             e.ID,
		fOwnerEmail:     e.OwnerEmail,
		fType:           e.Type,
		fFeedTimeWindow: e.FeedTimeWindow,
		fContent:        e.Content,
		fCreatedAt:      e.CreatedAt.UTC().Format(timeFormat),
		fWordCount:      strconv.Itoa(e.WordCount),
		fReadingTime:    strconv.Itoa(e.ReadingTime),
		fFavorited:      strconv.FormatBool(e.Favorited),
	}
}

func decode(id string, f records.Fields) models.HistoryEntry {
	e := models.HistoryEntry{
		ID:             id,
		OwnerEmail:     f[fOwnerEmail],
		Type:           f[fType],
		FeedTimeWindow: f[fFeedTimeWindow],
		Content:        f[fContent],
		Favorited:      f[fFavorited] == "true",
	}
	e.WordCount, _ = strconv.Atoi(f[fWordCount])
	e.ReadingTime, _ = strconv.Atoi(f[fReadingTime])
	if t, err := time.Parse(time.RFC3339Nano, f[fCreatedAt]); err == nil {
		e.CreatedAt = t
	} else if _, at, err := ParseID(id); err == nil {
		e.CreatedAt = at
	}
	if e.OwnerEmail == "" {
		e.OwnerEmail, _, _ = ParseID(id)
	}
	return e
}
