// Package historyledger is the per-user log of content generations. Entries
// are append-only; favorited is the only field that changes after creation.
package historyledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	historystore "github.com/dalemusser/papilloncast/internal/app/store/history"
	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

// Ledger appends, lists, and flags history entries.
type Ledger struct {
	history          *historystore.Store
	users            *userstore.Store
	enforceOwnership bool
	logger           *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithOwnershipCheck makes ToggleFavorite ignore entries the caller does not own.
func WithOwnershipCheck(enabled bool) Option {
	return func(l *Ledger) { l.enforceOwnership = enabled }
}

// New creates a Ledger.
func New(history *historystore.Store, users *userstore.Store, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{history: history, users: users, logger: logger}
	for _, o := range opts {
		o(l)
	}
	return l
}

// WordCount counts whitespace-separated words.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ReadingTime returns whole minutes to read wordCount words, rounded up.
func ReadingTime(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + models.WordsPerMinute - 1) / models.WordsPerMinute
}

// Append records a generation for ownerEmail and stamps the owner's
// lastFeedRefresh with the entry's creation time.
func (l *Ledger) Append(ctx context.Context, ownerEmail, contentType, feedTimeWindow, content string) (*models.HistoryEntry, error) {
	wc := WordCount(content)
	e, err := l.history.Append(ctx, models.HistoryEntry{
		OwnerEmail:     ownerEmail,
		Type:           contentType,
		FeedTimeWindow: feedTimeWindow,
		Content:        content,
		WordCount:      wc,
		ReadingTime:    ReadingTime(wc),
	})
	if err != nil {
		return nil, err
	}
	if err := l.users.TouchLastFeedRefresh(ctx, ownerEmail, e.CreatedAt); err != nil {
		// The entry is already stored; report the partial failure.
		return e, fmt.Errorf("append: entry %s stored but lastFeedRefresh not updated: %w", e.ID, err)
	}
	return e, nil
}

// ListFor returns ownerEmail's entries, newest first.
func (l *Ledger) ListFor(ctx context.Context, ownerEmail string) ([]models.HistoryEntry, error) {
	return l.history.ListFor(ctx, ownerEmail)
}

// ToggleFavorite flips the favorited flag of entry id and returns the new
// value. A missing or malformed id is a silent no-op that returns false.
// With the ownership check enabled, entries not owned by caller are treated
// as missing.
func (l *Ledger) ToggleFavorite(ctx context.Context, caller, id string) (bool, error) {
	e, err := l.history.Get(ctx, id)
	if err != nil {
		if errors.Is(err, historystore.ErrNotFound) || errors.Is(err, historystore.ErrBadID) {
			return false, nil
		}
		return false, err
	}
	if l.enforceOwnership && e.OwnerEmail != caller {
		l.logger.Warn("favorite toggle on foreign entry ignored",
			zap.String("caller", caller),
			zap.String("id", id))
		return false, nil
	}
	next := !e.Favorited
	if err := l.history.SetFavorited(ctx, id, next); err != nil {
		return false, err
	}
	return next, nil
}
