// Package dispatch turns a content-type request into text and records it in
// the history ledger.
//
// Each content type is served by a Generator. The built-in generators render
// fixed templates; a real generator can replace any of them through
// Dispatcher.Register without touching the ledger or the HTTP layer.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/papilloncast/internal/app/store/users"
	"github.com/dalemusser/papilloncast/internal/app/system/historyledger"
	"github.com/dalemusser/papilloncast/internal/app/system/htmlsanitize"
	"github.com/dalemusser/papilloncast/internal/domain/models"
	"go.uber.org/zap"
)

var (
	// ErrInvalidContentType is returned for a type with no registered Generator.
	ErrInvalidContentType = errors.New("invalid content type")
	// ErrNotConnected is returned when the caller has not connected a BlueSky account.
	ErrNotConnected = errors.New("bluesky account not connected")
)

// Request is the input a Generator works from.
type Request struct {
	Email          string
	FeedTimeWindow string
}

// Generator produces content for one content type.
type Generator interface {
	Type() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Result is a successful generation.
type Result struct {
	Content string
	Entry   *models.HistoryEntry
}

// Dispatcher routes requests to generators and appends results to the ledger.
type Dispatcher struct {
	generators map[string]Generator
	users      *userstore.Store
	ledger     *historyledger.Ledger
	logger     *zap.Logger
}

// New creates a Dispatcher with the given generators registered.
func New(users *userstore.Store, ledger *historyledger.Ledger, logger *zap.Logger, gens ...Generator) *Dispatcher {
	d := &Dispatcher{
		generators: make(map[string]Generator, len(gens)),
		users:      users,
		ledger:     ledger,
		logger:     logger,
	}
	for _, g := range gens {
		d.Register(g)
	}
	return d
}

// Register adds g, replacing any generator already registered for its type.
// Only types in models.AllContentTypes are accepted.
func (d *Dispatcher) Register(g Generator) {
	if !models.IsValidContentType(g.Type()) {
		d.logger.Warn("ignoring generator for unknown content type", zap.String("type", g.Type()))
		return
	}
	d.generators[g.Type()] = g
}

// Generate produces content of contentType for email. feedTimeWindow falls
// back to the user's saved preference when empty or not a known window.
// Nothing is recorded unless generation succeeds.
func (d *Dispatcher) Generate(ctx context.Context, email, contentType, feedTimeWindow string) (*Result, error) {
	gen, ok := d.generators[contentType]
	if !ok {
		return nil, ErrInvalidContentType
	}

	u, err := d.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrNotConnected
		}
		return nil, fmt.Errorf("generate: %w", err)
	}
	if !u.BlueskyConnected {
		return nil, ErrNotConnected
	}

	window := feedTimeWindow
	if !models.IsValidFeedTimeWindow(window) {
		window = u.FeedTimeWindow
	}

	content, err := gen.Generate(ctx, Request{Email: email, FeedTimeWindow: window})
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", contentType, err)
	}
	content = htmlsanitize.PlainText(content)

	entry, err := d.ledger.Append(ctx, email, contentType, window, content)
	if err != nil {
		if entry == nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
		// Entry stored; only the lastFeedRefresh stamp failed.
		d.logger.Warn("generation recorded with stale lastFeedRefresh", zap.Error(err))
	}

	d.logger.Debug("content generated",
		zap.String("email", email),
		zap.String("type", contentType),
		zap.String("feed_time_window", window),
		zap.Int("word_count", entry.WordCount))
	return &Result{Content: content, Entry: entry}, nil
}
