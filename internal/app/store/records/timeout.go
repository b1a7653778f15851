// internal/app/store/records/timeout.go
package records

import (
	"context"
	"time"
)

// timeoutStore bounds every call on the wrapped store with a deadline.
type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps s so that each call runs under its own deadline of d.
// A non-positive d returns s unchanged.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, timeout: d}
}

func (t *timeoutStore) Get(ctx context.Context, key string) (Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Get(ctx, key)
}

func (t *timeoutStore) Put(ctx context.Context, key string, fields Fields) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Put(ctx, key, fields)
}

func (t *timeoutStore) Create(ctx context.Context, key string, fields Fields) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Create(ctx, key, fields)
}

func (t *timeoutStore) ScanPrefix(ctx context.Context, prefix string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.ScanPrefix(ctx, prefix)
}

func (t *timeoutStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Delete(ctx, key)
}

func (t *timeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Ping(ctx)
}

// Close is not bounded; shutdown supplies its own deadline.
func (t *timeoutStore) Close(ctx context.Context) error {
	return t.next.Close(ctx)
}
