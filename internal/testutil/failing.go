package testutil

import (
	"context"
	"errors"

	"github.com/dalemusser/papilloncast/internal/app/store/records"
)

// ErrStoreDown is returned by every FailingStore call.
var ErrStoreDown = errors.New("store unavailable")

// FailingStore is a records.Store whose every operation fails. Handler tests
// use it to exercise the 500 path.
type FailingStore struct{}

var _ records.Store = FailingStore{}

func (FailingStore) Get(context.Context, string) (records.Fields, error) { return nil, ErrStoreDown }
func (FailingStore) Put(context.Context, string, records.Fields) error  { return ErrStoreDown }
func (FailingStore) Create(context.Context, string, records.Fields) error {
	return ErrStoreDown
}
func (FailingStore) ScanPrefix(context.Context, string) ([]records.Record, error) {
	return nil, ErrStoreDown
}
func (FailingStore) Delete(context.Context, string) error { return ErrStoreDown }
func (FailingStore) Ping(context.Context) error           { return ErrStoreDown }
func (FailingStore) Close(context.Context) error          { return nil }
