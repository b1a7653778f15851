// internal/app/store/records/records.go

// Package records is the record store adapter: a hash-map-per-key store that
// every repository in the application persists through.
//
// A record is a flat map of string fields stored under a string key. Put merges
// fields into an existing record (creating it if absent), so concurrent writers
// touching different fields of the same record do not clobber each other. There
// are no transactions across keys.
package records

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no record exists under the key.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned by Create when a record already exists under the key.
	ErrExists = errors.New("record already exists")
)

// Fields is the field map stored under a single key.
type Fields map[string]string

// Clone returns a copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Record pairs a key with its fields, as returned by ScanPrefix.
type Record struct {
	Key    string
	Fields Fields
}

// Store is the contract every backend implements.
//
// ScanPrefix performs a full scan of the key space under prefix and reads each
// matched record; cost is O(n) round trips on backends without server-side
// projection. Callers that need ordering sort the result themselves.
type Store interface {
	// Get returns the fields stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (Fields, error)
	// Put merges fields into the record under key, creating it if absent.
	Put(ctx context.Context, key string, fields Fields) error
	// Create writes fields under key only if no record exists there yet.
	// It returns ErrExists otherwise.
	Create(ctx context.Context, key string, fields Fields) error
	// ScanPrefix returns every record whose key starts with prefix.
	ScanPrefix(ctx context.Context, prefix string) ([]Record, error)
	// Delete removes the record under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Backend names accepted by the store_backend config key.
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// IsValidBackend reports whether name is a known backend.
func IsValidBackend(name string) bool {
	switch name {
	case BackendRedis, BackendMongo, BackendMemory:
		return true
	}
	return false
}
