// internal/app/store/records/memory.go
package records

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps records in process memory. It is used for tests and
// single-process development; data does not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Fields
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Fields)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return f.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[key]
	if !ok {
		cur = make(Fields, len(fields))
		s.data[key] = cur
	}
	for k, v := range fields {
		cur[k] = v
	}
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, key string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return ErrExists
	}
	s.data[key] = fields.Clone()
	return nil
}

// ScanPrefix returns matches in key order.
func (s *MemoryStore) ScanPrefix(ctx context.Context, prefix string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for k, f := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Record{Key: k, Fields: f.Clone()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
