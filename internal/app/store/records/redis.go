// internal/app/store/records/redis.go
package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// createScript writes the hash only if the key does not exist yet, in one
// atomic step on the server. Returns 1 when created, 0 when the key existed.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 100

// RedisStore stores each record as a Redis hash.
type RedisStore struct {
	Client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{Client: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Fields, error) {
	m, err := s.Client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, ErrNotFound
	}
	return Fields(m), nil
}

func (s *RedisStore) Put(ctx context.Context, key string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	return s.Client.HSet(ctx, key, fieldPairs(fields)...).Err()
}

func (s *RedisStore) Create(ctx context.Context, key string, fields Fields) error {
	if len(fields) == 0 {
		return fmt.Errorf("create %q: no fields", key)
	}
	created, err := createScript.Run(ctx, s.Client, []string{key}, fieldPairs(fields)...).Int()
	if err != nil {
		return err
	}
	if created == 0 {
		return ErrExists
	}
	return nil
}

func (s *RedisStore) ScanPrefix(ctx context.Context, prefix string) ([]Record, error) {
	match := escapeGlob(prefix) + "*"

	var keys []string
	iter := s.Client.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	// SCAN may return a key more than once.
	seen := make(map[string]struct{}, len(keys))
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		f, err := s.Get(ctx, k)
		if err == ErrNotFound {
			// deleted between SCAN and HGETALL
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Key: k, Fields: f})
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisStore) Close(ctx context.Context) error {
	return s.Client.Close()
}

// fieldPairs flattens fields into alternating name/value arguments.
func fieldPairs(fields Fields) []any {
	args := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

// escapeGlob escapes the characters SCAN MATCH treats as pattern syntax, so
// that an email containing them is matched literally.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
