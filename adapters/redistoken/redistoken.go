// Package redistoken provides a Redis-backed TokenStorage for gateway
// deployments where the session cell must outlive a single process.
package redistoken

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"

	session "github.com/aarothfresh/go-session"
)

// DefaultKey is the Redis key holding the token.
const DefaultKey = "aaroth:session:token"

// Storage implements session.TokenStorage on top of a Redis client.
type Storage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func New(client *redis.Client) *Storage {
	return &Storage{
		client: client,
		key:    DefaultKey,
	}
}

func (s *Storage) WithKey(key string) *Storage {
	if key != "" {
		s.key = key
	}
	return s
}

// WithTTL bounds the persisted token lifetime; zero keeps it until cleared.
func (s *Storage) WithTTL(ttl time.Duration) *Storage {
	if ttl >= 0 {
		s.ttl = ttl
	}
	return s
}

func (s *Storage) Read(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.CategoryOperation, "failed to read persisted token")
	}
	return val, nil
}

func (s *Storage) Write(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to persist token")
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to clear persisted token")
	}
	return nil
}

var _ session.TokenStorage = (*Storage)(nil)
