// Package sessions keeps bearer tokens for UI callers in redis, so any
// front-end replica can resolve a token to an account.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create issues a fresh token bound to the account.
func (s *Store) Create(ctx context.Context, accountID int64) (string, error) {
	token := uuid.NewString()

	err := s.rdb.Set(ctx, keyPrefix+token, accountID, s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// Resolve maps a token back to its account id and refreshes the TTL.
func (s *Store) Resolve(ctx context.Context, token string) (int64, error) {
	raw, err := s.rdb.GetEx(ctx, keyPrefix+token, s.ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}

		return 0, fmt.Errorf("resolve session: %w", err)
	}

	accountID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}

	return accountID, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	err := s.rdb.Del(ctx, keyPrefix+token).Err()
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}
