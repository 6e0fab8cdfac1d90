package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

const challengePrefix = "pkce:"

// RedisChallengeStore implements [ChallengeStore] on Redis, for deployments
// running more than one server process behind the same redirect URI.
type RedisChallengeStore struct {
	client *redis.Client
}

// NewRedisChallengeStore creates a Redis-backed challenge store.
func NewRedisChallengeStore(client *redis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client}
}

// Save stores the verifier under state with the given expiration.
func (s *RedisChallengeStore) Save(ctx context.Context, state, verifier string, ttl time.Duration) error {
	if state == "" || verifier == "" {
		return shared.ErrInvalidArgument
	}

	key := challengePrefix + state
	if err := s.client.Set(ctx, key, verifier, ttl).Err(); err != nil {
		return fmt.Errorf("storing challenge: %w", err)
	}

	return nil
}

// Consume returns the verifier for state and deletes it in one round trip.
//
// GETDEL keeps the read-then-delete atomic, so concurrent callbacks with the
// same state race for a single winner.
func (s *RedisChallengeStore) Consume(ctx context.Context, state string) (string, error) {
	key := challengePrefix + state

	verifier, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", shared.ErrInvalidState
	}
	if err != nil {
		return "", fmt.Errorf("consuming challenge: %w", err)
	}

	return verifier, nil
}

// CheckHealth verifies Redis connectivity.
func (s *RedisChallengeStore) CheckHealth(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
