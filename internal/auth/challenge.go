package auth

import (
	"context"
	"sync"
	"time"

	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

// ChallengeStore maps a pending login's state value to its PKCE code verifier.
//
// Entries are short-lived and consumed at most once: Consume removes the entry
// as it reads it, so only the first provider callback with a given state can
// succeed. A second use would allow a code-interception replay.
type ChallengeStore interface {
	// Save stores the verifier under state for at most ttl.
	Save(ctx context.Context, state, verifier string, ttl time.Duration) error

	// Consume returns the verifier for state and deletes it atomically.
	// Returns [shared.ErrInvalidState] for unknown, expired, or already
	// consumed states.
	Consume(ctx context.Context, state string) (string, error)

	// CheckHealth verifies the backing store is reachable.
	CheckHealth(ctx context.Context) error
}

type challengeEntry struct {
	verifier  string
	expiresAt time.Time
}

// MemoryChallengeStore keeps pending challenges in process memory.
//
// The default backend for single-process deployments; expired entries are
// dropped lazily on Consume and swept whenever a new challenge is saved.
type MemoryChallengeStore struct {
	mu      sync.Mutex
	entries map[string]challengeEntry
}

// NewMemoryChallengeStore creates an empty in-memory challenge store.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{entries: make(map[string]challengeEntry)}
}

// Save stores the verifier under state for at most ttl.
func (s *MemoryChallengeStore) Save(ctx context.Context, state, verifier string, ttl time.Duration) error {
	if state == "" || verifier == "" {
		return shared.ErrInvalidArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}

	s.entries[state] = challengeEntry{verifier: verifier, expiresAt: now.Add(ttl)}
	return nil
}

// Consume returns the verifier for state and deletes it.
func (s *MemoryChallengeStore) Consume(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return "", shared.ErrInvalidState
	}
	delete(s.entries, state)

	if time.Now().After(entry.expiresAt) {
		return "", shared.ErrInvalidState
	}

	return entry.verifier, nil
}

// CheckHealth always succeeds for the in-memory store.
func (s *MemoryChallengeStore) CheckHealth(ctx context.Context) error {
	return nil
}
