package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

func TestMemoryChallengeStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Save And Consume", func(t *testing.T) {
		store := NewMemoryChallengeStore()

		if err := store.Save(ctx, "state-1", "verifier-1", time.Minute); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		verifier, err := store.Consume(ctx, "state-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if verifier != "verifier-1" {
			t.Errorf("expected verifier-1, got %s", verifier)
		}
	})

	t.Run("Consume Twice Fails Second Time", func(t *testing.T) {
		store := NewMemoryChallengeStore()

		if err := store.Save(ctx, "state-1", "verifier-1", time.Minute); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := store.Consume(ctx, "state-1"); err != nil {
			t.Fatalf("first consume failed: %v", err)
		}
		if _, err := store.Consume(ctx, "state-1"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState on second consume, got %v", err)
		}
	})

	t.Run("Unknown State", func(t *testing.T) {
		store := NewMemoryChallengeStore()

		if _, err := store.Consume(ctx, "missing"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("Expired Entry", func(t *testing.T) {
		store := NewMemoryChallengeStore()

		if err := store.Save(ctx, "state-1", "verifier-1", 10*time.Millisecond); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		time.Sleep(25 * time.Millisecond)

		if _, err := store.Consume(ctx, "state-1"); !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState for expired state, got %v", err)
		}
	})

	t.Run("Rejects Empty State Or Verifier", func(t *testing.T) {
		store := NewMemoryChallengeStore()

		if err := store.Save(ctx, "", "verifier", time.Minute); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := store.Save(ctx, "state", "", time.Minute); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("CheckHealth", func(t *testing.T) {
		store := NewMemoryChallengeStore()
		if err := store.CheckHealth(ctx); err != nil {
			t.Errorf("expected healthy store, got %v", err)
		}
	})
}
