package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/asd638796/spotify-playlist-shuffler/internal/models"
	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestTokenRepository(t *testing.T) {
	newRecord := func(refreshToken, accessToken string) *models.CredentialRecord {
		return models.NewCredentialRecord(0, refreshToken, accessToken, time.Now().Add(time.Hour))
	}

	t.Run("Create And Get", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		record := newRecord("rt-1", "at-1")
		if err := repo.Create(record); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if record.ID() == "" {
			t.Fatal("expected Create to assign a session key")
		}

		got, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.RefreshToken() != "rt-1" {
			t.Errorf("expected refresh token rt-1, got %s", got.RefreshToken())
		}
		if got.AccessToken() != "at-1" {
			t.Errorf("expected access token at-1, got %s", got.AccessToken())
		}
		if got.ExpiresAt().IsZero() {
			t.Error("expected a stored expiry")
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrNoSuchSession) {
			t.Errorf("expected ErrNoSuchSession, got %v", err)
		}
	})

	t.Run("Get By Refresh Token", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		record := newRecord("rt-1", "at-1")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		got, err := repo.GetByRefreshToken("rt-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID() != record.ID() {
			t.Errorf("expected session key %s, got %s", record.ID(), got.ID())
		}

		if _, err := repo.GetByRefreshToken("rt-2"); !errors.Is(err, shared.ErrNoSuchSession) {
			t.Errorf("expected ErrNoSuchSession, got %v", err)
		}
	})

	t.Run("Refresh Token Is Unique", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Create(newRecord("rt-1", "at-1")); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}
		if err := repo.Create(newRecord("rt-1", "at-2")); err == nil {
			t.Error("expected an error for a duplicate refresh token")
		}
	})

	t.Run("Validation Rejects Empty Tokens", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Create(newRecord("", "at-1")); err == nil {
			t.Error("expected an error for a missing refresh token")
		}
		if err := repo.Create(newRecord("rt-1", "")); err == nil {
			t.Error("expected an error for a missing access token")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		record := newRecord("rt-1", "at-1")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		record.SetAccessToken("at-2")
		record.SetRefreshToken("rt-2")
		if err := repo.Update(record); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to read record back: %v", err)
		}
		if got.AccessToken() != "at-2" {
			t.Errorf("expected access token at-2, got %s", got.AccessToken())
		}
		if got.RefreshToken() != "rt-2" {
			t.Errorf("expected refresh token rt-2, got %s", got.RefreshToken())
		}
	})

	t.Run("Update Missing", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		record := newRecord("rt-1", "at-1")
		record.SetID("missing")
		if err := repo.Update(record); !errors.Is(err, shared.ErrNoSuchSession) {
			t.Errorf("expected ErrNoSuchSession, got %v", err)
		}
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		record := newRecord("rt-1", "at-1")
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := repo.Get(record.ID()); !errors.Is(err, shared.ErrNoSuchSession) {
			t.Errorf("expected ErrNoSuchSession after delete, got %v", err)
		}
		if err := repo.Delete(record.ID()); err != nil {
			t.Errorf("second delete should succeed, got %v", err)
		}
	})

	t.Run("Sequence Increments", func(t *testing.T) {
		db := setupTestDB(t)

		first, err := NextSequence(db, "tokens")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := NextSequence(db, "tokens")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second != first+1 {
			t.Errorf("expected sequence %d, got %d", first+1, second)
		}
	})
}
