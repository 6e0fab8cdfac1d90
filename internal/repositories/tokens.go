package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/asd638796/spotify-playlist-shuffler/internal/models"
	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
)

// TokenRepository persists [models.CredentialRecord] rows.
//
// Rows are deleted for real on logout rather than soft-deleted: a credential
// that is gone must be gone.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a new credential record with a generated session key and sequence.
func (r *TokenRepository) Create(record *models.CredentialRecord) error {
	sequence, err := NextSequence(r.db, "tokens")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	record.SetID(id)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO tokens (id, sequence, refresh_token, access_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, record.RefreshToken(), record.AccessToken(),
		record.ExpiresAt(), record.CreatedAt(), record.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert token record: %w", err)
	}

	return nil
}

// Get retrieves a credential record by session key.
// Returns [shared.ErrNoSuchSession] when no row exists.
func (r *TokenRepository) Get(sessionKey string) (*models.CredentialRecord, error) {
	query := `
		SELECT id, sequence, refresh_token, access_token, expires_at, created_at, updated_at
		FROM tokens
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, sessionKey))
}

// GetByRefreshToken retrieves a credential record by its refresh token.
// Returns [shared.ErrNoSuchSession] when no row exists.
func (r *TokenRepository) GetByRefreshToken(refreshToken string) (*models.CredentialRecord, error) {
	query := `
		SELECT id, sequence, refresh_token, access_token, expires_at, created_at, updated_at
		FROM tokens
		WHERE refresh_token = ?
	`
	return r.scanOne(r.db.QueryRow(query, refreshToken))
}

func (r *TokenRepository) scanOne(row *sql.Row) (*models.CredentialRecord, error) {
	var (
		id           string
		sequence     int
		refreshToken string
		accessToken  string
		expiresAt    sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &sequence, &refreshToken, &accessToken, &expiresAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNoSuchSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token record: %w", err)
	}

	record := models.NewCredentialRecord(sequence, refreshToken, accessToken, time.Time{})
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if expiresAt.Valid {
		record.SetExpiresAt(expiresAt.Time)
	}

	return record, nil
}

// Update rewrites the credential columns of an existing record in place.
//
// Called on every refresh, including when the provider rotates the refresh token.
func (r *TokenRepository) Update(record *models.CredentialRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	query := `
		UPDATE tokens
		SET refresh_token = ?, access_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, record.RefreshToken(), record.AccessToken(),
		record.ExpiresAt(), now, record.ID())
	if err != nil {
		return fmt.Errorf("failed to update token record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.ErrNoSuchSession
	}

	return nil
}

// Delete removes a credential record by session key.
//
// Idempotent: deleting an absent record is not an error.
func (r *TokenRepository) Delete(sessionKey string) error {
	_, err := r.db.Exec("DELETE FROM tokens WHERE id = ?", sessionKey)
	if err != nil {
		return fmt.Errorf("failed to delete token record: %w", err)
	}
	return nil
}
