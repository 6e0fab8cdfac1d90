package models

import (
	"fmt"
	"time"
)

// CredentialRecord holds one browser session's Spotify credentials.
//
// The record is keyed by an opaque session id rather than by the refresh token
// itself, so the bearer-equivalent secret is never used as a lookup key. The
// refresh token stays unique across records: one active session per refresh
// credential. The access token is always the most recently issued value for
// that refresh token.
type CredentialRecord struct {
	id           string
	sequence     int
	refreshToken string
	accessToken  string
	expiresAt    time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewCredentialRecord creates a credential record from a completed token exchange.
func NewCredentialRecord(sequence int, refreshToken, accessToken string, expiresAt time.Time) *CredentialRecord {
	now := time.Now()
	return &CredentialRecord{
		sequence:     sequence,
		refreshToken: refreshToken,
		accessToken:  accessToken,
		expiresAt:    expiresAt,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (c *CredentialRecord) ID() string { return c.id }

func (c *CredentialRecord) Sequence() int { return c.sequence }

func (c *CredentialRecord) RefreshToken() string { return c.refreshToken }

func (c *CredentialRecord) AccessToken() string { return c.accessToken }

func (c *CredentialRecord) ExpiresAt() time.Time { return c.expiresAt }

func (c *CredentialRecord) CreatedAt() time.Time { return c.createdAt }

func (c *CredentialRecord) UpdatedAt() time.Time { return c.updatedAt }

func (c *CredentialRecord) SetID(id string) { c.id = id }

func (c *CredentialRecord) SetRefreshToken(rt string) { c.refreshToken = rt }

func (c *CredentialRecord) SetAccessToken(at string) { c.accessToken = at }

func (c *CredentialRecord) SetExpiresAt(t time.Time) { c.expiresAt = t }

func (c *CredentialRecord) SetCreatedAt(t time.Time) { c.createdAt = t }

func (c *CredentialRecord) SetUpdatedAt(t time.Time) { c.updatedAt = t }

// Validate checks that the record carries both credentials.
func (c *CredentialRecord) Validate() error {
	if c.refreshToken == "" {
		return fmt.Errorf("credential record missing refresh token")
	}
	if c.accessToken == "" {
		return fmt.Errorf("credential record missing access token")
	}
	return nil
}
