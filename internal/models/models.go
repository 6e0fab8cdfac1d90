// package models defines the data model for the playlist shuffler service
package models

import (
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// QueueRequest is the ephemeral input of one randomization call. Never persisted.
type QueueRequest struct {
	PlaylistRef string `json:"playlistId"`
	TrackCount  int    `json:"numTracks"`
}
