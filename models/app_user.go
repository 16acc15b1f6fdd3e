package models

import (
	"time"

	"gorm.io/gorm"
)

// AppUser is a local snapshot of user data needed by the diet service.
// Owned and managed solely by this service; populated via the profile sync
// worker from the profile service.
type AppUser struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username       string  `gorm:"index;not null" json:"username"`
	Email          string  `json:"email,omitempty"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	AvatarURL      *string `json:"avatar_url,omitempty"`

	// ProfileCompleted mirrors the profile service flag; flipping false→true
	// is what triggers the profile_completed award.
	ProfileCompleted bool `json:"profile_completed" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	LastSeen *time.Time `json:"last_seen,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WearableLink mirrors wearable-integration state for one user (read-mostly,
// synced by the wearable poll worker). ConnectedAt nil = never connected.
type WearableLink struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string     `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Provider       string     `gorm:"type:varchar(32)" json:"provider"` // e.g., "fitbit", "garmin"
	ConnectedAt    *time.Time `json:"connected_at,omitempty"`
	Awarded        bool       `json:"awarded" gorm:"default:false"` // wearable_connected action already fired

	Timestamps
}
