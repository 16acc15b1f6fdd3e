package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress is the per-user progress ledger (denormalized for performance).
// One row per user; created lazily on the first read that finds nothing.
type UserProgress struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	// Core ledger
	TotalPoints int64 `json:"total_points" gorm:"default:0"`
	Level       int   `json:"level" gorm:"default:1"` // recomputed from TotalPoints on every write, never mutated on its own

	// Streak = consecutive calendar days with at least one meal log
	CurrentStreak int    `json:"current_streak" gorm:"default:0"`
	LongestStreak int    `json:"longest_streak" gorm:"default:0"`
	LastLogDate   string `json:"last_log_date" gorm:"type:varchar(10)"` // yyyy-MM-dd, empty until first log

	// Activity counters
	MealsLogged         int64 `json:"meals_logged" gorm:"default:0"`
	RecipesCreated      int64 `json:"recipes_created" gorm:"default:0"`
	PlansCompleted      int64 `json:"plans_completed" gorm:"default:0"`
	ChallengesCompleted int64 `json:"challenges_completed" gorm:"default:0"`

	// Earned badge keys. Insertion order is preserved for display; a key is
	// appended at most once.
	Badges []string `json:"badges" gorm:"serializer:json;type:jsonb"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
