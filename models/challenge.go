package models

import "time"

// ChallengeStatus is the publishing lifecycle of a challenge
type ChallengeStatus string

const (
	ChallengeStatusDraft     ChallengeStatus = "draft"
	ChallengeStatusScheduled ChallengeStatus = "scheduled"
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusEnded     ChallengeStatus = "ended"
)

// Challenge is an admin-authored challenge (e.g., "Log 5 healthy lunches this week")
type Challenge struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:10" json:"icon"`

	// RewardPoints overrides the table default for challenge_completed when > 0
	RewardPoints int64 `json:"reward_points" gorm:"default:0"`

	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	Status ChallengeStatus `json:"status" gorm:"type:varchar(16);default:'draft'"`

	Timestamps
}

// UserChallenge = enrollment + completion state
type UserChallenge struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index:idx_user_challenge,unique;not null" json:"external_user_id"`
	ChallengeID    string `gorm:"index:idx_user_challenge,unique;not null" json:"challenge_id"`

	Status       string     `json:"status" gorm:"type:varchar(16);default:'joined'"` // joined → completed
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	PointsEarned int64      `json:"points_earned" gorm:"default:0"`

	Timestamps
}
