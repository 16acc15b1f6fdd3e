package models

import "time"

// MealPlanDay is one day of a stored plan. Plan text comes from the external
// generator; this service only stores and scores it.
type MealPlanDay struct {
	Day       string `json:"day"` // e.g., "monday"
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Snack     string `json:"snack,omitempty"`
	Note      string `json:"note,omitempty"`
}

// MealPlan is a stored weekly plan for one user
type MealPlan struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	Title        string        `gorm:"not null" json:"title"`
	Days         []MealPlanDay `json:"days" gorm:"serializer:json;type:jsonb"`
	ShoppingList []string      `json:"shopping_list" gorm:"serializer:json;type:jsonb"`

	Status      string     `json:"status" gorm:"type:varchar(16);default:'active'"` // active → completed
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}
