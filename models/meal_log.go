package models

import "time"

// MealLog records a single logged meal (free-form or linked to a Dish)
type MealLog struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string  `gorm:"index;not null" json:"external_user_id"`
	DishID         *string `gorm:"index" json:"dish_id,omitempty"` // nil = free-form entry

	MealType string `json:"meal_type" gorm:"type:varchar(16);check:meal_type IN ('breakfast','lunch','dinner','snack')"`
	DishName string `json:"dish_name"`

	// Nutrition snapshot at log time (the dish may change later)
	Calories float64 `json:"calories" gorm:"default:0"`
	Protein  float64 `json:"protein" gorm:"default:0"`
	Carbs    float64 `json:"carbs" gorm:"default:0"`
	Fat      float64 `json:"fat" gorm:"default:0"`

	IsHealthy bool   `json:"is_healthy" gorm:"default:false"`
	PhotoURL  string `json:"photo_url,omitempty"`

	// Points awarded for this log (pre-calculated to avoid recomputation)
	PointsEarned int64 `json:"points_earned" gorm:"default:0"`

	LoggedAt time.Time `json:"logged_at"`

	Timestamps
}
