package models

// Dish is a user-created recipe. Nutrition values are per serving.
type Dish struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"` // creator

	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Ingredients  []string `json:"ingredients" gorm:"serializer:json;type:jsonb"`
	Instructions string   `gorm:"type:text" json:"instructions"`
	Servings     int      `json:"servings" gorm:"default:1"`
	PrepMinutes  int      `json:"prep_minutes" gorm:"default:0"`

	Calories float64 `json:"calories" gorm:"default:0"`
	Protein  float64 `json:"protein" gorm:"default:0"`
	Carbs    float64 `json:"carbs" gorm:"default:0"`
	Fat      float64 `json:"fat" gorm:"default:0"`

	IsHealthy bool   `json:"is_healthy" gorm:"default:false"`
	PhotoURL  string `gorm:"type:text" json:"photo_url,omitempty"` // public R2 URL

	Timestamps
}
