package services

import (
	"log"

	"github.com/mkof14/dishcore-sub001/models"

	"gorm.io/gorm"
)

// awardBadges appends every badge whose rule the record satisfies right now.
// Rules are equality checks against exact milestone values, evaluated in the
// fixed models.BadgeRules order; a key already present is never re-appended.
func awardBadges(prog *models.UserProgress, kind ActionKind) []string {
	var earned []string
	for _, rule := range models.BadgeRules {
		var hit bool
		switch rule.Counter {
		case models.CounterMeals:
			hit = prog.MealsLogged == rule.Milestone
		case models.CounterStreak:
			hit = int64(prog.CurrentStreak) == rule.Milestone
		case models.CounterRecipes:
			hit = prog.RecipesCreated == rule.Milestone
		case models.CounterChallenges:
			hit = prog.ChallengesCompleted == rule.Milestone
		case models.CounterWearable:
			hit = kind == ActionWearableConnected
		case models.CounterLevel:
			hit = int64(prog.Level) == rule.Milestone
		}
		if hit && !hasBadge(prog, rule.Key) {
			prog.Badges = append(prog.Badges, rule.Key)
			earned = append(earned, rule.Key)
			log.Printf("🎖️ Badge earned: %s → %s", rule.Key, prog.ExternalUserID)
		}
	}
	return earned
}

func hasBadge(prog *models.UserProgress, key string) bool {
	for _, b := range prog.Badges {
		if b == key {
			return true
		}
	}
	return false
}

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// EarnedBadge is a badge key joined with its catalog metadata
type EarnedBadge struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ListUserBadges returns the user's badges in the order they were earned,
// joined with display metadata from the catalog.
func (s *BadgeService) ListUserBadges(externalUserID string) ([]EarnedBadge, error) {
	var prog models.UserProgress
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prog).Error
	if err == gorm.ErrRecordNotFound {
		return []EarnedBadge{}, nil // no record yet = no badges, not an error
	}
	if err != nil {
		return nil, err
	}

	badges := make([]EarnedBadge, 0, len(prog.Badges))
	for _, key := range prog.Badges {
		meta, ok := models.BadgeCatalog[key]
		if !ok {
			// Key without catalog entry (e.g., retired badge): show the key raw
			badges = append(badges, EarnedBadge{Key: key, Name: key})
			continue
		}
		badges = append(badges, EarnedBadge{
			Key:         meta.Key,
			Name:        meta.Name,
			Description: meta.Description,
			Icon:        meta.Icon,
		})
	}
	return badges, nil
}

// Catalog returns every badge definition in rule order (for the badges screen,
// so locked badges render in a stable sequence).
func (s *BadgeService) Catalog() []models.Badge {
	catalog := make([]models.Badge, 0, len(models.BadgeRules))
	for _, rule := range models.BadgeRules {
		catalog = append(catalog, models.BadgeCatalog[rule.Key])
	}
	return catalog
}
