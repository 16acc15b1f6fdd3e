package services

import (
	"fmt"
	"log"
	"time"

	"github.com/mkof14/dishcore-sub001/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionKind identifies a scoreable user action.
type ActionKind string

const (
	ActionMealLogged         ActionKind = "meal_logged"
	ActionRecipeCreated      ActionKind = "recipe_created"
	ActionPlanCompleted      ActionKind = "plan_completed"
	ActionChallengeCompleted ActionKind = "challenge_completed"
	ActionGoalAchieved       ActionKind = "goal_achieved"
	ActionContentShared      ActionKind = "content_shared"
	ActionWaterGoalMet       ActionKind = "water_goal_met"
	ActionWorkoutLogged      ActionKind = "workout_logged"
	ActionWearableConnected  ActionKind = "wearable_connected"
	ActionProfileCompleted   ActionKind = "profile_completed"
)

// Action is one scoreable event handed to the ledger.
type Action struct {
	Kind      ActionKind `json:"kind"`
	IsHealthy bool       `json:"is_healthy,omitempty"` // meal_logged only
	MealType  string     `json:"meal_type,omitempty"`  // meal_logged only: breakfast|lunch|dinner|snack
	Points    int64      `json:"points,omitempty"`     // challenge_completed only: explicit override when > 0
}

// PointValues define flat awards per action kind (tunable via config/env later)
var PointValues = map[ActionKind]int64{
	ActionMealLogged:         10,
	ActionRecipeCreated:      50,
	ActionPlanCompleted:      100,
	ActionChallengeCompleted: 200,
	ActionGoalAchieved:       30,
	ActionContentShared:      15,
	ActionWaterGoalMet:       20,
	ActionWorkoutLogged:      25,
	ActionWearableConnected:  50,
	ActionProfileCompleted:   25,
}

// Meal bonus values. A bonus adds (value - base meal value) on top of the base
// award, and both can stack: a healthy breakfast earns 10 + 5 + 5.
const (
	HealthyMealValue = 15
	BreakfastValue   = 15
)

// Streak milestone bonuses, paid once on the day the streak lands exactly on
// 7 or 30.
const (
	WeekStreakBonus  = 70
	MonthStreakBonus = 300
)

const PointsPerLevel = 1000

// levelForPoints: level = floor(points / 1000) + 1
func levelForPoints(points int64) int {
	return int(points/PointsPerLevel) + 1
}

const dateLayout = "2006-01-02"

// applyAction folds one action into prog. It mutates prog in place and returns
// the points earned plus any badge keys appended by this call. Persistence is
// the caller's job — AwardAction wraps this in a transaction.
func applyAction(prog *models.UserProgress, action Action, now time.Time) (int64, []string) {
	points, known := PointValues[action.Kind]
	if !known {
		// Unknown kinds score nothing and touch no counters.
		return 0, nil
	}

	switch action.Kind {
	case ActionMealLogged:
		prog.MealsLogged++
		if action.IsHealthy {
			points += HealthyMealValue - PointValues[ActionMealLogged]
		}
		if action.MealType == "breakfast" {
			points += BreakfastValue - PointValues[ActionMealLogged]
		}

		// Streak bookkeeping only moves on the first log of a calendar day;
		// later logs the same day still earn points but leave the streak alone.
		today := now.Format(dateLayout)
		if prog.LastLogDate != today {
			yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
			if prog.LastLogDate == yesterday {
				prog.CurrentStreak++
			} else {
				// Gap (or very first log): streak restarts at 1, not 0
				prog.CurrentStreak = 1
			}
			if prog.CurrentStreak > prog.LongestStreak {
				prog.LongestStreak = prog.CurrentStreak
			}
			prog.LastLogDate = today

			if prog.CurrentStreak == 7 {
				points += WeekStreakBonus
			} else if prog.CurrentStreak == 30 {
				points += MonthStreakBonus
			}
		}

	case ActionRecipeCreated:
		prog.RecipesCreated++

	case ActionPlanCompleted:
		prog.PlansCompleted++

	case ActionChallengeCompleted:
		prog.ChallengesCompleted++
		if action.Points > 0 {
			points = action.Points
		}
	}

	prog.TotalPoints += points
	prog.Level = levelForPoints(prog.TotalPoints)

	return points, awardBadges(prog, action.Kind)
}

type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

func defaultProgress(externalUserID string) models.UserProgress {
	return models.UserProgress{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		TotalPoints:    0,
		Level:          1,
		Badges:         []string{},
	}
}

// EnsureProgressRecord ensures a UserProgress row exists (idempotent)
func (s *ProgressionService) EnsureProgressRecord(externalUserID string) (*models.UserProgress, error) {
	var prog models.UserProgress
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prog).Error
	if err == gorm.ErrRecordNotFound {
		prog = defaultProgress(externalUserID)
		if err := s.DB.Create(&prog).Error; err != nil {
			return nil, err
		}
		return &prog, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// AwardResult is what the caller surfaces to the user after an action lands.
type AwardResult struct {
	PointsEarned int64                `json:"points_earned"`
	NewBadges    []string             `json:"new_badges"`
	Progress     *models.UserProgress `json:"progress"`
}

// AwardAction applies one action to the user's ledger as a single
// read-modify-write transaction, so two tabs logging at once cannot drop an
// increment. Returns the points earned and any newly appended badge keys.
func (s *ProgressionService) AwardAction(externalUserID string, action Action) (*AwardResult, error) {
	return s.AwardActionTx(s.DB, externalUserID, action)
}

// AwardActionTx is AwardAction for callers that already hold a transaction
// (meal logging writes the MealLog row and the ledger update together).
func (s *ProgressionService) AwardActionTx(db *gorm.DB, externalUserID string, action Action) (*AwardResult, error) {
	var result *AwardResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var prog models.UserProgress
		err := tx.Where("external_user_id = ?", externalUserID).First(&prog).Error
		if err == gorm.ErrRecordNotFound {
			prog = defaultProgress(externalUserID)
			if err := tx.Create(&prog).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		points, newBadges := applyAction(&prog, action, time.Now())

		if err := tx.Save(&prog).Error; err != nil {
			return err
		}

		// Copy for return (avoid pointer into the closure var)
		updated := prog
		result = &AwardResult{
			PointsEarned: points,
			NewBadges:    newBadges,
			Progress:     &updated,
		}

		log.Printf("🥗 Points awarded: %s → +%d (total=%d, lvl=%d, streak=%d, kind=%s)",
			externalUserID, points, prog.TotalPoints, prog.Level, prog.CurrentStreak, action.Kind)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GrantPoints adds a flat amount to the ledger (admin operation). Counters are
// untouched, so milestone badges that require landing exactly on a count will
// not fire for bulk grants — only level badges can.
func (s *ProgressionService) GrantPoints(externalUserID string, points int64, reason string) (*models.UserProgress, error) {
	if points <= 0 {
		return nil, fmt.Errorf("grant must be positive, got %d", points)
	}
	var updated *models.UserProgress
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var prog models.UserProgress
		err := tx.Where("external_user_id = ?", externalUserID).First(&prog).Error
		if err == gorm.ErrRecordNotFound {
			prog = defaultProgress(externalUserID)
			if err := tx.Create(&prog).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		prog.TotalPoints += points
		prog.Level = levelForPoints(prog.TotalPoints)
		awardBadges(&prog, "")

		if err := tx.Save(&prog).Error; err != nil {
			return err
		}

		updated = &models.UserProgress{}
		*updated = prog

		log.Printf("🎁 Points granted: %s → +%d (total=%d, lvl=%d, reason: %s)",
			externalUserID, points, prog.TotalPoints, prog.Level, reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetUserHistory returns paginated activity (meal logs + completed challenges + completed plans)
func (s *ProgressionService) GetUserHistory(externalUserID string, page, size int) (map[string]interface{}, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var totalMeals, totalChallenges, totalPlans int64

	s.DB.Model(&models.MealLog{}).Where("external_user_id = ?", externalUserID).Count(&totalMeals)
	s.DB.Model(&models.UserChallenge{}).Where("external_user_id = ? AND status = 'completed'", externalUserID).Count(&totalChallenges)
	s.DB.Model(&models.MealPlan{}).Where("external_user_id = ? AND status = 'completed'", externalUserID).Count(&totalPlans)

	var meals []models.MealLog
	s.DB.Where("external_user_id = ?", externalUserID).
		Order("logged_at DESC").
		Limit(size).Offset(offset).
		Find(&meals)

	var challenges []models.UserChallenge
	s.DB.Where("external_user_id = ? AND status = 'completed'", externalUserID).
		Order("completed_at DESC").
		Limit(size).Offset(offset).
		Find(&challenges)

	var plans []models.MealPlan
	s.DB.Where("external_user_id = ? AND status = 'completed'", externalUserID).
		Order("completed_at DESC").
		Limit(size).Offset(offset).
		Find(&plans)

	totalItems := totalMeals + totalChallenges + totalPlans
	totalPages := int((totalItems + int64(size) - 1) / int64(size))

	return map[string]interface{}{
		"meals":            meals,
		"challenges":       challenges,
		"plans":            plans,
		"page":             page,
		"size":             size,
		"total_items":      totalItems,
		"total_pages":      totalPages,
		"total_meals":      totalMeals,
		"total_challenges": totalChallenges,
		"total_plans":      totalPlans,
	}, nil
}
