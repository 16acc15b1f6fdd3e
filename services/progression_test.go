package services

import (
	"testing"
	"time"

	"github.com/mkof14/dishcore-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.UserProgress{},
		&models.MealLog{},
		&models.Dish{},
		&models.MealPlan{},
		&models.Challenge{},
		&models.UserChallenge{},
	))
	return db
}

func emptyProgress() *models.UserProgress {
	return &models.UserProgress{
		ID:             "p1",
		ExternalUserID: "u1",
		Level:          1,
		Badges:         []string{},
	}
}

func TestApplyActionFirstMeal(t *testing.T) {
	prog := emptyProgress()
	now := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)

	points, badges := applyAction(prog, Action{Kind: ActionMealLogged, MealType: "lunch"}, now)

	assert.Equal(t, int64(10), points)
	assert.Equal(t, int64(10), prog.TotalPoints)
	assert.Equal(t, int64(1), prog.MealsLogged)
	assert.Equal(t, 1, prog.CurrentStreak)
	assert.Equal(t, 1, prog.LongestStreak)
	assert.Equal(t, "2026-03-10", prog.LastLogDate)
	assert.Equal(t, 1, prog.Level)
	assert.Equal(t, []string{"first_meal"}, badges)
	assert.Equal(t, []string{"first_meal"}, prog.Badges)
}

func TestApplyActionHealthyBreakfastBonusesStack(t *testing.T) {
	prog := emptyProgress()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	points, _ := applyAction(prog, Action{Kind: ActionMealLogged, IsHealthy: true, MealType: "breakfast"}, now)

	// base 10 + healthy (15-10) + breakfast (15-10)
	assert.Equal(t, int64(20), points)
	assert.Equal(t, int64(20), prog.TotalPoints)
}

func TestApplyActionSameDayKeepsStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	prog := emptyProgress()
	prog.CurrentStreak = 3
	prog.LongestStreak = 5
	prog.LastLogDate = "2026-03-10"
	prog.MealsLogged = 8

	points, badges := applyAction(prog, Action{Kind: ActionMealLogged, MealType: "dinner"}, now)

	assert.Equal(t, int64(10), points)
	assert.Equal(t, 3, prog.CurrentStreak, "second log of the day must not move the streak")
	assert.Equal(t, 5, prog.LongestStreak)
	assert.Equal(t, "2026-03-10", prog.LastLogDate)
	assert.Equal(t, int64(9), prog.MealsLogged, "same-day logs still count meals")
	assert.Empty(t, badges)
}

func TestApplyActionStreakContinuesAndHitsWeekMilestone(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	prog := emptyProgress()
	prog.CurrentStreak = 6
	prog.LongestStreak = 6
	prog.LastLogDate = "2026-03-09" // yesterday
	prog.MealsLogged = 20

	points, badges := applyAction(prog, Action{Kind: ActionMealLogged, MealType: "lunch"}, now)

	assert.Equal(t, 7, prog.CurrentStreak)
	assert.Equal(t, 7, prog.LongestStreak)
	assert.Equal(t, int64(10+WeekStreakBonus), points)
	assert.Contains(t, badges, "streak_7")
}

func TestApplyActionStreakResetsAfterGap(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	prog := emptyProgress()
	prog.CurrentStreak = 12
	prog.LongestStreak = 12
	prog.LastLogDate = "2026-03-07" // three days ago
	prog.MealsLogged = 40

	applyAction(prog, Action{Kind: ActionMealLogged, MealType: "snack"}, now)

	assert.Equal(t, 1, prog.CurrentStreak, "gap resets to 1, not 0")
	assert.Equal(t, 12, prog.LongestStreak)
	assert.Equal(t, "2026-03-10", prog.LastLogDate)
}

func TestApplyActionMonthStreakBonus(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	prog := emptyProgress()
	prog.CurrentStreak = 29
	prog.LongestStreak = 29
	prog.LastLogDate = "2026-03-09"
	prog.MealsLogged = 200

	points, badges := applyAction(prog, Action{Kind: ActionMealLogged, MealType: "lunch"}, now)

	assert.Equal(t, 30, prog.CurrentStreak)
	assert.Equal(t, int64(10+MonthStreakBonus), points)
	assert.Contains(t, badges, "streak_30")
}

func TestApplyActionMeals50ExactTransition(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	prog := emptyProgress()
	prog.MealsLogged = 49
	prog.LastLogDate = "2026-03-10"
	prog.Badges = []string{"first_meal"}

	_, badges := applyAction(prog, Action{Kind: ActionMealLogged, MealType: "lunch"}, now)
	assert.Equal(t, []string{"meals_50"}, badges, "badge fires exactly on the 49→50 transition")

	_, badges = applyAction(prog, Action{Kind: ActionMealLogged, MealType: "dinner"}, now)
	assert.Empty(t, badges, "51st meal earns nothing new")
	assert.Equal(t, []string{"first_meal", "meals_50"}, prog.Badges)
}

func TestApplyActionChallengePointsOverride(t *testing.T) {
	prog := emptyProgress()

	points, badges := applyAction(prog, Action{Kind: ActionChallengeCompleted, Points: 500}, time.Now())

	assert.Equal(t, int64(500), points, "explicit points replace the table default")
	assert.Equal(t, int64(500), prog.TotalPoints)
	assert.Equal(t, int64(1), prog.ChallengesCompleted)
	assert.Contains(t, badges, "first_challenge")
}

func TestApplyActionChallengeTableDefault(t *testing.T) {
	prog := emptyProgress()

	points, _ := applyAction(prog, Action{Kind: ActionChallengeCompleted}, time.Now())

	assert.Equal(t, int64(200), points)
}

func TestApplyActionUnknownKindIsNoOp(t *testing.T) {
	prog := emptyProgress()
	prog.TotalPoints = 120
	prog.Level = 1
	prog.MealsLogged = 3

	points, badges := applyAction(prog, Action{Kind: "mystery_event"}, time.Now())

	assert.Zero(t, points)
	assert.Nil(t, badges)
	assert.Equal(t, int64(120), prog.TotalPoints)
	assert.Equal(t, int64(3), prog.MealsLogged)
}

func TestApplyActionWearableBadgeIdempotent(t *testing.T) {
	prog := emptyProgress()

	points, badges := applyAction(prog, Action{Kind: ActionWearableConnected}, time.Now())
	assert.Equal(t, int64(50), points)
	assert.Equal(t, []string{"wearable_connected"}, badges)

	_, badges = applyAction(prog, Action{Kind: ActionWearableConnected}, time.Now())
	assert.Empty(t, badges, "reconnecting must not re-award the badge")
	assert.Equal(t, []string{"wearable_connected"}, prog.Badges)
	assert.Equal(t, int64(100), prog.TotalPoints, "points still accrue")
}

func TestApplyActionLevelRecomputedFromPoints(t *testing.T) {
	prog := emptyProgress()
	prog.TotalPoints = 990
	prog.Level = 1

	applyAction(prog, Action{Kind: ActionRecipeCreated}, time.Now())

	assert.Equal(t, int64(1040), prog.TotalPoints)
	assert.Equal(t, 2, prog.Level)
	assert.Equal(t, int64(1), prog.RecipesCreated)
}

// Invariants that must hold across any action sequence.
func TestApplyActionInvariants(t *testing.T) {
	prog := emptyProgress()
	day := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	actions := []Action{
		{Kind: ActionMealLogged, MealType: "breakfast", IsHealthy: true},
		{Kind: ActionRecipeCreated},
		{Kind: ActionMealLogged, MealType: "lunch"},
		{Kind: ActionWaterGoalMet},
		{Kind: ActionChallengeCompleted, Points: 350},
		{Kind: ActionWorkoutLogged},
		{Kind: ActionGoalAchieved},
		{Kind: ActionContentShared},
		{Kind: ActionPlanCompleted},
		{Kind: ActionProfileCompleted},
	}

	for i, action := range actions {
		before := prog.TotalPoints
		beforeBadges := len(prog.Badges)

		points, newBadges := applyAction(prog, action, day.AddDate(0, 0, i))

		assert.GreaterOrEqual(t, points, int64(0))
		assert.GreaterOrEqual(t, prog.TotalPoints, before, "points never go down")
		assert.Equal(t, int(prog.TotalPoints/1000)+1, prog.Level)
		assert.GreaterOrEqual(t, prog.LongestStreak, prog.CurrentStreak)
		assert.Equal(t, beforeBadges+len(newBadges), len(prog.Badges))

		seen := map[string]bool{}
		for _, key := range prog.Badges {
			assert.False(t, seen[key], "duplicate badge %s", key)
			seen[key] = true
		}
	}
}

func TestEnsureProgressRecordLazyCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)

	prog, err := svc.EnsureProgressRecord("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), prog.TotalPoints)
	assert.Equal(t, 1, prog.Level)
	assert.Empty(t, prog.Badges)

	again, err := svc.EnsureProgressRecord("user-1")
	require.NoError(t, err)
	assert.Equal(t, prog.ID, again.ID, "second call must reuse the row")
}

func TestAwardActionPersists(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)

	result, err := svc.AwardAction("user-1", Action{Kind: ActionMealLogged, MealType: "lunch"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.PointsEarned)
	assert.Equal(t, []string{"first_meal"}, result.NewBadges)

	var stored models.UserProgress
	require.NoError(t, db.Where("external_user_id = ?", "user-1").First(&stored).Error)
	assert.Equal(t, int64(10), stored.TotalPoints)
	assert.Equal(t, int64(1), stored.MealsLogged)
	assert.Equal(t, 1, stored.CurrentStreak)
	assert.Equal(t, []string{"first_meal"}, stored.Badges)
}

func TestAwardActionSameDayTwice(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)

	_, err := svc.AwardAction("user-1", Action{Kind: ActionMealLogged, MealType: "lunch"})
	require.NoError(t, err)
	result, err := svc.AwardAction("user-1", Action{Kind: ActionMealLogged, MealType: "dinner"})
	require.NoError(t, err)

	assert.Equal(t, int64(10), result.PointsEarned)
	assert.Equal(t, 1, result.Progress.CurrentStreak)
	assert.Equal(t, int64(2), result.Progress.MealsLogged)
	assert.Equal(t, int64(20), result.Progress.TotalPoints)
}

func TestGrantPointsSkipsCounterMilestones(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)

	prog, err := svc.GrantPoints("user-1", 5000, "migration backfill")
	require.NoError(t, err)

	assert.Equal(t, int64(5000), prog.TotalPoints)
	assert.Equal(t, 6, prog.Level)
	assert.Empty(t, prog.Badges, "bulk grant jumps over count milestones without awarding them")
}

func TestGrantPointsLandingExactlyOnLevelMilestone(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)

	prog, err := svc.GrantPoints("user-1", 9000, "contest prize")
	require.NoError(t, err)

	assert.Equal(t, 10, prog.Level)
	assert.Equal(t, []string{"level_10"}, prog.Badges)
}

func TestGrantPointsRejectsNonPositive(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressionService(db)

	_, err := svc.GrantPoints("user-1", 0, "noop")
	assert.Error(t, err)
}
