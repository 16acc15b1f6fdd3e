package services

import (
	"testing"

	"github.com/mkof14/dishcore-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeRulesAllHaveCatalogEntries(t *testing.T) {
	for _, rule := range models.BadgeRules {
		meta, ok := models.BadgeCatalog[rule.Key]
		assert.True(t, ok, "rule %s has no catalog entry", rule.Key)
		assert.Equal(t, rule.Key, meta.Key)
		assert.NotEmpty(t, meta.Name)
		assert.NotEmpty(t, meta.Icon)
	}
}

func TestBadgeCatalogHasNoOrphans(t *testing.T) {
	ruleKeys := map[string]bool{}
	for _, rule := range models.BadgeRules {
		assert.False(t, ruleKeys[rule.Key], "duplicate rule for %s", rule.Key)
		ruleKeys[rule.Key] = true
	}
	for key := range models.BadgeCatalog {
		assert.True(t, ruleKeys[key], "catalog entry %s has no rule", key)
	}
}

func TestBadgeRulesEvaluationOrder(t *testing.T) {
	// Counters must stay grouped in the documented order so a single update
	// appends multi-badge awards deterministically.
	wantOrder := []string{
		models.CounterMeals, models.CounterStreak, models.CounterRecipes,
		models.CounterChallenges, models.CounterWearable, models.CounterLevel,
	}
	rank := map[string]int{}
	for i, c := range wantOrder {
		rank[c] = i
	}

	prev := -1
	for _, rule := range models.BadgeRules {
		r, ok := rank[rule.Counter]
		require.True(t, ok, "unknown counter %s", rule.Counter)
		assert.GreaterOrEqual(t, r, prev, "counter %s out of order", rule.Counter)
		if r > prev {
			prev = r
		}
	}
}

func TestAwardBadgesAppendsInRuleOrder(t *testing.T) {
	prog := &models.UserProgress{
		ExternalUserID: "u1",
		MealsLogged:    1,
		CurrentStreak:  7,
		LongestStreak:  7,
		Level:          1,
	}

	earned := awardBadges(prog, ActionMealLogged)

	assert.Equal(t, []string{"first_meal", "streak_7"}, earned, "meal badges come before streak badges")
	assert.Equal(t, prog.Badges, earned)
}

func TestListUserBadgesPreservesEarnOrder(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.UserProgress{
		ID:             "p1",
		ExternalUserID: "u1",
		Level:          1,
		Badges:         []string{"streak_7", "first_meal"},
	}).Error)

	svc := NewBadgeService(db)
	badges, err := svc.ListUserBadges("u1")
	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, "streak_7", badges[0].Key)
	assert.Equal(t, "Week Warrior", badges[0].Name)
	assert.Equal(t, "first_meal", badges[1].Key)
}

func TestListUserBadgesNoRecord(t *testing.T) {
	db := newTestDB(t)
	svc := NewBadgeService(db)

	badges, err := svc.ListUserBadges("ghost")
	require.NoError(t, err)
	assert.Empty(t, badges)
}

func TestCatalogMatchesRuleCount(t *testing.T) {
	svc := NewBadgeService(nil)
	assert.Len(t, svc.Catalog(), len(models.BadgeRules))
}
