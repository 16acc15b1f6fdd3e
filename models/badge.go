package models

// Badge: static display metadata for one earnable badge
type Badge struct {
	Key         string `json:"key"`  // e.g., "first_meal", "streak_7"
	Name        string `json:"name"` // "First Bite", "Week Warrior"
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// BadgeCatalog maps badge key → display metadata. Unlock rules live in
// BadgeRules below so every key and its milestone sit next to each other.
var BadgeCatalog = map[string]Badge{
	"first_meal":        {Key: "first_meal", Name: "First Bite", Description: "Logged your first meal", Icon: "🍽️"},
	"meals_50":          {Key: "meals_50", Name: "Half Century", Description: "Logged 50 meals", Icon: "🥗"},
	"meals_100":         {Key: "meals_100", Name: "Centurion", Description: "Logged 100 meals", Icon: "🍲"},
	"meals_500":         {Key: "meals_500", Name: "Iron Appetite", Description: "Logged 500 meals", Icon: "🏆"},
	"streak_7":          {Key: "streak_7", Name: "Week Warrior", Description: "Logged meals 7 days in a row", Icon: "🔥"},
	"streak_30":         {Key: "streak_30", Name: "Habit Builder", Description: "Logged meals 30 days in a row", Icon: "📅"},
	"streak_100":        {Key: "streak_100", Name: "Unstoppable", Description: "Logged meals 100 days in a row", Icon: "⚡"},
	"recipes_10":        {Key: "recipes_10", Name: "Home Chef", Description: "Created 10 recipes", Icon: "👨‍🍳"},
	"recipes_50":        {Key: "recipes_50", Name: "Master Chef", Description: "Created 50 recipes", Icon: "⭐"},
	"first_challenge":   {Key: "first_challenge", Name: "Challenger", Description: "Completed your first challenge", Icon: "🎯"},
	"challenges_10":     {Key: "challenges_10", Name: "Challenge Master", Description: "Completed 10 challenges", Icon: "🥇"},
	"wearable_connected": {Key: "wearable_connected", Name: "Connected", Description: "Linked a wearable device", Icon: "⌚"},
	"level_10":          {Key: "level_10", Name: "Rising Star", Description: "Reached level 10", Icon: "🌟"},
	"level_25":          {Key: "level_25", Name: "Nutrition Pro", Description: "Reached level 25", Icon: "💎"},
	"level_50":          {Key: "level_50", Name: "Legend", Description: "Reached level 50", Icon: "👑"},
}

// Counter names a BadgeRule can watch.
const (
	CounterMeals      = "meals"
	CounterStreak     = "streak"
	CounterRecipes    = "recipes"
	CounterChallenges = "challenges"
	CounterWearable   = "wearable" // flag, not a counter: fires on the wearable_connected action
	CounterLevel      = "level"
)

// BadgeRule unlocks Key when the watched counter lands exactly on Milestone.
// Milestones are equality checks: a counter bulk-jumped past a milestone (e.g.,
// by an admin grant) does not retroactively earn the badge.
type BadgeRule struct {
	Key       string
	Counter   string
	Milestone int64
}

// BadgeRules are evaluated in this fixed order so awards are deterministic:
// meals, streak, recipes, challenges, wearable, level.
var BadgeRules = []BadgeRule{
	{Key: "first_meal", Counter: CounterMeals, Milestone: 1},
	{Key: "meals_50", Counter: CounterMeals, Milestone: 50},
	{Key: "meals_100", Counter: CounterMeals, Milestone: 100},
	{Key: "meals_500", Counter: CounterMeals, Milestone: 500},
	{Key: "streak_7", Counter: CounterStreak, Milestone: 7},
	{Key: "streak_30", Counter: CounterStreak, Milestone: 30},
	{Key: "streak_100", Counter: CounterStreak, Milestone: 100},
	{Key: "recipes_10", Counter: CounterRecipes, Milestone: 10},
	{Key: "recipes_50", Counter: CounterRecipes, Milestone: 50},
	{Key: "first_challenge", Counter: CounterChallenges, Milestone: 1},
	{Key: "challenges_10", Counter: CounterChallenges, Milestone: 10},
	{Key: "wearable_connected", Counter: CounterWearable, Milestone: 1},
	{Key: "level_10", Counter: CounterLevel, Milestone: 10},
	{Key: "level_25", Counter: CounterLevel, Milestone: 25},
	{Key: "level_50", Counter: CounterLevel, Milestone: 50},
}
