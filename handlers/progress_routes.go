// handlers/progress_routes.go
package handlers

import (
	"strconv"

	"github.com/mkof14/dishcore-sub001/middleware"
	"github.com/mkof14/dishcore-sub001/services"

	"github.com/gofiber/fiber/v2"
)

// oneShotKinds are the flat action kinds the frontend may post directly.
// Meals, recipes, plans and challenges have dedicated endpoints that create
// their own rows, so those kinds are rejected here.
var oneShotKinds = map[services.ActionKind]bool{
	services.ActionGoalAchieved:      true,
	services.ActionContentShared:     true,
	services.ActionWaterGoalMet:      true,
	services.ActionWorkoutLogged:     true,
	services.ActionWearableConnected: true,
	services.ActionProfileCompleted:  true,
}

func SetupProgressionRoutes(app *fiber.App, progressionService *services.ProgressionService, badgeService *services.BadgeService) {
	// 🔐 Secured routes — require user context (userID) set by Gateway headers
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prog, err := progressionService.EnsureProgressRecord(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progress record",
				"cause": err.Error(),
			})
		}

		badges, err := badgeService.ListUserBadges(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load badges",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"id":                   prog.ID,
			"total_points":         prog.TotalPoints,
			"level":                prog.Level,
			"current_streak":       prog.CurrentStreak,
			"longest_streak":       prog.LongestStreak,
			"last_log_date":        prog.LastLogDate,
			"meals_logged":         prog.MealsLogged,
			"recipes_created":      prog.RecipesCreated,
			"plans_completed":      prog.PlansCompleted,
			"challenges_completed": prog.ChallengesCompleted,
			"badges":               badges,
		})
	})

	securedGroup.Get("/user/progress/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		badges, err := badgeService.ListUserBadges(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get badges",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"earned":  badges,
			"catalog": badgeService.Catalog(),
		})
	})

	securedGroup.Get("/user/progress/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))
		history, err := progressionService.GetUserHistory(userID, page, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get history",
				"cause": err.Error(),
			})
		}
		return c.JSON(history)
	})

	securedGroup.Post("/user/progress/actions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var action services.Action
		if err := c.BodyParser(&action); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if !oneShotKinds[action.Kind] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "kind must be one of goal_achieved, content_shared, water_goal_met, workout_logged, wearable_connected, profile_completed",
			})
		}

		result, err := progressionService.AwardAction(userID, action)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to apply action",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			Points int64  `json:"points" validate:"required,min=1"`
			Reason string `json:"reason" validate:"max=255"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		prog, err := progressionService.GrantPoints(req.UserID, req.Points, req.Reason)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "points grant failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message":      "points granted successfully",
			"user_id":      req.UserID,
			"points":       req.Points,
			"total_points": prog.TotalPoints,
			"level":        prog.Level,
		})
	})
}
