// handlers/challenge_routes.go
package handlers

import (
	"github.com/mkof14/dishcore-sub001/middleware"
	"github.com/mkof14/dishcore-sub001/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/challenges", challengeService.GetChallenges)
	secured.Get("/challenges/mine", challengeService.GetMyChallenges)
	secured.Post("/challenges/:id/join", challengeService.JoinChallenge)
	secured.Post("/challenges/:id/complete", challengeService.CompleteChallenge)

	// Admin endpoints
	admin := app.Group("/s/admin", middleware.UserContextMiddleware())
	admin.Post("/challenges", challengeService.CreateChallenge)
}
