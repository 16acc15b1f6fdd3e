// handlers/meal_routes.go
package handlers

import (
	"github.com/mkof14/dishcore-sub001/middleware"
	"github.com/mkof14/dishcore-sub001/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMealRoutes(app *fiber.App, mealService *services.MealService) {
	// 🔐 All meal routes require user context (userID), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/meals", mealService.LogMeal)
	secured.Get("/meals", mealService.GetMeals)
	secured.Get("/meals/summary", mealService.GetDailySummary)
	secured.Post("/meals/:id/photo", mealService.UploadMealPhoto)
	secured.Delete("/meals/:id", mealService.DeleteMeal)

	// Meal plans (generation is external; we store, list and score completion)
	secured.Post("/meal-plans", mealService.CreateMealPlan)
	secured.Get("/meal-plans", mealService.GetMealPlans)
	secured.Post("/meal-plans/:id/complete", mealService.CompleteMealPlan)
}
