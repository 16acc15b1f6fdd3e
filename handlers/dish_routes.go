// handlers/dish_routes.go
package handlers

import (
	"github.com/mkof14/dishcore-sub001/middleware"
	"github.com/mkof14/dishcore-sub001/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDishRoutes(app *fiber.App, dishService *services.DishService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/dishes", dishService.CreateDish)
	secured.Get("/dishes", dishService.GetDishes)
	secured.Get("/dishes/:slug", dishService.GetDishBySlug)
	secured.Put("/dishes/:id", dishService.UpdateDish)
	secured.Patch("/dishes/:id", dishService.UpdateDish)
	secured.Post("/dishes/:id/photo", dishService.UploadDishPhoto)
	secured.Delete("/dishes/:id", dishService.DeleteDish)
}
