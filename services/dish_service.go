package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mkof14/dishcore-sub001/models"
	"github.com/mkof14/dishcore-sub001/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type DishService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewDishService(db *gorm.DB, progression *ProgressionService) *DishService {
	return &DishService{DB: db, Progression: progression}
}

var titleCaser = cases.Title(language.English)

// dishSlug builds a unique slug from the title; on collision a short uuid
// fragment is appended.
func (s *DishService) dishSlug(tx *gorm.DB, title string) string {
	base := slug.Make(title)
	var count int64
	tx.Model(&models.Dish{}).Where("slug = ?", base).Count(&count)
	if count == 0 {
		return base
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

// CreateDish stores a new recipe and applies recipe_created to the ledger
func (s *DishService) CreateDish(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	type Req struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Ingredients  []string `json:"ingredients"`
		Instructions string   `json:"instructions"`
		Servings     int      `json:"servings"`
		PrepMinutes  int      `json:"prep_minutes"`
		Calories     float64  `json:"calories"`
		Protein      float64  `json:"protein"`
		Carbs        float64  `json:"carbs"`
		Fat          float64  `json:"fat"`
		IsHealthy    bool     `json:"is_healthy"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if req.Servings < 1 {
		req.Servings = 1
	}

	dish := &models.Dish{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Title:          titleCaser.String(req.Title),
		Description:    req.Description,
		Ingredients:    req.Ingredients,
		Instructions:   req.Instructions,
		Servings:       req.Servings,
		PrepMinutes:    req.PrepMinutes,
		Calories:       req.Calories,
		Protein:        req.Protein,
		Carbs:          req.Carbs,
		Fat:            req.Fat,
		IsHealthy:      req.IsHealthy,
	}

	var result *AwardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		dish.Slug = s.dishSlug(tx, dish.Title)
		if err := tx.Create(dish).Error; err != nil {
			return err
		}
		var err error
		result, err = s.Progression.AwardActionTx(tx, userID, Action{Kind: ActionRecipeCreated})
		return err
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create dish", "cause": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"dish":          dish,
		"points_earned": result.PointsEarned,
		"new_badges":    result.NewBadges,
	})
}

// GetDishes lists dishes, optionally filtered by ?q= (title search) and
// ?mine=true (only the caller's recipes)
func (s *DishService) GetDishes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	db := s.DB.Model(&models.Dish{}).Limit(100)

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		searchTerm := "%" + strings.ToLower(query) + "%"
		db = db.Where("LOWER(title) LIKE ?", searchTerm)
	}
	if c.Query("mine") == "true" {
		db = db.Where("external_user_id = ?", userID)
	}

	var dishes []models.Dish
	if err := db.Order("created_at DESC").Find(&dishes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list dishes", "cause": err.Error()})
	}
	return c.JSON(dishes)
}

// GetDishBySlug fetches one dish by its slug
func (s *DishService) GetDishBySlug(c *fiber.Ctx) error {
	var dish models.Dish
	if err := s.DB.Where("slug = ?", c.Params("slug")).First(&dish).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "dish not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching dish", "cause": err.Error()})
	}
	return c.JSON(dish)
}

// UpdateDish edits a dish owned by the caller. Editing does not re-award
// recipe points.
func (s *DishService) UpdateDish(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var dish models.Dish
	if err := s.DB.Where("id = ? AND external_user_id = ?", c.Params("id"), userID).First(&dish).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "dish not found"})
	}

	type Req struct {
		Title        *string   `json:"title"`
		Description  *string   `json:"description"`
		Ingredients  *[]string `json:"ingredients"`
		Instructions *string   `json:"instructions"`
		Servings     *int      `json:"servings"`
		PrepMinutes  *int      `json:"prep_minutes"`
		Calories     *float64  `json:"calories"`
		Protein      *float64  `json:"protein"`
		Carbs        *float64  `json:"carbs"`
		Fat          *float64  `json:"fat"`
		IsHealthy    *bool     `json:"is_healthy"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		dish.Title = titleCaser.String(strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		dish.Description = *req.Description
	}
	if req.Ingredients != nil {
		dish.Ingredients = *req.Ingredients
	}
	if req.Instructions != nil {
		dish.Instructions = *req.Instructions
	}
	if req.Servings != nil && *req.Servings >= 1 {
		dish.Servings = *req.Servings
	}
	if req.PrepMinutes != nil {
		dish.PrepMinutes = *req.PrepMinutes
	}
	if req.Calories != nil {
		dish.Calories = *req.Calories
	}
	if req.Protein != nil {
		dish.Protein = *req.Protein
	}
	if req.Carbs != nil {
		dish.Carbs = *req.Carbs
	}
	if req.Fat != nil {
		dish.Fat = *req.Fat
	}
	if req.IsHealthy != nil {
		dish.IsHealthy = *req.IsHealthy
	}

	if err := s.DB.Save(&dish).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update dish", "cause": err.Error()})
	}
	return c.JSON(dish)
}

// UploadDishPhoto uploads a recipe photo to R2 (small, public asset) and
// stores the CDN URL
func (s *DishService) UploadDishPhoto(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var dish models.Dish
	if err := s.DB.Where("id = ? AND external_user_id = ?", c.Params("id"), userID).First(&dish).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "dish not found"})
	}

	photo, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo is required"})
	}
	if photo.Size > 10*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo too large (max 10MB)"})
	}

	ext := filepath.Ext(photo.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "dishes/" + uuid.NewString() + ext
	photoURL, err := utils.UploadFileToR2(photo, key)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload photo to R2"})
	}

	dish.PhotoURL = photoURL
	if err := s.DB.Save(&dish).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update dish", "cause": err.Error()})
	}
	return c.JSON(dish)
}

// DeleteDish soft-deletes a dish owned by the caller. Existing meal logs keep
// their nutrition snapshot.
func (s *DishService) DeleteDish(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res := s.DB.Where("id = ? AND external_user_id = ?", c.Params("id"), userID).Delete(&models.Dish{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete dish", "cause": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "dish not found"})
	}
	return c.JSON(fiber.Map{"message": "dish deleted"})
}
