package services

import (
	"path/filepath"
	"time"

	"github.com/mkof14/dishcore-sub001/models"
	"github.com/mkof14/dishcore-sub001/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MealService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewMealService(db *gorm.DB, progression *ProgressionService) *MealService {
	return &MealService{DB: db, Progression: progression}
}

var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// LogMeal creates a MealLog and applies the meal_logged ledger update in one
// transaction. The response carries points_earned and new_badges so the client
// can surface notifications.
func (s *MealService) LogMeal(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	type Req struct {
		MealType  string  `json:"meal_type"`
		DishName  string  `json:"dish_name"`
		DishID    *string `json:"dish_id,omitempty"`
		Calories  float64 `json:"calories"`
		Protein   float64 `json:"protein"`
		Carbs     float64 `json:"carbs"`
		Fat       float64 `json:"fat"`
		IsHealthy bool    `json:"is_healthy"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if !validMealTypes[req.MealType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "meal_type must be breakfast, lunch, dinner or snack"})
	}

	mealLog := &models.MealLog{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		DishID:         req.DishID,
		MealType:       req.MealType,
		DishName:       req.DishName,
		Calories:       req.Calories,
		Protein:        req.Protein,
		Carbs:          req.Carbs,
		Fat:            req.Fat,
		IsHealthy:      req.IsHealthy,
		LoggedAt:       time.Now(),
	}

	// When the log references a stored dish, snapshot its nutrition if the
	// client sent none (free-form values win when present).
	if req.DishID != nil {
		var dish models.Dish
		if err := s.DB.Where("id = ?", *req.DishID).First(&dish).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dish not found"})
		}
		if mealLog.DishName == "" {
			mealLog.DishName = dish.Title
		}
		if mealLog.Calories == 0 && mealLog.Protein == 0 && mealLog.Carbs == 0 && mealLog.Fat == 0 {
			mealLog.Calories = dish.Calories
			mealLog.Protein = dish.Protein
			mealLog.Carbs = dish.Carbs
			mealLog.Fat = dish.Fat
		}
		if dish.IsHealthy {
			mealLog.IsHealthy = true
		}
	}

	var result *AwardResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mealLog).Error; err != nil {
			return err
		}

		var err error
		result, err = s.Progression.AwardActionTx(tx, userID, Action{
			Kind:      ActionMealLogged,
			IsHealthy: mealLog.IsHealthy,
			MealType:  mealLog.MealType,
		})
		if err != nil {
			return err
		}

		mealLog.PointsEarned = result.PointsEarned
		return tx.Save(mealLog).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to log meal", "cause": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"meal":          mealLog,
		"points_earned": result.PointsEarned,
		"new_badges":    result.NewBadges,
		"progress":      result.Progress,
	})
}

// GetMeals lists the user's meal logs, newest first. ?date=yyyy-MM-dd filters
// to one calendar day.
func (s *MealService) GetMeals(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	db := s.DB.Where("external_user_id = ?", userID)
	if date := c.Query("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be yyyy-MM-dd"})
		}
		dayStart, _ := time.Parse("2006-01-02", date)
		db = db.Where("logged_at >= ? AND logged_at < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}

	var meals []models.MealLog
	if err := db.Order("logged_at DESC").Limit(200).Find(&meals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list meals", "cause": err.Error()})
	}
	return c.JSON(meals)
}

// GetDailySummary aggregates calories/macros for one day (defaults to today)
func (s *MealService) GetDailySummary(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	date := c.Query("date", time.Now().Format("2006-01-02"))
	dayStart, err := time.Parse("2006-01-02", date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be yyyy-MM-dd"})
	}

	type Summary struct {
		Meals    int64   `json:"meals"`
		Calories float64 `json:"calories"`
		Protein  float64 `json:"protein"`
		Carbs    float64 `json:"carbs"`
		Fat      float64 `json:"fat"`
	}
	var summary Summary
	if err := s.DB.Model(&models.MealLog{}).
		Select("COUNT(*) AS meals, COALESCE(SUM(calories),0) AS calories, COALESCE(SUM(protein),0) AS protein, COALESCE(SUM(carbs),0) AS carbs, COALESCE(SUM(fat),0) AS fat").
		Where("external_user_id = ? AND logged_at >= ? AND logged_at < ?", userID, dayStart, dayStart.AddDate(0, 0, 1)).
		Scan(&summary).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build summary", "cause": err.Error()})
	}

	return c.JSON(fiber.Map{"date": date, "summary": summary})
}

// UploadMealPhoto attaches a photo to an existing meal log. Meal photos stay
// local (private, per-user); only dish photos go to the public R2 bucket.
func (s *MealService) UploadMealPhoto(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	mealID := c.Params("id")

	var mealLog models.MealLog
	if err := s.DB.Where("id = ? AND external_user_id = ?", mealID, userID).First(&mealLog).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "meal log not found"})
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
	localPath := utils.GetUploadPath("meals/" + uuid.NewString() + ext)
	if err := utils.SaveFile(photo, localPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save photo"})
	}

	mealLog.PhotoURL = "/" + localPath
	if err := s.DB.Save(&mealLog).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update meal log", "cause": err.Error()})
	}
	return c.JSON(mealLog)
}

// DeleteMeal removes a meal log. Points already earned are not clawed back —
// the ledger never subtracts.
func (s *MealService) DeleteMeal(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	mealID := c.Params("id")

	res := s.DB.Where("id = ? AND external_user_id = ?", mealID, userID).Delete(&models.MealLog{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete meal", "cause": res.Error.Error()})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "meal log not found"})
	}
	return c.JSON(fiber.Map{"message": "meal log deleted"})
}

// CreateMealPlan stores a plan produced by the external generator
func (s *MealService) CreateMealPlan(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	type Req struct {
		Title        string               `json:"title"`
		Days         []models.MealPlanDay `json:"days"`
		ShoppingList []string             `json:"shopping_list"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.Title == "" || len(req.Days) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title and days are required"})
	}

	plan := &models.MealPlan{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Title:          req.Title,
		Days:           req.Days,
		ShoppingList:   req.ShoppingList,
		Status:         "active",
	}
	if err := s.DB.Create(plan).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create plan", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// GetMealPlans lists the user's plans, newest first
func (s *MealService) GetMealPlans(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var plans []models.MealPlan
	if err := s.DB.Where("external_user_id = ?", userID).
		Order("created_at DESC").Limit(50).Find(&plans).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list plans", "cause": err.Error()})
	}
	return c.JSON(plans)
}

// CompleteMealPlan marks a plan completed and applies plan_completed to the
// ledger. Completing twice is rejected so the award fires once.
func (s *MealService) CompleteMealPlan(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	planID := c.Params("id")

	var result *AwardResult
	var plan models.MealPlan
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND external_user_id = ?", planID, userID).First(&plan).Error; err != nil {
			return err
		}
		if plan.Status == "completed" {
			return errAlreadyCompleted
		}

		now := time.Now()
		plan.Status = "completed"
		plan.CompletedAt = &now
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}

		var err error
		result, err = s.Progression.AwardActionTx(tx, userID, Action{Kind: ActionPlanCompleted})
		return err
	})
	if err == errAlreadyCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "plan already completed"})
	}
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "plan not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to complete plan", "cause": err.Error()})
	}

	return c.JSON(fiber.Map{
		"plan":          plan,
		"points_earned": result.PointsEarned,
		"new_badges":    result.NewBadges,
	})
}
