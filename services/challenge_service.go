package services

import (
	"errors"
	"time"

	"github.com/mkof14/dishcore-sub001/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errAlreadyCompleted = errors.New("already completed")

type ChallengeService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewChallengeService(db *gorm.DB, progression *ProgressionService) *ChallengeService {
	return &ChallengeService{DB: db, Progression: progression}
}

// CreateChallenge creates a challenge (admin). A future starts_at makes it
// scheduled; no starts_at leaves it draft until activated by hand.
func (s *ChallengeService) CreateChallenge(c *fiber.Ctx) error {
	type Req struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		Icon         string     `json:"icon"`
		RewardPoints int64      `json:"reward_points"`
		StartsAt     *time.Time `json:"starts_at"`
		EndsAt       *time.Time `json:"ends_at"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}
	if req.RewardPoints < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reward_points must be >= 0"})
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ends_at must be after starts_at"})
	}

	status := models.ChallengeStatusDraft
	if req.StartsAt != nil {
		if req.StartsAt.After(time.Now()) {
			status = models.ChallengeStatusScheduled
		} else {
			status = models.ChallengeStatusActive
		}
	}

	challenge := &models.Challenge{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Icon:         req.Icon,
		RewardPoints: req.RewardPoints,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Status:       status,
	}
	if err := s.DB.Create(challenge).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create challenge", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

// GetChallenges lists challenges, active ones by default (?status= overrides)
func (s *ChallengeService) GetChallenges(c *fiber.Ctx) error {
	status := c.Query("status", string(models.ChallengeStatusActive))

	var challenges []models.Challenge
	if err := s.DB.Where("status = ?", status).
		Order("created_at DESC").Limit(100).Find(&challenges).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list challenges", "cause": err.Error()})
	}
	return c.JSON(challenges)
}

// JoinChallenge enrolls the caller in an active challenge (idempotent: joining
// twice returns the existing enrollment)
func (s *ChallengeService) JoinChallenge(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	challengeID := c.Params("id")

	var challenge models.Challenge
	if err := s.DB.Where("id = ?", challengeID).First(&challenge).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "challenge not found"})
	}
	if challenge.Status != models.ChallengeStatusActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "challenge is not active"})
	}

	var existing models.UserChallenge
	err := s.DB.Where("external_user_id = ? AND challenge_id = ?", userID, challengeID).First(&existing).Error
	if err == nil {
		return c.JSON(existing)
	}
	if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error fetching enrollment", "cause": err.Error()})
	}

	enrollment := &models.UserChallenge{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		ChallengeID:    challengeID,
		Status:         "joined",
	}
	if err := s.DB.Create(enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join challenge", "cause": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

// CompleteChallenge marks the caller's enrollment completed and applies
// challenge_completed with the challenge's reward as the points override.
func (s *ChallengeService) CompleteChallenge(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	challengeID := c.Params("id")

	var result *AwardResult
	var enrollment models.UserChallenge
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.Where("id = ?", challengeID).First(&challenge).Error; err != nil {
			return err
		}

		if err := tx.Where("external_user_id = ? AND challenge_id = ?", userID, challengeID).First(&enrollment).Error; err != nil {
			return err
		}
		if enrollment.Status == "completed" {
			return errAlreadyCompleted
		}

		var err error
		result, err = s.Progression.AwardActionTx(tx, userID, Action{
			Kind:   ActionChallengeCompleted,
			Points: challenge.RewardPoints, // 0 falls back to the table default
		})
		if err != nil {
			return err
		}

		now := time.Now()
		enrollment.Status = "completed"
		enrollment.CompletedAt = &now
		enrollment.PointsEarned = result.PointsEarned
		return tx.Save(&enrollment).Error
	})
	if err == errAlreadyCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "challenge already completed"})
	}
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "challenge or enrollment not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to complete challenge", "cause": err.Error()})
	}

	return c.JSON(fiber.Map{
		"enrollment":    enrollment,
		"points_earned": result.PointsEarned,
		"new_badges":    result.NewBadges,
		"progress":      result.Progress,
	})
}

// GetMyChallenges lists the caller's enrollments with challenge details
func (s *ChallengeService) GetMyChallenges(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var enrollments []models.UserChallenge
	if err := s.DB.Where("external_user_id = ?", userID).
		Order("created_at DESC").Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list enrollments", "cause": err.Error()})
	}

	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.ChallengeID)
	}
	challengesByID := map[string]models.Challenge{}
	if len(ids) > 0 {
		var challenges []models.Challenge
		if err := s.DB.Where("id IN ?", ids).Find(&challenges).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load challenges", "cause": err.Error()})
		}
		for _, ch := range challenges {
			challengesByID[ch.ID] = ch
		}
	}

	response := make([]fiber.Map, 0, len(enrollments))
	for _, e := range enrollments {
		ch := challengesByID[e.ChallengeID]
		response = append(response, fiber.Map{
			"enrollment": e,
			"challenge":  ch,
		})
	}
	return c.JSON(response)
}
