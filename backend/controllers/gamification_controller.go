package controllers

import (
	"strconv"
	"time"

	"platform/backend/config"
	"platform/backend/middleware"
	"platform/backend/models"
	"platform/backend/services"
	"platform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GamificationController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Gamify      *services.GamificationService
	Leaderboard *services.LeaderboardService
}

func NewGamificationController(db *gorm.DB, cfg *config.Config) *GamificationController {
	return &GamificationController{
		DB:          db,
		Cfg:         cfg,
		Gamify:      services.NewGamificationService(db, cfg.Location()),
		Leaderboard: services.NewLeaderboardService(db),
	}
}

// GetSnapshot returns the caller's XP, level, streak and badges.
func (gc *GamificationController) GetSnapshot(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	snapshot, err := gc.Gamify.Snapshot(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, snapshot)
}

type activityInput struct {
	ActionType string `json:"action_type" validate:"required,oneof=login forum_post"`
}

// ReportActivity lets external collaborators (auth frontend, forum) report
// qualifying activity the engine cannot observe itself. Lesson completions
// and quiz submissions are logged internally and are not accepted here.
func (gc *GamificationController) ReportActivity(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input activityInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ValidationFailed(c, err.Error())
	}

	if err := gc.Gamify.RecordActivity(userID, input.ActionType, 0, time.Now()); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"recorded": input.ActionType,
	})
}

// GetLeaderboard returns the ranked projection, optionally scoped to one
// course's enrolled users.
func (gc *GamificationController) GetLeaderboard(c *fiber.Ctx) error {
	var courseID *uint
	if raw := c.Query("course_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return utils.BadRequest(c, "Invalid course ID")
		}
		var course models.Course
		if err := gc.DB.First(&course, parsed).Error; err != nil {
			return utils.NotFound(c, "Course not found")
		}
		id := uint(parsed)
		courseID = &id
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	entries, err := gc.Leaderboard.Leaderboard(courseID, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"leaderboard": entries,
	})
}
