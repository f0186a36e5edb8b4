package controllers

import (
	"strconv"
	"strings"
	"time"

	"platform/backend/config"
	"platform/backend/middleware"
	"platform/backend/services"
	"platform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	gamify := services.NewGamificationService(db, cfg.Location())
	return &ProgressController{
		DB:       db,
		Cfg:      cfg,
		Progress: services.NewProgressService(db, gamify),
	}
}

type heartbeatInput struct {
	LastPositionSeconds   int   `json:"last_position_seconds" validate:"min=0"`
	WatchTimeDeltaSeconds int64 `json:"watch_time_delta_seconds" validate:"min=0"`
}

// SyncHeartbeat records a playback heartbeat: the resume position is
// last-writer-wins, the watch-time delta accumulates.
func (pc *ProgressController) SyncHeartbeat(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil || lessonID <= 0 {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input heartbeatInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ValidationFailed(c, err.Error())
	}

	err = pc.Progress.SyncHeartbeat(userID, uint(lessonID), input.LastPositionSeconds, input.WatchTimeDeltaSeconds)
	if err != nil {
		return serviceError(c, err)
	}

	progress, err := pc.Progress.LessonProgressFor(userID, uint(lessonID))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lesson_id":             progress.LessonID,
		"last_position_seconds": progress.LastPositionSeconds,
		"watch_time_seconds":    progress.WatchTimeSeconds,
		"completed":             progress.Completed,
	})
}

// MarkComplete flags the lesson as completed. Calling it twice is the same
// as calling it once; only the first call awards XP.
func (pc *ProgressController) MarkComplete(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil || lessonID <= 0 {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	if err := pc.Progress.MarkComplete(userID, uint(lessonID), time.Now()); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lesson_id": lessonID,
		"completed": true,
	})
}

// GetLessonProgress returns the stored per-lesson progress for resume UX.
func (pc *ProgressController) GetLessonProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil || lessonID <= 0 {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	progress, err := pc.Progress.LessonProgressFor(userID, uint(lessonID))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"lesson_id":             progress.LessonID,
		"last_position_seconds": progress.LastPositionSeconds,
		"watch_time_seconds":    progress.WatchTimeSeconds,
		"completed":             progress.Completed,
	})
}

// GetCompletionPercent computes module or course completion for the caller.
func (pc *ProgressController) GetCompletionPercent(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	scopeType := strings.ToUpper(c.Params("scopeType"))
	scopeID, err := strconv.Atoi(c.Params("scopeId"))
	if err != nil || scopeID <= 0 {
		return utils.BadRequest(c, "Invalid scope ID")
	}

	percent, err := pc.Progress.CompletionPercent(userID, scopeType, uint(scopeID))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"scope_type":         scopeType,
		"scope_id":           scopeID,
		"completion_percent": percent,
	})
}
