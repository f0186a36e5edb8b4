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

type QuizController struct {
	DB   *gorm.DB
	Cfg  *config.Config
	Quiz *services.QuizService
}

func NewQuizController(db *gorm.DB, cfg *config.Config) *QuizController {
	gamify := services.NewGamificationService(db, cfg.Location())
	return &QuizController{
		DB:   db,
		Cfg:  cfg,
		Quiz: services.NewQuizService(db, gamify),
	}
}

type answerInput struct {
	QuestionID uint              `json:"question_id" validate:"required"`
	Value      string            `json:"value"`
	Pairs      map[string]string `json:"pairs"`
	Sequence   []string          `json:"sequence"`
}

// Answers may be empty: a fully-unanswered submission is still an attempt
// and scores every gradable question as incorrect.
type submitQuizInput struct {
	Answers []answerInput `json:"answers" validate:"dive"`
}

// SubmitQuiz evaluates a submitted answer set and stores an immutable
// result row. A resubmission is a retake, never a mutation.
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil || quizID <= 0 {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input submitQuizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ValidationFailed(c, err.Error())
	}

	answers := make(map[uint]services.Answer, len(input.Answers))
	for _, a := range input.Answers {
		answers[a.QuestionID] = services.Answer{
			Value:    a.Value,
			Pairs:    a.Pairs,
			Sequence: a.Sequence,
		}
	}

	eval, result, err := qc.Quiz.SubmitQuiz(userID, uint(quizID), answers, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"score_percent":            eval.ScorePercent,
		"passed":                   eval.Passed,
		"per_question_correctness": eval.PerQuestion,
		"result_id":                result.ID,
		"submitted_at":             result.SubmittedAt,
	})
}

// GetQuizAnalytics lists every user's attempts for a quiz. Teacher/admin
// only.
func (qc *QuizController) GetQuizAnalytics(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil || quizID <= 0 {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var results []models.QuizResult
	if err := qc.DB.Where("quiz_id = ?", quizID).Order("submitted_at DESC").Find(&results).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	rows := make([]fiber.Map, 0, len(results))
	for _, r := range results {
		var user models.User
		if err := qc.DB.First(&user, r.UserID).Error; err != nil {
			continue
		}
		rows = append(rows, fiber.Map{
			"user_id":       user.ID,
			"username":      user.Username,
			"score_percent": r.ScorePercent,
			"passed":        r.Passed,
			"submitted_at":  r.SubmittedAt,
		})
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"analytics": rows,
	})
}

// GetResults lists the caller's attempts for a quiz, newest first.
func (qc *QuizController) GetResults(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil || quizID <= 0 {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	results, err := qc.Quiz.ResultsFor(userID, uint(quizID))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"results": results,
	})
}
