package controllers

import (
	"platform/backend/config"
	"platform/backend/middleware"
	"platform/backend/services"
	"platform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Enrollments *services.EnrollmentService
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config) *EnrollmentController {
	return &EnrollmentController{
		DB:          db,
		Cfg:         cfg,
		Enrollments: services.NewEnrollmentService(db),
	}
}

type enrollInput struct {
	CourseID uint `json:"course_id" validate:"required,min=1"`
}

// Enroll creates the caller's enrollment in a course. Repeating the request
// returns the existing enrollment.
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input enrollInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ValidationFailed(c, err.Error())
	}

	enrollment, err := ec.Enrollments.Enroll(userID, input.CourseID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"enrollment": enrollment,
	})
}

// GetEnrollments lists the caller's enrollments.
func (ec *EnrollmentController) GetEnrollments(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	enrollments, err := ec.Enrollments.ListFor(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"enrollments": enrollments,
	})
}
