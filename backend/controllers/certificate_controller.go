package controllers

import (
	"time"

	"platform/backend/config"
	"platform/backend/middleware"
	"platform/backend/services"
	"platform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CertificateController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Certificates *services.CertificateService
}

func NewCertificateController(db *gorm.DB, cfg *config.Config) *CertificateController {
	gamify := services.NewGamificationService(db, cfg.Location())
	progress := services.NewProgressService(db, gamify)
	return &CertificateController{
		DB:           db,
		Cfg:          cfg,
		Certificates: services.NewCertificateService(db, progress),
	}
}

type issueCertificateInput struct {
	TargetType string `json:"target_type" validate:"required,oneof=MODULE COURSE"`
	TargetID   uint   `json:"target_id" validate:"required,min=1"`
}

// IssueCertificate issues (or returns) the caller's certificate for a
// module or course. Idempotent: repeating the request returns the same code
// and issue date.
func (cc *CertificateController) IssueCertificate(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input issueCertificateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.ValidationFailed(c, err.Error())
	}

	cert, err := cc.Certificates.Issue(userID, input.TargetType, input.TargetID, time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"verification_code": cert.VerificationCode,
		"target_type":       cert.TargetType,
		"target_id":         cert.TargetID,
		"issued_at":         cert.IssuedAt,
	})
}

// GetCertificates lists the caller's certificates.
func (cc *CertificateController) GetCertificates(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	certs, err := cc.Certificates.ListFor(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"certificates": certs,
	})
}

// VerifyCertificate is the public authenticity lookup. No auth; an unknown
// or malformed code is a typed not-found, never an exception.
func (cc *CertificateController) VerifyCertificate(c *fiber.Ctx) error {
	view, err := cc.Certificates.Verify(c.Params("code"))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, view)
}
