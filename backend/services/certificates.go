package services

import (
	"errors"
	"time"

	"platform/backend/models"
	"platform/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Certificate score bar: the best attempt at every quiz inside the target
// must reach this.
const certificateMinQuizScore = 80

const codeGenerationAttempts = 5

type CertificatePublicView struct {
	StudentName      string    `json:"student_name"`
	TargetType       string    `json:"target_type"`
	TargetTitle      string    `json:"target_title"`
	VerificationCode string    `json:"verification_code"`
	IssuedAt         time.Time `json:"issued_at"`
}

type CertificateService struct {
	DB       *gorm.DB
	Progress *ProgressService
}

func NewCertificateService(db *gorm.DB, progress *ProgressService) *CertificateService {
	return &CertificateService{DB: db, Progress: progress}
}

// quizIDsInModule collects the quizzes attached to a module's lessons.
func (cs *CertificateService) quizIDsInModule(moduleID uint) ([]uint, error) {
	var ids []uint
	err := cs.DB.Model(&models.Quiz{}).
		Joins("JOIN lessons ON lessons.id = quizzes.lesson_id").
		Where("lessons.module_id = ?", moduleID).
		Pluck("quizzes.id", &ids).Error
	return ids, err
}

// moduleEligible requires 100% lesson completion and, for every quiz in the
// module, a best attempt of at least certificateMinQuizScore.
func (cs *CertificateService) moduleEligible(userID, moduleID uint) (bool, error) {
	percent, err := cs.Progress.CompletionPercent(userID, models.TargetModule, moduleID)
	if err != nil {
		return false, err
	}
	if percent != 100 {
		return false, nil
	}

	quizIDs, err := cs.quizIDsInModule(moduleID)
	if err != nil {
		return false, err
	}
	for _, quizID := range quizIDs {
		var best int
		err := cs.DB.Model(&models.QuizResult{}).
			Where("user_id = ? AND quiz_id = ?", userID, quizID).
			Select("COALESCE(MAX(score_percent), -1)").
			Scan(&best).Error
		if err != nil {
			return false, err
		}
		if best < certificateMinQuizScore {
			return false, nil
		}
	}
	return true, nil
}

// eligible dispatches on target type. A course is eligible only when every
// one of its modules individually is; a course without modules never is.
func (cs *CertificateService) eligible(userID uint, targetType string, targetID uint) (bool, error) {
	switch targetType {
	case models.TargetModule:
		var module models.CourseModule
		if err := cs.DB.First(&module, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, ErrNotFound
			}
			return false, err
		}
		return cs.moduleEligible(userID, targetID)
	case models.TargetCourse:
		var course models.Course
		if err := cs.DB.First(&course, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, ErrNotFound
			}
			return false, err
		}
		var moduleIDs []uint
		if err := cs.DB.Model(&models.CourseModule{}).Where("course_id = ?", targetID).Pluck("id", &moduleIDs).Error; err != nil {
			return false, err
		}
		if len(moduleIDs) == 0 {
			return false, nil
		}
		for _, moduleID := range moduleIDs {
			ok, err := cs.moduleEligible(userID, moduleID)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	default:
		return false, NewValidationError("target_type", "must be MODULE or COURSE")
	}
}

// Issue returns the user's certificate for the target, creating it when the
// eligibility criteria hold. Creation is insert-if-absent on the
// (user, target) key, so two concurrent calls produce exactly one row and
// both observe the same code. A verification-code collision regenerates the
// code and retries; nothing else is ever retried.
func (cs *CertificateService) Issue(userID uint, targetType string, targetID uint, now time.Time) (*models.Certificate, error) {
	var existing models.Certificate
	err := cs.DB.Where("user_id = ? AND target_type = ? AND target_id = ?",
		userID, targetType, targetID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ok, err := cs.eligible(userID, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIneligible
	}

	var lastErr error
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		cert := models.Certificate{
			UserID:           userID,
			TargetType:       targetType,
			TargetID:         targetID,
			VerificationCode: utils.GenerateVerificationCode(),
			IssuedAt:         now,
		}
		res := cs.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
			DoNothing: true,
		}).Create(&cert)
		if res.Error != nil {
			// The (user, target) conflict was absorbed above, so an error
			// here is the global code uniqueness tripping. Regenerate.
			lastErr = res.Error
			continue
		}
		if res.RowsAffected == 0 {
			// A concurrent call won the insert; return its certificate.
			err := cs.DB.Where("user_id = ? AND target_type = ? AND target_id = ?",
				userID, targetType, targetID).First(&existing).Error
			if err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return &cert, nil
	}
	return nil, lastErr
}

// Verify is the public authenticity lookup. Unknown or malformed codes
// yield ErrNotFound, never a panic or a 500.
func (cs *CertificateService) Verify(code string) (*CertificatePublicView, error) {
	if code == "" {
		return nil, ErrNotFound
	}

	var cert models.Certificate
	err := cs.DB.Where("verification_code = ?", code).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var user models.User
	if err := cs.DB.First(&user, cert.UserID).Error; err != nil {
		return nil, err
	}

	var title string
	switch cert.TargetType {
	case models.TargetModule:
		var module models.CourseModule
		if err := cs.DB.First(&module, cert.TargetID).Error; err == nil {
			title = module.Title
		}
	case models.TargetCourse:
		var course models.Course
		if err := cs.DB.First(&course, cert.TargetID).Error; err == nil {
			title = course.Title
		}
	}

	return &CertificatePublicView{
		StudentName:      user.Username,
		TargetType:       cert.TargetType,
		TargetTitle:      title,
		VerificationCode: cert.VerificationCode,
		IssuedAt:         cert.IssuedAt,
	}, nil
}

// ListFor returns the user's certificates, newest first.
func (cs *CertificateService) ListFor(userID uint) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := cs.DB.Where("user_id = ?", userID).Order("issued_at DESC").Find(&certs).Error
	return certs, err
}
