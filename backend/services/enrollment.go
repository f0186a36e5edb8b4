package services

import (
	"errors"

	"platform/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentService struct {
	DB *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{DB: db}
}

// Enroll creates the (user, course) enrollment insert-if-absent. Repeating
// the request returns the existing enrollment unchanged, whatever its
// status.
func (es *EnrollmentService) Enroll(userID, courseID uint) (*models.Enrollment, error) {
	var course models.Course
	if err := es.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	row := models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   models.EnrollmentActive,
	}
	res := es.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var existing models.Enrollment
		err := es.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
		if err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return &row, nil
}

// ListFor returns the user's enrollments, newest first.
func (es *EnrollmentService) ListFor(userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := es.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&enrollments).Error
	return enrollments, err
}
