package models

import "gorm.io/gorm"

const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentInactive  = "INACTIVE"
	EnrollmentSuspended = "SUSPENDED"
)

// Enrollment is unique per (user, course); creation is insert-if-absent so
// a duplicate enrollment request returns the existing row.
type Enrollment struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID uint   `gorm:"uniqueIndex:idx_user_course;not null"`
	Status   string `gorm:"default:ACTIVE"` // ACTIVE, INACTIVE, SUSPENDED
}
