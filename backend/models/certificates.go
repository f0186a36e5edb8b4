package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TargetModule = "MODULE"
	TargetCourse = "COURSE"
)

// Certificate is created exactly once per (user, target) and is otherwise
// read-only. The composite unique index is what makes concurrent issuance
// collapse to a single row; the code index keeps verification codes
// globally unique.
type Certificate struct {
	gorm.Model
	UserID           uint   `gorm:"uniqueIndex:idx_user_target;not null"`
	TargetType       string `gorm:"uniqueIndex:idx_user_target;not null"` // MODULE, COURSE
	TargetID         uint   `gorm:"uniqueIndex:idx_user_target;not null"`
	VerificationCode string `gorm:"uniqueIndex;not null"`
	IssuedAt         time.Time
}
