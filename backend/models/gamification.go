package models

import (
	"time"

	"gorm.io/gorm"
)

// UserGamification holds the atomically-maintained counters; level and
// xp-to-next are derived at read time from XP. LastActiveDate is a
// YYYY-MM-DD string in the reference timezone so gap comparisons are plain
// string comparisons with no wall-clock ambiguity.
type UserGamification struct {
	gorm.Model
	UserID         uint  `gorm:"uniqueIndex;not null"`
	XP             int64 `gorm:"default:0"`
	StreakDays     int   `gorm:"default:0"`
	LastActiveDate string
}

// UserBadge rows are written insert-if-absent the first time a criterion
// holds and are never deleted, so earned state cannot revert.
type UserBadge struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_user_badge;not null"`
	BadgeID  string `gorm:"uniqueIndex:idx_user_badge;not null"`
	EarnedAt time.Time
}
