package models

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress holds one row per (user, lesson). WatchTimeSeconds only
// grows and is updated with an atomic SQL increment; LastPositionSeconds is
// last-writer-wins and exists purely for resume UX. Completed never reverts.
type LessonProgress struct {
	gorm.Model
	UserID              uint `gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID            uint `gorm:"uniqueIndex:idx_user_lesson;not null"`
	LastPositionSeconds int
	WatchTimeSeconds    int64
	Completed           bool `gorm:"default:false"`
}

const (
	ActivityLessonComplete = "lesson_complete"
	ActivityQuizSubmit     = "quiz_submit"
	ActivityLogin          = "login"
	ActivityForumPost      = "forum_post"
)

// ActivityLog records qualifying activity events. Login and forum_post are
// reported by external collaborators; the rest are written by the engine
// itself. Badge criteria read this log as their evidence.
type ActivityLog struct {
	gorm.Model
	UserID     uint   `gorm:"index;not null"`
	ActionType string // lesson_complete, quiz_submit, login, forum_post
	TargetID   uint   // lesson_id or quiz_id, zero for login/forum_post
	OccurredAt time.Time
	DayKey     string `gorm:"index"` // YYYY-MM-DD in the reference timezone
}
