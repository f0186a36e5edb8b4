package services

import (
	"errors"
	"math"
	"time"

	"platform/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressService struct {
	DB     *gorm.DB
	Gamify *GamificationService
}

func NewProgressService(db *gorm.DB, gamify *GamificationService) *ProgressService {
	return &ProgressService{DB: db, Gamify: gamify}
}

// lessonForUser resolves the lesson and verifies the caller holds an ACTIVE
// enrollment in its course. Unknown lesson is NotFound; a missing or
// non-active enrollment is an authorization failure.
func (ps *ProgressService) lessonForUser(userID, lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := ps.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var module models.CourseModule
	if err := ps.DB.First(&module, lesson.ModuleID).Error; err != nil {
		return nil, err
	}

	var enrollment models.Enrollment
	err := ps.DB.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, module.CourseID, models.EnrollmentActive).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &lesson, nil
}

// SyncHeartbeat records a playback heartbeat. The position is
// last-writer-wins; the watch-time delta is folded in with a SQL-side
// increment so concurrent heartbeats from parallel sessions all count.
func (ps *ProgressService) SyncHeartbeat(userID, lessonID uint, lastPositionSeconds int, watchTimeDeltaSeconds int64) error {
	if lastPositionSeconds < 0 {
		return NewValidationError("last_position_seconds", "must not be negative")
	}
	if watchTimeDeltaSeconds < 0 {
		return NewValidationError("watch_time_delta_seconds", "must not be negative")
	}
	if _, err := ps.lessonForUser(userID, lessonID); err != nil {
		return err
	}

	row := models.LessonProgress{
		UserID:              userID,
		LessonID:            lessonID,
		LastPositionSeconds: lastPositionSeconds,
		WatchTimeSeconds:    watchTimeDeltaSeconds,
	}
	return ps.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_position_seconds": lastPositionSeconds,
			"watch_time_seconds":    gorm.Expr("watch_time_seconds + ?", watchTimeDeltaSeconds),
			"updated_at":            time.Now(),
		}),
	}).Create(&row).Error
}

// MarkComplete flips the lesson's completed flag. The flag is one-way and
// the call is idempotent; the XP award and activity event fire only on the
// actual false-to-true transition, detected through RowsAffected so two
// concurrent calls cannot both award.
func (ps *ProgressService) MarkComplete(userID, lessonID uint, now time.Time) error {
	if _, err := ps.lessonForUser(userID, lessonID); err != nil {
		return err
	}

	transitioned := false

	row := models.LessonProgress{UserID: userID, LessonID: lessonID, Completed: true}
	res := ps.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		transitioned = true
	} else {
		upd := ps.DB.Model(&models.LessonProgress{}).
			Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lessonID, false).
			Update("completed", true)
		if upd.Error != nil {
			return upd.Error
		}
		transitioned = upd.RowsAffected == 1
	}

	if !transitioned {
		return nil
	}

	if err := ps.Gamify.AwardXP(userID, XPPerLessonComplete); err != nil {
		return err
	}
	return ps.Gamify.RecordActivity(userID, models.ActivityLessonComplete, lessonID, now)
}

// lessonIDsInScope collects the lesson ids under a module or course.
func (ps *ProgressService) lessonIDsInScope(scopeType string, scopeID uint) ([]uint, error) {
	var ids []uint
	switch scopeType {
	case models.TargetModule:
		var module models.CourseModule
		if err := ps.DB.First(&module, scopeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		err := ps.DB.Model(&models.Lesson{}).Where("module_id = ?", scopeID).Pluck("id", &ids).Error
		return ids, err
	case models.TargetCourse:
		var course models.Course
		if err := ps.DB.First(&course, scopeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		err := ps.DB.Model(&models.Lesson{}).
			Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
			Where("course_modules.course_id = ?", scopeID).
			Pluck("lessons.id", &ids).Error
		return ids, err
	default:
		return nil, NewValidationError("scope_type", "must be MODULE or COURSE")
	}
}

// CompletionPercent computes the share of completed lessons in a module or
// course, rounded to the nearest integer. 100 is exact: it is reported only
// when every lesson in scope is completed, so rounding can never certify an
// unfinished scope. A scope with no lessons is 0% and never certifiable.
func (ps *ProgressService) CompletionPercent(userID uint, scopeType string, scopeID uint) (int, error) {
	ids, err := ps.lessonIDsInScope(scopeType, scopeID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var completed int64
	err = ps.DB.Model(&models.LessonProgress{}).
		Where("user_id = ? AND lesson_id IN ? AND completed = ?", userID, ids, true).
		Count(&completed).Error
	if err != nil {
		return 0, err
	}
	percent := int(math.Round(float64(completed) / float64(len(ids)) * 100))
	if percent == 100 && completed != int64(len(ids)) {
		percent = 99
	}
	return percent, nil
}

// LessonProgressFor returns the stored progress row, zero-valued when the
// user has not touched the lesson yet.
func (ps *ProgressService) LessonProgressFor(userID, lessonID uint) (*models.LessonProgress, error) {
	var row models.LessonProgress
	err := ps.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	row.UserID = userID
	row.LessonID = lessonID
	return &row, nil
}
