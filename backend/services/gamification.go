package services

import (
	"errors"
	"time"

	"platform/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XP policy. Amounts are fixed per event kind and only ever added; quiz XP
// is proportional to correct answers and granted only on a passed attempt.
const (
	XPPerLessonComplete = 25
	XPPerCorrectAnswer  = 5
)

const dayFormat = "2006-01-02"

// CEFR-style levels as an ordered step function over cumulative XP. The
// level is the highest threshold not exceeding the current XP.
var levelThresholds = []struct {
	Level string
	MinXP int64
}{
	{"A1", 0},
	{"A2", 100},
	{"B1", 250},
	{"B2", 500},
	{"C1", 900},
	{"C2", 1500},
}

// LevelForXP returns the current level and the XP remaining to the next
// threshold (0 at the top level).
func LevelForXP(xp int64) (string, int64) {
	level := levelThresholds[0].Level
	var xpToNext int64
	for i, t := range levelThresholds {
		if xp >= t.MinXP {
			level = t.Level
			if i+1 < len(levelThresholds) {
				xpToNext = levelThresholds[i+1].MinXP - xp
			} else {
				xpToNext = 0
			}
		}
	}
	return level, xpToNext
}

type GamificationService struct {
	DB  *gorm.DB
	Loc *time.Location
}

func NewGamificationService(db *gorm.DB, loc *time.Location) *GamificationService {
	return &GamificationService{DB: db, Loc: loc}
}

type BadgeView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

type GamificationSnapshot struct {
	XP             int64       `json:"xp"`
	Level          string      `json:"level"`
	XPToNext       int64       `json:"xp_to_next"`
	StreakDays     int         `json:"streak_days"`
	LastActiveDate string      `json:"last_active_date"`
	Badges         []BadgeView `json:"badges"`
}

// ensureRow makes the per-user counter row exist before an atomic update
// targets it. Insert-if-absent, so concurrent callers cannot duplicate it.
func (gs *GamificationService) ensureRow(userID uint) error {
	return gs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.UserGamification{UserID: userID}).Error
}

// AwardXP adds a fixed amount to the user's XP as a single SQL increment.
// XP is strictly additive; a non-positive amount is rejected.
func (gs *GamificationService) AwardXP(userID uint, amount int64) error {
	if amount <= 0 {
		return NewValidationError("amount", "XP award must be positive")
	}
	if err := gs.ensureRow(userID); err != nil {
		return err
	}
	return gs.DB.Model(&models.UserGamification{}).
		Where("user_id = ?", userID).
		Update("xp", gorm.Expr("xp + ?", amount)).Error
}

// TouchDailyActivity moves the streak forward for "now"'s calendar date in
// the reference timezone. The whole transition is one conditional UPDATE
// guarded by last_active_date < today, so it fires at most once per day no
// matter how many qualifying activities arrive: same day is a no-op, a
// one-day gap increments, a longer gap resets to 1.
func (gs *GamificationService) TouchDailyActivity(userID uint, now time.Time) error {
	local := now.In(gs.Loc)
	today := local.Format(dayFormat)
	yesterday := local.AddDate(0, 0, -1).Format(dayFormat)

	if err := gs.ensureRow(userID); err != nil {
		return err
	}
	return gs.DB.Model(&models.UserGamification{}).
		Where("user_id = ? AND (last_active_date = '' OR last_active_date IS NULL OR last_active_date < ?)", userID, today).
		Updates(map[string]interface{}{
			"streak_days":      gorm.Expr("CASE WHEN last_active_date = ? THEN streak_days + 1 ELSE 1 END", yesterday),
			"last_active_date": today,
		}).Error
}

// RecordActivity logs a qualifying activity event and advances the daily
// streak. Lesson completions and quiz submissions call this internally;
// logins and forum posts are reported through the activity endpoint.
func (gs *GamificationService) RecordActivity(userID uint, actionType string, targetID uint, now time.Time) error {
	local := now.In(gs.Loc)
	entry := models.ActivityLog{
		UserID:     userID,
		ActionType: actionType,
		TargetID:   targetID,
		OccurredAt: local,
		DayKey:     local.Format(dayFormat),
	}
	if err := gs.DB.Create(&entry).Error; err != nil {
		return err
	}
	if err := gs.TouchDailyActivity(userID, now); err != nil {
		return err
	}
	return gs.RecomputeBadges(userID)
}

// Snapshot returns the user's gamification state with level and xp-to-next
// derived from the stored XP, plus earned badges. A user with no activity
// yet gets the zero snapshot.
func (gs *GamificationService) Snapshot(userID uint) (*GamificationSnapshot, error) {
	var row models.UserGamification
	err := gs.DB.Where("user_id = ?", userID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	level, xpToNext := LevelForXP(row.XP)
	badges, err := gs.EarnedBadges(userID)
	if err != nil {
		return nil, err
	}

	return &GamificationSnapshot{
		XP:             row.XP,
		Level:          level,
		XPToNext:       xpToNext,
		StreakDays:     row.StreakDays,
		LastActiveDate: row.LastActiveDate,
		Badges:         badges,
	}, nil
}
