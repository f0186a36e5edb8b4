package services

import (
	"platform/backend/models"

	"gorm.io/gorm"
)

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	XP         int64  `json:"xp"`
	Level      string `json:"level"`
	StreakDays int    `json:"streak_days"`
}

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// Leaderboard projects gamification snapshots into ranked order: XP
// descending, ties broken by the earlier last-active date (the
// longer-tenured user ranks higher). Users with no activity yet sort after
// any tied active user. A non-nil courseID restricts the view to users
// enrolled in that course.
func (ls *LeaderboardService) Leaderboard(courseID *uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	type row struct {
		UserID         uint
		Username       string
		XP             int64
		StreakDays     int
		LastActiveDate string
	}

	query := ls.DB.Model(&models.UserGamification{}).
		Select("user_gamifications.user_id, users.username, user_gamifications.xp, user_gamifications.streak_days, user_gamifications.last_active_date").
		Joins("JOIN users ON users.id = user_gamifications.user_id")
	if courseID != nil {
		query = query.
			Joins("JOIN enrollments ON enrollments.user_id = user_gamifications.user_id").
			Where("enrollments.course_id = ?", *courseID)
	}

	var rows []row
	err := query.
		Order("user_gamifications.xp DESC, CASE WHEN user_gamifications.last_active_date = '' THEN 1 ELSE 0 END ASC, user_gamifications.last_active_date ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		level, _ := LevelForXP(r.XP)
		entries[i] = LeaderboardEntry{
			Rank:       i + 1,
			UserID:     r.UserID,
			Username:   r.Username,
			XP:         r.XP,
			Level:      level,
			StreakDays: r.StreakDays,
		}
	}
	return entries, nil
}
