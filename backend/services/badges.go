package services

import (
	"time"

	"platform/backend/models"

	"gorm.io/gorm/clause"
)

// ActivitySnapshot is the read-only aggregate a badge criterion sees. It is
// rebuilt on each evaluation, never stored, so criteria cannot drift from
// the underlying activity log.
type ActivitySnapshot struct {
	MaxLessonsInOneDay int
	BestPerfectQuizRun int
	ForumPosts         int
	HasEarlyActivity   bool
}

// BadgeCriterion is a pure predicate over an ActivitySnapshot. The variants
// form a closed set; adding a badge means adding a criterion value to the
// catalog, not a subclass.
type BadgeCriterion interface {
	Holds(s *ActivitySnapshot) bool
}

type lessonsInDayCriterion struct{ Count int }

func (c lessonsInDayCriterion) Holds(s *ActivitySnapshot) bool {
	return s.MaxLessonsInOneDay >= c.Count
}

type perfectQuizRunCriterion struct{ Length int }

func (c perfectQuizRunCriterion) Holds(s *ActivitySnapshot) bool {
	return s.BestPerfectQuizRun >= c.Length
}

type forumPostsCriterion struct{ Count int }

func (c forumPostsCriterion) Holds(s *ActivitySnapshot) bool {
	return s.ForumPosts >= c.Count
}

type earlyActivityCriterion struct{}

func (earlyActivityCriterion) Holds(s *ActivitySnapshot) bool {
	return s.HasEarlyActivity
}

type BadgeDef struct {
	ID          string
	Name        string
	Description string
	Criterion   BadgeCriterion
}

var BadgeCatalog = []BadgeDef{
	{"marathoner", "Marathoner", "Complete 5 lessons within a single day", lessonsInDayCriterion{Count: 5}},
	{"perfectionist", "Perfectionist", "Score 100% on 3 quizzes in a row", perfectQuizRunCriterion{Length: 3}},
	{"orator", "Orator", "Write 10 forum posts", forumPostsCriterion{Count: 10}},
	{"early_bird", "Early Bird", "Log activity before 08:00", earlyActivityCriterion{}},
}

// buildActivitySnapshot aggregates the user's activity log and quiz history
// into the read-only view the criteria evaluate against.
func (gs *GamificationService) buildActivitySnapshot(userID uint) (*ActivitySnapshot, error) {
	snap := &ActivitySnapshot{}

	var maxPerDay int
	err := gs.DB.Model(&models.ActivityLog{}).
		Where("user_id = ? AND action_type = ?", userID, models.ActivityLessonComplete).
		Select("COUNT(*)").
		Group("day_key").
		Order("COUNT(*) DESC").
		Limit(1).
		Scan(&maxPerDay).Error
	if err != nil {
		return nil, err
	}
	snap.MaxLessonsInOneDay = maxPerDay

	var scores []int
	err = gs.DB.Model(&models.QuizResult{}).
		Where("user_id = ?", userID).
		Order("submitted_at ASC, id ASC").
		Pluck("score_percent", &scores).Error
	if err != nil {
		return nil, err
	}
	run, best := 0, 0
	for _, s := range scores {
		if s == 100 {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	snap.BestPerfectQuizRun = best

	var forumPosts int64
	err = gs.DB.Model(&models.ActivityLog{}).
		Where("user_id = ? AND action_type = ?", userID, models.ActivityForumPost).
		Count(&forumPosts).Error
	if err != nil {
		return nil, err
	}
	snap.ForumPosts = int(forumPosts)

	// OccurredAt is stored in the reference timezone, so the hour check is a
	// plain scan.
	var occurred []time.Time
	err = gs.DB.Model(&models.ActivityLog{}).
		Where("user_id = ?", userID).
		Pluck("occurred_at", &occurred).Error
	if err != nil {
		return nil, err
	}
	for _, at := range occurred {
		if at.In(gs.Loc).Hour() < 8 {
			snap.HasEarlyActivity = true
			break
		}
	}

	return snap, nil
}

// RecomputeBadges evaluates the catalog against a fresh snapshot and
// persists newly-earned badges insert-if-absent. Earned rows are never
// removed, so a badge cannot revert once the criterion has held.
func (gs *GamificationService) RecomputeBadges(userID uint) error {
	snap, err := gs.buildActivitySnapshot(userID)
	if err != nil {
		return err
	}

	for _, def := range BadgeCatalog {
		if !def.Criterion.Holds(snap) {
			continue
		}
		earned := models.UserBadge{
			UserID:   userID,
			BadgeID:  def.ID,
			EarnedAt: time.Now().In(gs.Loc),
		}
		err := gs.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&earned).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// EarnedBadges lists the user's earned badges joined with catalog metadata.
func (gs *GamificationService) EarnedBadges(userID uint) ([]BadgeView, error) {
	var rows []models.UserBadge
	if err := gs.DB.Where("user_id = ?", userID).Order("earned_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	defs := make(map[string]BadgeDef, len(BadgeCatalog))
	for _, def := range BadgeCatalog {
		defs[def.ID] = def
	}

	badges := make([]BadgeView, 0, len(rows))
	for _, row := range rows {
		def, ok := defs[row.BadgeID]
		if !ok {
			continue
		}
		badges = append(badges, BadgeView{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			EarnedAt:    row.EarnedAt,
		})
	}
	return badges, nil
}
