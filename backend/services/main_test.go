package services

import (
	"testing"
	"time"

	"platform/backend/models"
	"platform/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. The pool is capped
// at one connection so goroutine-based tests serialize at the storage layer
// the way a server's connection pool would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.Migrate(db))
	return db
}

type fixture struct {
	DB       *gorm.DB
	Gamify   *GamificationService
	Progress *ProgressService
	Quiz     *QuizService

	User    models.User
	Course  models.Course
	Module  models.CourseModule
	Lessons []models.Lesson
}

// newFixture seeds one enrolled student with a single-module course of
// lessonCount lessons.
func newFixture(t *testing.T, lessonCount int) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{DB: db}
	f.Gamify = NewGamificationService(db, time.UTC)
	f.Progress = NewProgressService(db, f.Gamify)
	f.Quiz = NewQuizService(db, f.Gamify)

	f.User = models.User{Username: "sokrat", Email: "sokrat@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&f.User).Error)

	f.Course = models.Course{Title: "Ancient Philosophy", Topic: "Philosophy"}
	require.NoError(t, db.Create(&f.Course).Error)

	f.Module = models.CourseModule{CourseID: f.Course.ID, Title: "The Presocratics", SequenceOrder: 1}
	require.NoError(t, db.Create(&f.Module).Error)

	for i := 0; i < lessonCount; i++ {
		lesson := models.Lesson{
			ModuleID:      f.Module.ID,
			Title:         "Lesson",
			Kind:          models.LessonKindVideo,
			SequenceOrder: i + 1,
		}
		require.NoError(t, db.Create(&lesson).Error)
		f.Lessons = append(f.Lessons, lesson)
	}

	enrollment := models.Enrollment{UserID: f.User.ID, CourseID: f.Course.ID, Status: models.EnrollmentActive}
	require.NoError(t, db.Create(&enrollment).Error)

	return f
}

// addQuiz attaches a quiz with four multiple-choice questions to the given
// lesson. The correct answer is always "b".
func (f *fixture) addQuiz(t *testing.T, lessonID uint, passingScore int) *models.Quiz {
	t.Helper()

	quiz := models.Quiz{LessonID: lessonID, Title: "Checkpoint", PassingScorePercent: passingScore}
	require.NoError(t, f.DB.Create(&quiz).Error)

	for i := 0; i < 4; i++ {
		q := models.QuizQuestion{
			QuizID:        quiz.ID,
			Kind:          models.QuestionMultipleChoice,
			Prompt:        "Pick b",
			Options:       `["a","b","c","d"]`,
			CorrectAnswer: "b",
			SequenceOrder: i + 1,
		}
		require.NoError(t, f.DB.Create(&q).Error)
	}
	require.NoError(t, f.DB.Preload("Questions").First(&quiz, quiz.ID).Error)
	return &quiz
}

func (f *fixture) gamificationRow(t *testing.T) models.UserGamification {
	t.Helper()
	var row models.UserGamification
	require.NoError(t, f.DB.Where("user_id = ?", f.User.ID).First(&row).Error)
	return row
}
