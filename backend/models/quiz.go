package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionFillBlank      = "fill_blank"
	QuestionMatching       = "matching"
	QuestionOrdering       = "ordering"
	QuestionListening      = "listening"
	QuestionEssay          = "essay"
)

type Quiz struct {
	gorm.Model
	LessonID            uint `gorm:"index;not null"`
	Title               string
	PassingScorePercent int `gorm:"default:60"`
	Questions           []QuizQuestion
}

// QuizQuestion is a tagged variant over Kind. Each kind uses its own
// correctness columns: CorrectAnswer for multiple_choice/true_false/
// fill_blank/listening, CorrectPairs (JSON object) for matching,
// CorrectSequence (JSON array) for ordering. Essay has no correctness
// representation and is never auto-scored.
type QuizQuestion struct {
	gorm.Model
	QuizID          uint `gorm:"index;not null"`
	Kind            string
	Prompt          string
	Options         string // JSON array of options
	CorrectAnswer   string
	CorrectPairs    string // JSON object, left -> right
	CorrectSequence string // JSON array, exact order
	MediaURL        string // listening questions reference an opaque asset
	SequenceOrder   int
}

// QuizResult is immutable once created; a retake inserts a new row.
type QuizResult struct {
	gorm.Model
	UserID       uint `gorm:"index;not null"`
	QuizID       uint `gorm:"index;not null"`
	Detail       string // JSON array of per-question correctness
	CorrectCount int
	GradedCount  int
	ScorePercent int
	Passed       bool
	SubmittedAt  time.Time
}
