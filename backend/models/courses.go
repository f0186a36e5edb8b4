package models

import "gorm.io/gorm"

// Course structure is authored elsewhere and is read-only input here.
type Course struct {
	gorm.Model
	Title          string
	ShortDesc      string
	Description    string
	Difficulty     string // beginner, intermediate, advanced
	RecommendedFor string // group
	University     string
	Topic          string
	AuthorID       uint
	Modules        []CourseModule
}

type CourseModule struct {
	gorm.Model
	CourseID      uint `gorm:"index"`
	Title         string
	Description   string
	SequenceOrder int
	Lessons       []Lesson `gorm:"foreignKey:ModuleID"`
}

// Lesson kinds without a playback signal (notes, live, challenge) are only
// ever completed through the explicit complete action.
const (
	LessonKindVideo     = "video"
	LessonKindNotes     = "notes"
	LessonKindLive      = "live"
	LessonKindChallenge = "challenge"
)

type Lesson struct {
	gorm.Model
	ModuleID        uint `gorm:"index"`
	Title           string
	Description     string
	Kind            string `gorm:"default:video"` // video, notes, live, challenge
	DurationSeconds int
	SequenceOrder   int
}
