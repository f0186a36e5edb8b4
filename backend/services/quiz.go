package services

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"platform/backend/models"

	"gorm.io/gorm"
)

// Answer is the caller's submission for one question. Value carries
// multiple_choice/true_false/fill_blank/listening answers, Pairs carries
// matching answers, Sequence carries ordering answers.
type Answer struct {
	Value    string            `json:"value"`
	Pairs    map[string]string `json:"pairs"`
	Sequence []string          `json:"sequence"`
}

const (
	AnswerCorrect   = "correct"
	AnswerIncorrect = "incorrect"
	AnswerUngraded  = "ungraded"
)

type QuestionResult struct {
	QuestionID uint   `json:"question_id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"` // correct, incorrect, ungraded
}

type Evaluation struct {
	PerQuestion  []QuestionResult `json:"per_question"`
	CorrectCount int              `json:"correct_count"`
	GradedCount  int              `json:"graded_count"`
	ScorePercent int              `json:"score_percent"`
	Passed       bool             `json:"passed"`
}

type QuizService struct {
	DB     *gorm.DB
	Gamify *GamificationService
}

func NewQuizService(db *gorm.DB, gamify *GamificationService) *QuizService {
	return &QuizService{DB: db, Gamify: gamify}
}

// normalizeText is the fill-blank/listening comparison policy: trimmed,
// case-folded, exact match. No synonym matching.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func gradeMatching(q *models.QuizQuestion, ans *Answer) string {
	var expected map[string]string
	if err := json.Unmarshal([]byte(q.CorrectPairs), &expected); err != nil {
		return AnswerIncorrect
	}
	if len(ans.Pairs) != len(expected) {
		return AnswerIncorrect
	}
	// Set comparison over left -> right pairs, order-independent.
	for left, right := range expected {
		if ans.Pairs[left] != right {
			return AnswerIncorrect
		}
	}
	return AnswerCorrect
}

func gradeOrdering(q *models.QuizQuestion, ans *Answer) string {
	var expected []string
	if err := json.Unmarshal([]byte(q.CorrectSequence), &expected); err != nil {
		return AnswerIncorrect
	}
	if len(ans.Sequence) != len(expected) {
		return AnswerIncorrect
	}
	for i, item := range expected {
		if ans.Sequence[i] != item {
			return AnswerIncorrect
		}
	}
	return AnswerCorrect
}

// gradeQuestion scores one answered question. Essay is never auto-scored.
func gradeQuestion(q *models.QuizQuestion, ans *Answer) string {
	switch q.Kind {
	case models.QuestionEssay:
		return AnswerUngraded
	case models.QuestionMultipleChoice:
		if ans.Value == q.CorrectAnswer {
			return AnswerCorrect
		}
	case models.QuestionTrueFalse:
		if (ans.Value == "true" || ans.Value == "false") && ans.Value == q.CorrectAnswer {
			return AnswerCorrect
		}
	case models.QuestionFillBlank:
		if normalizeText(ans.Value) == normalizeText(q.CorrectAnswer) {
			return AnswerCorrect
		}
	case models.QuestionListening:
		// With options defined the answer is an option pick, exact match;
		// otherwise it is transcribed text, fill-blank rules.
		if q.Options != "" && q.Options != "[]" {
			if ans.Value == q.CorrectAnswer {
				return AnswerCorrect
			}
		} else if normalizeText(ans.Value) == normalizeText(q.CorrectAnswer) {
			return AnswerCorrect
		}
	case models.QuestionMatching:
		return gradeMatching(q, ans)
	case models.QuestionOrdering:
		return gradeOrdering(q, ans)
	}
	return AnswerIncorrect
}

// EvaluateQuiz scores a submitted answer set against the quiz definition.
// Unanswered questions count as incorrect; essays are excluded from the
// denominator. An answer referencing an unknown question id is a validation
// failure and nothing is scored.
func EvaluateQuiz(quiz *models.Quiz, answers map[uint]Answer) (*Evaluation, error) {
	known := make(map[uint]bool, len(quiz.Questions))
	for i := range quiz.Questions {
		known[quiz.Questions[i].ID] = true
	}
	for id := range answers {
		if !known[id] {
			return nil, NewValidationError("answers", "answer references an unknown question id")
		}
	}

	eval := &Evaluation{PerQuestion: make([]QuestionResult, 0, len(quiz.Questions))}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]

		status := AnswerIncorrect
		if q.Kind == models.QuestionEssay {
			status = AnswerUngraded
		} else if ans, ok := answers[q.ID]; ok {
			status = gradeQuestion(q, &ans)
		}

		eval.PerQuestion = append(eval.PerQuestion, QuestionResult{
			QuestionID: q.ID,
			Kind:       q.Kind,
			Status:     status,
		})
		if status != AnswerUngraded {
			eval.GradedCount++
		}
		if status == AnswerCorrect {
			eval.CorrectCount++
		}
	}

	// Fails closed when every question is essay: nothing gradable means
	// score 0 and not passed.
	if eval.GradedCount > 0 {
		eval.ScorePercent = int(math.Round(float64(eval.CorrectCount) / float64(eval.GradedCount) * 100))
		eval.Passed = eval.ScorePercent >= quiz.PassingScorePercent
	}
	return eval, nil
}

// SubmitQuiz evaluates and persists one attempt. The result row is
// immutable; a retake creates a new row. A passed attempt awards
// XPPerCorrectAnswer per correct answer and counts as qualifying activity.
func (qs *QuizService) SubmitQuiz(userID, quizID uint, answers map[uint]Answer, now time.Time) (*Evaluation, *models.QuizResult, error) {
	var quiz models.Quiz
	err := qs.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order ASC")
	}).First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var lesson models.Lesson
	if err := qs.DB.First(&lesson, quiz.LessonID).Error; err != nil {
		return nil, nil, err
	}
	var module models.CourseModule
	if err := qs.DB.First(&module, lesson.ModuleID).Error; err != nil {
		return nil, nil, err
	}
	var enrollment models.Enrollment
	err = qs.DB.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, module.CourseID, models.EnrollmentActive).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}

	eval, err := EvaluateQuiz(&quiz, answers)
	if err != nil {
		return nil, nil, err
	}

	detail, err := json.Marshal(eval.PerQuestion)
	if err != nil {
		return nil, nil, err
	}
	result := models.QuizResult{
		UserID:       userID,
		QuizID:       quizID,
		Detail:       string(detail),
		CorrectCount: eval.CorrectCount,
		GradedCount:  eval.GradedCount,
		ScorePercent: eval.ScorePercent,
		Passed:       eval.Passed,
		SubmittedAt:  now,
	}
	if err := qs.DB.Create(&result).Error; err != nil {
		return nil, nil, err
	}

	if eval.Passed && eval.CorrectCount > 0 {
		if err := qs.Gamify.AwardXP(userID, int64(XPPerCorrectAnswer*eval.CorrectCount)); err != nil {
			return nil, nil, err
		}
	}
	if err := qs.Gamify.RecordActivity(userID, models.ActivityQuizSubmit, quizID, now); err != nil {
		return nil, nil, err
	}

	return eval, &result, nil
}

// ResultsFor lists the user's attempts for a quiz, newest first.
func (qs *QuizService) ResultsFor(userID, quizID uint) ([]models.QuizResult, error) {
	var quiz models.Quiz
	if err := qs.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var results []models.QuizResult
	err := qs.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("submitted_at DESC, id DESC").Find(&results).Error
	return results, err
}
