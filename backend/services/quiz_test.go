package services

import (
	"testing"
	"time"

	"platform/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func question(id uint, kind string) models.QuizQuestion {
	return models.QuizQuestion{Model: gorm.Model{ID: id}, Kind: kind}
}

func TestEvaluateQuiz_ScenarioFourChoicesThreeCorrect(t *testing.T) {
	quiz := &models.Quiz{PassingScorePercent: 80}
	for i := uint(1); i <= 4; i++ {
		q := question(i, models.QuestionMultipleChoice)
		q.CorrectAnswer = "b"
		quiz.Questions = append(quiz.Questions, q)
	}

	answers := map[uint]Answer{
		1: {Value: "b"},
		2: {Value: "b"},
		3: {Value: "b"},
		4: {Value: "a"},
	}

	eval, err := EvaluateQuiz(quiz, answers)
	require.NoError(t, err)
	assert.Equal(t, 75, eval.ScorePercent)
	assert.False(t, eval.Passed)
	assert.Equal(t, 3, eval.CorrectCount)
	assert.Equal(t, 4, eval.GradedCount)
}

func TestEvaluateQuiz_TrueFalse(t *testing.T) {
	q := question(1, models.QuestionTrueFalse)
	q.CorrectAnswer = "true"
	quiz := &models.Quiz{PassingScorePercent: 100, Questions: []models.QuizQuestion{q}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{1: {Value: "true"}})
	require.NoError(t, err)
	assert.True(t, eval.Passed)

	eval, err = EvaluateQuiz(quiz, map[uint]Answer{1: {Value: "false"}})
	require.NoError(t, err)
	assert.Equal(t, 0, eval.CorrectCount)

	// Only the literals count as an answer at all.
	eval, err = EvaluateQuiz(quiz, map[uint]Answer{1: {Value: "TRUE!"}})
	require.NoError(t, err)
	assert.Equal(t, 0, eval.CorrectCount)
}

func TestEvaluateQuiz_FillBlankNormalization(t *testing.T) {
	q := question(1, models.QuestionFillBlank)
	q.CorrectAnswer = "Heraclitus"
	quiz := &models.Quiz{PassingScorePercent: 100, Questions: []models.QuizQuestion{q}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{1: {Value: "  heraclitus "}})
	require.NoError(t, err)
	assert.True(t, eval.Passed)

	// No synonym matching.
	eval, err = EvaluateQuiz(quiz, map[uint]Answer{1: {Value: "the weeping philosopher"}})
	require.NoError(t, err)
	assert.False(t, eval.Passed)
}

func TestEvaluateQuiz_MatchingIsOrderIndependent(t *testing.T) {
	q := question(1, models.QuestionMatching)
	q.CorrectPairs = `{"thales":"water","anaximenes":"air"}`
	quiz := &models.Quiz{PassingScorePercent: 100, Questions: []models.QuizQuestion{q}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{
		1: {Pairs: map[string]string{"anaximenes": "air", "thales": "water"}},
	})
	require.NoError(t, err)
	assert.True(t, eval.Passed)

	// One wrong pair fails the whole set.
	eval, err = EvaluateQuiz(quiz, map[uint]Answer{
		1: {Pairs: map[string]string{"anaximenes": "water", "thales": "air"}},
	})
	require.NoError(t, err)
	assert.False(t, eval.Passed)

	// A subset is not a match.
	eval, err = EvaluateQuiz(quiz, map[uint]Answer{
		1: {Pairs: map[string]string{"thales": "water"}},
	})
	require.NoError(t, err)
	assert.False(t, eval.Passed)
}

func TestEvaluateQuiz_OrderingIsPositional(t *testing.T) {
	q := question(1, models.QuestionOrdering)
	q.CorrectSequence = `["thesis","antithesis","synthesis"]`
	quiz := &models.Quiz{PassingScorePercent: 100, Questions: []models.QuizQuestion{q}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{
		1: {Sequence: []string{"thesis", "antithesis", "synthesis"}},
	})
	require.NoError(t, err)
	assert.True(t, eval.Passed)

	eval, err = EvaluateQuiz(quiz, map[uint]Answer{
		1: {Sequence: []string{"antithesis", "thesis", "synthesis"}},
	})
	require.NoError(t, err)
	assert.False(t, eval.Passed)
}

func TestEvaluateQuiz_ListeningFollowsOptionsOrTranscription(t *testing.T) {
	withOptions := question(1, models.QuestionListening)
	withOptions.Options = `["agora","stoa"]`
	withOptions.CorrectAnswer = "agora"
	withOptions.MediaURL = "https://cdn.example.com/clip1.mp3"

	transcribed := question(2, models.QuestionListening)
	transcribed.CorrectAnswer = "Panta rhei"
	transcribed.MediaURL = "https://cdn.example.com/clip2.mp3"

	quiz := &models.Quiz{PassingScorePercent: 100, Questions: []models.QuizQuestion{withOptions, transcribed}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{
		1: {Value: "agora"},
		2: {Value: " panta rhei "},
	})
	require.NoError(t, err)
	assert.True(t, eval.Passed)

	// Option pick is exact, not case-normalized.
	eval, err = EvaluateQuiz(quiz, map[uint]Answer{
		1: {Value: "AGORA"},
		2: {Value: "panta rhei"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, eval.CorrectCount)
}

func TestEvaluateQuiz_EssayExcludedFromDenominator(t *testing.T) {
	mcq := question(1, models.QuestionMultipleChoice)
	mcq.CorrectAnswer = "b"
	essay := question(2, models.QuestionEssay)
	quiz := &models.Quiz{PassingScorePercent: 60, Questions: []models.QuizQuestion{mcq, essay}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{
		1: {Value: "b"},
		2: {Value: "a long reflection on virtue"},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, eval.ScorePercent)
	assert.True(t, eval.Passed)
	assert.Equal(t, 1, eval.GradedCount)
	assert.Equal(t, AnswerUngraded, eval.PerQuestion[1].Status)
}

func TestEvaluateQuiz_AllEssayFailsClosed(t *testing.T) {
	quiz := &models.Quiz{PassingScorePercent: 0, Questions: []models.QuizQuestion{
		question(1, models.QuestionEssay),
		question(2, models.QuestionEssay),
	}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{1: {Value: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 0, eval.ScorePercent)
	assert.False(t, eval.Passed)
}

func TestEvaluateQuiz_MissingAnswerCountsIncorrect(t *testing.T) {
	a := question(1, models.QuestionMultipleChoice)
	a.CorrectAnswer = "b"
	b := question(2, models.QuestionMultipleChoice)
	b.CorrectAnswer = "b"
	quiz := &models.Quiz{PassingScorePercent: 60, Questions: []models.QuizQuestion{a, b}}

	eval, err := EvaluateQuiz(quiz, map[uint]Answer{1: {Value: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 50, eval.ScorePercent)
	assert.Equal(t, AnswerIncorrect, eval.PerQuestion[1].Status)
}

func TestEvaluateQuiz_UnknownQuestionIDRejected(t *testing.T) {
	a := question(1, models.QuestionMultipleChoice)
	quiz := &models.Quiz{PassingScorePercent: 60, Questions: []models.QuizQuestion{a}}

	_, err := EvaluateQuiz(quiz, map[uint]Answer{99: {Value: "b"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSubmitQuiz_PersistsImmutableResultsAndAwardsXP(t *testing.T) {
	f := newFixture(t, 1)
	quiz := f.addQuiz(t, f.Lessons[0].ID, 75)

	answers := map[uint]Answer{}
	for _, q := range quiz.Questions {
		answers[q.ID] = Answer{Value: "b"}
	}

	eval, result, err := f.Quiz.SubmitQuiz(f.User.ID, quiz.ID, answers, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100, eval.ScorePercent)
	assert.True(t, result.Passed)

	// Passed attempt: 5 XP per correct answer.
	assert.Equal(t, int64(20), f.gamificationRow(t).XP)

	// A retake creates a second row, the first is untouched.
	answers[quiz.Questions[0].ID] = Answer{Value: "a"}
	_, second, err := f.Quiz.SubmitQuiz(f.User.ID, quiz.ID, answers, time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, result.ID, second.ID)

	results, err := f.Quiz.ResultsFor(f.User.ID, quiz.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 100, results[1].ScorePercent)
}

func TestSubmitQuiz_FailedAttemptAwardsNoXP(t *testing.T) {
	f := newFixture(t, 1)
	quiz := f.addQuiz(t, f.Lessons[0].ID, 80)

	answers := map[uint]Answer{quiz.Questions[0].ID: {Value: "b"}}
	eval, _, err := f.Quiz.SubmitQuiz(f.User.ID, quiz.ID, answers, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 25, eval.ScorePercent)
	assert.False(t, eval.Passed)

	assert.Equal(t, int64(0), f.gamificationRow(t).XP)
}

func TestSubmitQuiz_RequiresEnrollment(t *testing.T) {
	f := newFixture(t, 1)
	quiz := f.addQuiz(t, f.Lessons[0].ID, 60)

	stranger := models.User{Username: "stranger", Email: "stranger@example.com"}
	require.NoError(t, f.DB.Create(&stranger).Error)

	_, _, err := f.Quiz.SubmitQuiz(stranger.ID, quiz.ID, map[uint]Answer{}, time.Now())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSubmitQuiz_UnknownQuiz(t *testing.T) {
	f := newFixture(t, 1)
	_, _, err := f.Quiz.SubmitQuiz(f.User.ID, 404, map[uint]Answer{}, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
