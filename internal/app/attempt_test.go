package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quizplay-service/internal/app"
	"quizplay-service/internal/domain"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-1",
		Title:       "Arithmetic",
		Description: "Small sums",
		Questions: []domain.Question{
			{ID: "q1", Prompt: "2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1},
			{ID: "q2", Prompt: "3 + 3?", Options: []string{"5", "6"}, CorrectAnswer: 1},
		},
	}
}

func TestAttemptScoresOneCorrectOneWrong(t *testing.T) {
	clock := newFakeClock()
	a, err := app.NewAttempt(twoQuestionQuiz(), clock.Now)
	require.NoError(t, err)

	correct, err := a.SelectAnswer(1)
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Nil(t, a.Advance())

	correct, err = a.SelectAnswer(0)
	require.NoError(t, err)
	assert.False(t, correct)

	clock.Advance(42*time.Second + 900*time.Millisecond)
	result := a.Advance()
	require.NotNil(t, result)
	assert.Equal(t, "quiz-1", result.QuizID)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 42, result.TimeSpent, "whole seconds, floored")
	assert.Equal(t, []domain.AnswerRecord{
		{QuestionID: "q1", SelectedAnswer: 1, IsCorrect: true, CorrectAnswer: 1},
		{QuestionID: "q2", SelectedAnswer: 0, IsCorrect: false, CorrectAnswer: 1},
	}, result.Answers)
	assert.True(t, a.Finished())
}

func TestAttemptAdvanceIsNoopWhenUnanswered(t *testing.T) {
	a, err := app.NewAttempt(twoQuestionQuiz(), nil)
	require.NoError(t, err)

	assert.Nil(t, a.Advance())
	assert.Equal(t, 0, a.Index())
	assert.False(t, a.Finished())
}

func TestAttemptReanswerOverwrites(t *testing.T) {
	a, err := app.NewAttempt(twoQuestionQuiz(), nil)
	require.NoError(t, err)

	_, _ = a.SelectAnswer(0)
	_, _ = a.SelectAnswer(2)
	got, ok := a.Selected("q1")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, a.AnsweredCount())
}

func TestAttemptRetreatKeepsAnswers(t *testing.T) {
	a, err := app.NewAttempt(twoQuestionQuiz(), nil)
	require.NoError(t, err)

	a.Retreat()
	assert.Equal(t, 0, a.Index(), "retreat at the first question is a no-op")

	_, _ = a.SelectAnswer(1)
	a.Advance()
	a.Retreat()
	assert.Equal(t, 0, a.Index())
	got, ok := a.Selected("q1")
	assert.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestAttemptJumpSkipsUnansweredQuestions(t *testing.T) {
	a, err := app.NewAttempt(twoQuestionQuiz(), nil)
	require.NoError(t, err)

	require.NoError(t, a.JumpTo(1))
	_, err = a.SelectAnswer(1)
	require.NoError(t, err)

	// Back on the unanswered first question forward movement is gated again.
	a.Retreat()
	assert.Nil(t, a.Advance())
	require.NoError(t, a.JumpTo(1))

	result := a.Advance()
	require.NotNil(t, result)
	assert.Equal(t, domain.AnswerRecord{QuestionID: "q1", SelectedAnswer: domain.Unanswered, IsCorrect: false, CorrectAnswer: 1}, result.Answers[0])
	assert.True(t, result.Answers[1].IsCorrect)
	assert.Equal(t, 1, result.Score)
}

func TestAttemptRejectsInvalidInput(t *testing.T) {
	a, err := app.NewAttempt(twoQuestionQuiz(), nil)
	require.NoError(t, err)

	_, err = a.SelectAnswer(3)
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)
	_, err = a.SelectAnswer(-1)
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)
	assert.ErrorIs(t, a.JumpTo(2), domain.ErrQuestionNotFound)
	assert.ErrorIs(t, a.JumpTo(-1), domain.ErrQuestionNotFound)
}

func TestAttemptIsInertOnceFinished(t *testing.T) {
	a, err := app.NewAttempt(domain.Quiz{ID: "one", Questions: twoQuestionQuiz().Questions[:1]}, nil)
	require.NoError(t, err)
	_, _ = a.SelectAnswer(1)
	first := a.Advance()
	require.NotNil(t, first)

	assert.Nil(t, a.Advance(), "finalization happens once")
	_, err = a.SelectAnswer(0)
	assert.ErrorIs(t, err, domain.ErrAttemptFinished)
	assert.ErrorIs(t, a.JumpTo(0), domain.ErrAttemptFinished)
	assert.Same(t, first, a.Result())
}

func TestNewAttemptRejectsEmptyQuiz(t *testing.T) {
	_, err := app.NewAttempt(domain.Quiz{ID: "empty"}, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyQuiz)
}

func TestAttemptScoreBounds(t *testing.T) {
	quiz := twoQuestionQuiz()
	for _, picks := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		a, err := app.NewAttempt(quiz, nil)
		require.NoError(t, err)
		_, _ = a.SelectAnswer(picks[0])
		a.Advance()
		_, _ = a.SelectAnswer(picks[1])
		result := a.Advance()
		require.NotNil(t, result)

		correct := 0
		for _, rec := range result.Answers {
			if rec.IsCorrect {
				correct++
			}
		}
		assert.Equal(t, correct, result.Score)
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, result.TotalQuestions)
	}
}
