package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a UI session has not been opened.
	ErrSessionNotFound = errors.New("ui session not found")
	// ErrQuizNotFound indicates the quiz is not in the catalog.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question index is out of range.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected option index is out of range.
	ErrOptionNotFound = errors.New("option not found")
	// ErrEmptyQuiz is returned for quizzes without questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrAttemptFinished is returned when acting on a finalized attempt.
	ErrAttemptFinished = errors.New("attempt already finished")
	// ErrNoActiveAttempt is returned for attempt actions outside the taking page.
	ErrNoActiveAttempt = errors.New("no quiz in progress")
	// ErrNoResult is returned when sharing outside the results page.
	ErrNoResult = errors.New("no result to share")
	// ErrInvalidIdentity is returned when login is missing a required field.
	ErrInvalidIdentity = errors.New("please fill in all fields")
)

// Validation failures for quiz creation, reported in this order.
var (
	ErrTitleRequired        = errors.New("please enter a quiz title")
	ErrDescriptionRequired  = errors.New("please enter a quiz description")
	ErrQuestionsRequired    = errors.New("please add at least one question")
	ErrPromptRequired       = errors.New("please enter the question")
	ErrTooFewOptions        = errors.New("needs at least 2 options")
	ErrInvalidCorrectAnswer = errors.New("please select a valid correct answer")
)

// ValidationError ties a validation failure to a 1-based question number.
// Question is zero for quiz-level failures.
type ValidationError struct {
	Question int
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Question == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("question %d: %s", e.Question, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
