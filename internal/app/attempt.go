package app

import (
	"time"

	"quizplay-service/internal/domain"
)

// Attempt drives one run through a quiz: one question at a time, one answer
// per question, finalized when the last question is advanced past.
// Attempt is not safe for concurrent use; Session serializes access.
type Attempt struct {
	quiz      domain.Quiz
	now       func() time.Time
	startedAt time.Time
	current   int
	answers   map[string]int
	result    *domain.QuizResult
}

// NewAttempt starts an attempt on quiz. now should carry a monotonic reading (time.Now does).
func NewAttempt(quiz domain.Quiz, now func() time.Time) (*Attempt, error) {
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrEmptyQuiz
	}
	if now == nil {
		now = time.Now
	}
	return &Attempt{
		quiz:      quiz,
		now:       now,
		startedAt: now(),
		answers:   make(map[string]int, len(quiz.Questions)),
	}, nil
}

// Quiz returns the quiz being taken.
func (a *Attempt) Quiz() domain.Quiz { return a.quiz }

// Index returns the 0-based position of the current question.
func (a *Attempt) Index() int { return a.current }

// Current returns the question being shown.
func (a *Attempt) Current() domain.Question { return a.quiz.Questions[a.current] }

// Selected returns the recorded answer for a question, if any.
func (a *Attempt) Selected(questionID string) (int, bool) {
	idx, ok := a.answers[questionID]
	return idx, ok
}

// AnsweredCount reports how many questions have a recorded answer.
func (a *Attempt) AnsweredCount() int { return len(a.answers) }

// Finished reports whether the attempt has been finalized.
func (a *Attempt) Finished() bool { return a.result != nil }

// Result returns the finalized result, or nil while in progress.
func (a *Attempt) Result() *domain.QuizResult { return a.result }

// Elapsed is the time since the attempt started.
func (a *Attempt) Elapsed() time.Duration { return a.now().Sub(a.startedAt) }

// SelectAnswer records index for the current question, replacing any earlier
// choice, and reports whether it is correct.
func (a *Attempt) SelectAnswer(index int) (bool, error) {
	if a.Finished() {
		return false, domain.ErrAttemptFinished
	}
	q := a.Current()
	if index < 0 || index >= len(q.Options) {
		return false, domain.ErrOptionNotFound
	}
	a.answers[q.ID] = index
	return index == q.CorrectAnswer, nil
}

// Advance moves to the next question, or finalizes on the last one. It does
// nothing while the current question is unanswered. The result is non-nil
// only on the call that finalizes.
func (a *Attempt) Advance() *domain.QuizResult {
	if a.Finished() {
		return nil
	}
	if _, ok := a.answers[a.Current().ID]; !ok {
		return nil
	}
	if a.current == len(a.quiz.Questions)-1 {
		return a.finalize()
	}
	a.current++
	return nil
}

// Retreat moves back one question. Recorded answers are kept.
func (a *Attempt) Retreat() {
	if a.Finished() || a.current == 0 {
		return
	}
	a.current--
}

// JumpTo shows question index regardless of which questions are answered.
func (a *Attempt) JumpTo(index int) error {
	if a.Finished() {
		return domain.ErrAttemptFinished
	}
	if index < 0 || index >= len(a.quiz.Questions) {
		return domain.ErrQuestionNotFound
	}
	a.current = index
	return nil
}

func (a *Attempt) finalize() *domain.QuizResult {
	records := make([]domain.AnswerRecord, 0, len(a.quiz.Questions))
	score := 0
	for _, q := range a.quiz.Questions {
		selected, ok := a.answers[q.ID]
		if !ok {
			selected = domain.Unanswered
		}
		correct := selected == q.CorrectAnswer
		if correct {
			score++
		}
		records = append(records, domain.AnswerRecord{
			QuestionID:     q.ID,
			SelectedAnswer: selected,
			IsCorrect:      correct,
			CorrectAnswer:  q.CorrectAnswer,
		})
	}

	spent := int(a.Elapsed() / time.Second)
	if spent < 0 {
		spent = 0
	}
	a.result = &domain.QuizResult{
		QuizID:         a.quiz.ID,
		Score:          score,
		TotalQuestions: len(a.quiz.Questions),
		Answers:        records,
		TimeSpent:      spent,
	}
	return a.result
}
