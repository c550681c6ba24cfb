package app

import (
	"fmt"
	"strings"

	"quizplay-service/internal/domain"
)

// validateDraft checks the creation form and returns the cleaned questions.
// The first failing rule wins: title, description, then each question in order.
func validateDraft(draft domain.QuizDraft) ([]domain.Question, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &domain.ValidationError{Err: domain.ErrTitleRequired}
	}
	if strings.TrimSpace(draft.Description) == "" {
		return nil, &domain.ValidationError{Err: domain.ErrDescriptionRequired}
	}
	if len(draft.Questions) == 0 {
		return nil, &domain.ValidationError{Err: domain.ErrQuestionsRequired}
	}

	questions := make([]domain.Question, 0, len(draft.Questions))
	for i, qd := range draft.Questions {
		number := i + 1
		prompt := strings.TrimSpace(qd.Prompt)
		if prompt == "" {
			return nil, &domain.ValidationError{Question: number, Err: domain.ErrPromptRequired}
		}

		options := make([]string, 0, len(qd.Options))
		correct := -1
		for j, opt := range qd.Options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				continue
			}
			if j == qd.CorrectAnswer {
				correct = len(options)
			}
			options = append(options, opt)
		}
		if len(options) < 2 {
			return nil, &domain.ValidationError{Question: number, Err: domain.ErrTooFewOptions}
		}
		// correct stays -1 when the marked option was out of range or blank.
		if correct < 0 {
			return nil, &domain.ValidationError{Question: number, Err: domain.ErrInvalidCorrectAnswer}
		}

		questions = append(questions, domain.Question{
			ID:            fmt.Sprintf("q%d", number),
			Prompt:        prompt,
			Options:       options,
			CorrectAnswer: correct,
		})
	}
	return questions, nil
}

// checkQuiz enforces the invariants every catalog quiz must hold.
func checkQuiz(quiz domain.Quiz) error {
	if quiz.ID == "" {
		return fmt.Errorf("missing id")
	}
	if len(quiz.Questions) == 0 {
		return domain.ErrEmptyQuiz
	}
	seen := make(map[string]struct{}, len(quiz.Questions))
	for i, q := range quiz.Questions {
		if _, dup := seen[q.ID]; dup || q.ID == "" {
			return fmt.Errorf("question %d: missing or duplicate id %q", i+1, q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) < 2 {
			return &domain.ValidationError{Question: i + 1, Err: domain.ErrTooFewOptions}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return &domain.ValidationError{Question: i + 1, Err: domain.ErrInvalidCorrectAnswer}
		}
	}
	return nil
}
