package app

import (
	"fmt"
	"math"

	"quizplay-service/internal/domain"
)

// Tier is the qualitative grade shown next to a score.
type Tier string

const (
	TierExcellent  Tier = "Excellent"
	TierGreat      Tier = "Great"
	TierGood       Tier = "Good"
	TierNotBad     Tier = "Not bad"
	TierKeepTrying Tier = "Keep trying"
)

// TierFor maps a percentage onto its tier.
func TierFor(percentage int) Tier {
	switch {
	case percentage >= 90:
		return TierExcellent
	case percentage >= 80:
		return TierGreat
	case percentage >= 70:
		return TierGood
	case percentage >= 60:
		return TierNotBad
	default:
		return TierKeepTrying
	}
}

// ResultItem pairs one question with what the user answered.
type ResultItem struct {
	Number         int      `json:"number"`
	QuestionID     string   `json:"questionId"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options"`
	SelectedAnswer int      `json:"selectedAnswer"`
	CorrectAnswer  int      `json:"correctAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
}

// ResultView is the display model for the results page.
type ResultView struct {
	QuizID         string       `json:"quizId"`
	Title          string       `json:"title"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Percentage     int          `json:"percentage"`
	Tier           Tier         `json:"tier"`
	TimeSpent      int          `json:"timeSpent"`
	TimeLabel      string       `json:"timeLabel"`
	Items          []ResultItem `json:"items"`
}

// Percentage is round(100*score/total), or 0 for an empty result.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// Present builds the results page for quiz and its result.
func Present(quiz domain.Quiz, result domain.QuizResult) ResultView {
	byID := make(map[string]domain.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID] = q
	}

	items := make([]ResultItem, 0, len(result.Answers))
	for i, rec := range result.Answers {
		q := byID[rec.QuestionID]
		items = append(items, ResultItem{
			Number:         i + 1,
			QuestionID:     rec.QuestionID,
			Prompt:         q.Prompt,
			Options:        q.Options,
			SelectedAnswer: rec.SelectedAnswer,
			CorrectAnswer:  rec.CorrectAnswer,
			IsCorrect:      rec.IsCorrect,
		})
	}

	pct := Percentage(result.Score, result.TotalQuestions)
	return ResultView{
		QuizID:         result.QuizID,
		Title:          quiz.Title,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     pct,
		Tier:           TierFor(pct),
		TimeSpent:      result.TimeSpent,
		TimeLabel:      FormatDuration(result.TimeSpent),
		Items:          items,
	}
}

// FormatDuration renders seconds as "Xm Ys".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// ShareText is the one-line summary handed to the share surface.
func ShareText(quiz domain.Quiz, result domain.QuizResult) string {
	return fmt.Sprintf("I just scored %d/%d (%d%%) on \"%s\" quiz!",
		result.Score, result.TotalQuestions, Percentage(result.Score, result.TotalQuestions), quiz.Title)
}
