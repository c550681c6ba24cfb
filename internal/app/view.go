package app

import (
	"math"
	"time"

	"quizplay-service/internal/domain"
)

// QuizSummary is a catalog entry as listed on the home and browse pages.
type QuizSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   int             `json:"questions"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	Language    domain.Language `json:"language,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// Summarize drops the questions from a quiz for listing.
func Summarize(q domain.Quiz) QuizSummary {
	return QuizSummary{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Questions:   len(q.Questions),
		CreatedBy:   q.CreatedBy,
		CreatedAt:   q.CreatedAt,
		Language:    q.Language,
		Category:    q.Category,
	}
}

// QuestionView is a question without its answer key.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// AttemptView is the taking page: the current question and progress.
type AttemptView struct {
	QuizID   string       `json:"quizId"`
	Title    string       `json:"title"`
	Number   int          `json:"number"`
	Total    int          `json:"total"`
	Question QuestionView `json:"question"`
	// Selected is the recorded option for the current question, or -1.
	Selected int       `json:"selected"`
	Answered []bool    `json:"answered"`
	Progress int       `json:"progress"`
	IsLast   bool      `json:"isLast"`
	Elapsed  int       `json:"elapsed"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// View is the presentation model for one UI session.
type View struct {
	SessionID  string           `json:"sessionId"`
	Page       domain.Page      `json:"page"`
	Identity   *domain.Identity `json:"identity,omitempty"`
	AuthPrompt bool             `json:"authPrompt"`
	Filter     BrowseFilter     `json:"filter"`
	Quizzes    []QuizSummary    `json:"quizzes,omitempty"`
	Attempt    *AttemptView     `json:"attempt,omitempty"`
	Result     *ResultView      `json:"result,omitempty"`
}

func (s *Session) viewLocked() View {
	st := s.state
	v := View{
		SessionID:  s.id,
		Page:       st.Page,
		Identity:   st.Identity,
		AuthPrompt: st.AuthPrompt,
		Filter:     st.Filter,
	}

	switch st.Page {
	case domain.PageHome:
		if st.Identity != nil {
			v.Quizzes = summaries(s.env.catalog, ByAuthor(st.Identity.ID))
		}
	case domain.PageBrowse:
		v.Quizzes = summaries(s.env.catalog, browsePredicate(st))
	case domain.PageTaking:
		if s.attempt != nil {
			v.Attempt = s.attemptViewLocked()
		}
	case domain.PageResults:
		if st.ActiveQuiz != nil && st.LastResult != nil {
			result := Present(*st.ActiveQuiz, *st.LastResult)
			v.Result = &result
		}
	}
	return v
}

func (s *Session) attemptViewLocked() *AttemptView {
	a := s.attempt
	quiz := a.Quiz()
	q := a.Current()

	selected := -1
	if idx, ok := a.Selected(q.ID); ok {
		selected = idx
	}
	answered := make([]bool, len(quiz.Questions))
	for i, qq := range quiz.Questions {
		_, answered[i] = a.Selected(qq.ID)
	}
	total := len(quiz.Questions)

	return &AttemptView{
		QuizID: quiz.ID,
		Title:  quiz.Title,
		Number: a.Index() + 1,
		Total:  total,
		Question: QuestionView{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: q.Options,
		},
		Selected: selected,
		Answered: answered,
		Progress: int(math.Round(float64(a.Index()+1) / float64(total) * 100)),
		IsLast:   a.Index() == total-1,
		Elapsed:  int(a.Elapsed() / time.Second),
		Feedback: s.feedback,
	}
}

func browsePredicate(st State) Predicate {
	f := st.Filter
	preds := []Predicate{MatchSearch(f.Search)}
	if f.Mine && st.Identity != nil {
		preds = append(preds, ByAuthor(st.Identity.ID))
	}
	if f.Language != "" {
		preds = append(preds, ByLanguage(f.Language))
	}
	if f.Category != "" {
		preds = append(preds, ByCategory(f.Category))
	}
	return AllOf(preds...)
}

func summaries(c *Catalog, pred Predicate) []QuizSummary {
	out := make([]QuizSummary, 0)
	for q := range c.Filter(pred) {
		out = append(out, Summarize(q))
	}
	return out
}
