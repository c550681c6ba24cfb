package domain

import "time"

// SystemAuthor marks quizzes that ship with the catalog rather than being created by a user.
const SystemAuthor = "system"

// Unanswered is the selected index recorded for a question the user never answered.
const Unanswered = -1

// Identity is the mock-authenticated user of a UI session.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Language tags the language a quiz is written in.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageTelugu  Language = "telugu"
)

// Question models an MCQ question whose CorrectAnswer indexes into Options.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
}

// Quiz is an immutable, ordered collection of questions.
type Quiz struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Questions   []Question `json:"questions" yaml:"questions"`
	CreatedBy   string     `json:"createdBy" yaml:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	Language    Language   `json:"language,omitempty" yaml:"language"`
	Category    string     `json:"category,omitempty" yaml:"category"`
}

// QuestionDraft is a question as typed into the creation form.
type QuestionDraft struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// QuizDraft is the unvalidated creation form for a quiz.
type QuizDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionDraft `json:"questions"`
	Language    Language        `json:"language,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// AnswerRecord is the outcome of one question within a finished attempt.
type AnswerRecord struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer int    `json:"selectedAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	CorrectAnswer  int    `json:"correctAnswer"`
}

// QuizResult summarizes a finished attempt. TimeSpent is in whole seconds.
type QuizResult struct {
	QuizID         string         `json:"quizId"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Answers        []AnswerRecord `json:"answers"`
	TimeSpent      int            `json:"timeSpent"`
}

// Page identifies the view a UI session is showing.
type Page string

const (
	PageHome    Page = "home"
	PageCreate  Page = "create"
	PageBrowse  Page = "browse"
	PageTaking  Page = "taking"
	PageResults Page = "results"
)

// Gated reports whether the page requires an identity.
func (p Page) Gated() bool {
	switch p {
	case PageCreate, PageBrowse, PageTaking, PageResults:
		return true
	}
	return false
}
