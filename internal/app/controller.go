package app

import (
	"slices"
	"strings"

	"quizplay-service/internal/domain"
)

// TakePrefix marks a navigation target that begins an attempt on a quiz, e.g. "take-english-1".
const TakePrefix = "take-"

// BrowseFilter holds the browse page's search and filter controls.
type BrowseFilter struct {
	Search   string          `json:"search"`
	Mine     bool            `json:"mine"`
	Language domain.Language `json:"language,omitempty"`
	Category string          `json:"category,omitempty"`
}

// State is everything the navigation controller knows about one UI session.
// It is a plain value: transitions only happen through Controller.Update.
type State struct {
	Identity   *domain.Identity   `json:"identity,omitempty"`
	Page       domain.Page        `json:"page"`
	ActiveQuiz *domain.Quiz       `json:"activeQuiz,omitempty"`
	LastResult *domain.QuizResult `json:"lastResult,omitempty"`
	AuthPrompt bool               `json:"authPrompt"`
	Filter     BrowseFilter       `json:"filter"`
}

// InitialState is the state of a freshly opened session.
func InitialState() State {
	return State{Page: domain.PageHome}
}

// Action is a user intent dispatched to a session.
type Action interface {
	isAction()
}

type (
	// Login sets the session identity and closes the auth prompt.
	Login struct{ Identity domain.Identity }
	// Logout clears the identity and returns home.
	Logout struct{}
	// Navigate changes page, or begins an attempt when Target starts with TakePrefix.
	Navigate struct{ Target string }
	// Retake begins a fresh attempt on a quiz.
	Retake struct{ QuizID string }
	// RequireIdentity runs Then only when logged in, otherwise raises the auth prompt.
	RequireIdentity struct{ Then Action }
	// CloseAuthPrompt dismisses the auth prompt.
	CloseAuthPrompt struct{}
	// SetFilter updates the browse filters.
	SetFilter struct{ Filter BrowseFilter }
	// CompleteAttempt moves a finished attempt to the results page.
	CompleteAttempt struct{ Result domain.QuizResult }

	// SelectAnswer records an option for the current question.
	SelectAnswer struct{ Index int }
	// Advance moves to the next question or finishes the quiz.
	Advance struct{}
	// Retreat moves to the previous question.
	Retreat struct{}
	// JumpTo shows an arbitrary question.
	JumpTo struct{ Index int }

	// SaveQuiz submits the creation form.
	SaveQuiz struct{ Draft domain.QuizDraft }
	// ShareResult hands the result summary to Primary, falling back to Fallback.
	ShareResult struct{ Primary, Fallback ShareTarget }
)

func (Login) isAction()           {}
func (Logout) isAction()          {}
func (Navigate) isAction()        {}
func (Retake) isAction()          {}
func (RequireIdentity) isAction() {}
func (CloseAuthPrompt) isAction() {}
func (SetFilter) isAction()       {}
func (CompleteAttempt) isAction() {}
func (SelectAnswer) isAction()    {}
func (Advance) isAction()         {}
func (Retreat) isAction()         {}
func (JumpTo) isAction()          {}
func (SaveQuiz) isAction()        {}
func (ShareResult) isAction()     {}

// Effect is work the session must perform after a transition.
type Effect interface {
	isEffect()
}

type (
	// StartAttempt replaces any running attempt with a fresh one on Quiz.
	StartAttempt struct{ Quiz domain.Quiz }
	// StopAttempt discards the running attempt and its pending timers.
	StopAttempt struct{}
)

func (StartAttempt) isEffect() {}
func (StopAttempt) isEffect()  {}

// QuizFinder resolves quiz ids for navigation.
type QuizFinder interface {
	Find(id string) (domain.Quiz, error)
}

// Controller is the navigation state machine.
type Controller struct {
	quizzes QuizFinder
}

func NewController(quizzes QuizFinder) *Controller {
	return &Controller{quizzes: quizzes}
}

// Update applies action to s and returns the next state plus the effects to run.
// The result always passes Guard.
func (c *Controller) Update(s State, action Action) (State, []Effect) {
	next, effects := c.reduce(s, action)
	next = Guard(next)
	if next.Page != domain.PageTaking {
		effects = slices.DeleteFunc(effects, func(e Effect) bool {
			_, start := e.(StartAttempt)
			return start
		})
		if s.Page == domain.PageTaking {
			effects = append(effects, StopAttempt{})
		}
	}
	return next, effects
}

func (c *Controller) reduce(s State, action Action) (State, []Effect) {
	switch a := action.(type) {
	case Login:
		id := a.Identity
		s.Identity = &id
		s.AuthPrompt = false
		return s, nil

	case Logout:
		return State{Page: domain.PageHome}, nil

	case Navigate:
		if quizID, ok := strings.CutPrefix(a.Target, TakePrefix); ok {
			return c.begin(s, quizID)
		}
		s.Page = domain.Page(a.Target)
		s.ActiveQuiz = nil
		s.LastResult = nil
		s.Filter = BrowseFilter{}
		return s, nil

	case Retake:
		return c.begin(s, a.QuizID)

	case RequireIdentity:
		if s.Identity == nil {
			s.AuthPrompt = true
			return s, nil
		}
		if a.Then == nil {
			return s, nil
		}
		return c.reduce(s, a.Then)

	case CloseAuthPrompt:
		s.AuthPrompt = false
		return s, nil

	case SetFilter:
		if s.Page == domain.PageBrowse {
			s.Filter = a.Filter
		}
		return s, nil

	case CompleteAttempt:
		if s.Page != domain.PageTaking || s.ActiveQuiz == nil || s.ActiveQuiz.ID != a.Result.QuizID {
			return s, nil
		}
		result := a.Result
		s.LastResult = &result
		s.Page = domain.PageResults
		return s, nil
	}
	return s, nil
}

func (c *Controller) begin(s State, quizID string) (State, []Effect) {
	quiz, err := c.quizzes.Find(quizID)
	if err != nil {
		return s, nil
	}
	s.ActiveQuiz = &quiz
	s.LastResult = nil
	s.Page = domain.PageTaking
	return s, []Effect{StartAttempt{Quiz: quiz}}
}

// Guard falls back to home whenever the current page's preconditions are unmet.
// Missing identity on a gated page also raises the auth prompt.
func Guard(s State) State {
	ok := true
	switch s.Page {
	case domain.PageHome:
	case domain.PageCreate, domain.PageBrowse:
		ok = s.Identity != nil
	case domain.PageTaking:
		ok = s.Identity != nil && s.ActiveQuiz != nil
	case domain.PageResults:
		ok = s.Identity != nil && s.ActiveQuiz != nil && s.LastResult != nil
	default:
		ok = false
	}
	if ok {
		return s
	}
	if s.Page.Gated() && s.Identity == nil {
		s.AuthPrompt = true
	}
	s.Page = domain.PageHome
	s.ActiveQuiz = nil
	s.LastResult = nil
	s.Filter = BrowseFilter{}
	return s
}
