package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"quizplay-service/internal/domain"
)

// DefaultFeedbackDelay is how long the correct/incorrect signal stays visible.
const DefaultFeedbackDelay = 1500 * time.Millisecond

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc satisfies it through realAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ShareTarget receives the result summary (platform share sheet, clipboard).
type ShareTarget interface {
	Share(ctx context.Context, text string) error
}

// ErrShareUnavailable is returned by share targets the client cannot serve.
var ErrShareUnavailable = errors.New("share unavailable")

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a fire-and-forget message for the notification surface.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Feedback is the transient correct/incorrect signal after selecting an answer.
type Feedback struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
}

// Update is what subscribers receive after every transition.
type Update struct {
	View   View    `json:"view"`
	Notice *Notice `json:"notice,omitempty"`
}

// sessionEnv carries the collaborators shared by every session of a service.
type sessionEnv struct {
	catalog       *Catalog
	controller    *Controller
	now           func() time.Time
	afterFunc     AfterFunc
	feedbackDelay time.Duration
	log           *zap.Logger
}

func defaultEnv(catalog *Catalog) *sessionEnv {
	return &sessionEnv{
		catalog:       catalog,
		controller:    NewController(catalog),
		now:           time.Now,
		afterFunc:     realAfterFunc,
		feedbackDelay: DefaultFeedbackDelay,
		log:           zap.NewNop(),
	}
}

// Session is one browser tab's navigation state and in-progress attempt.
// Every transition happens under mu, one action at a time.
type Session struct {
	id        string
	env       *sessionEnv
	createdAt time.Time

	mu            sync.Mutex
	state         State
	attempt       *Attempt
	feedback      *Feedback
	feedbackTimer Timer
	generation    uint64
	subscribers   map[chan Update]struct{}
}

// NewSession is exported for infrastructure layers and tests that need a
// standalone session over catalog with default timers.
func NewSession(id string, catalog *Catalog) *Session {
	return newSession(id, defaultEnv(catalog))
}

func newSession(id string, env *sessionEnv) *Session {
	return &Session{
		id:          id,
		env:         env,
		createdAt:   env.now(),
		state:       InitialState(),
		subscribers: make(map[chan Update]struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns a copy of the navigation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View renders the current presentation model.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Elapsed reports whole seconds spent on the running attempt.
func (s *Session) Elapsed() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil || s.attempt.Finished() {
		return 0, false
	}
	return int(s.attempt.Elapsed() / time.Second), true
}

// Dispatch applies one user action and broadcasts the resulting view.
// Validation failures are reported as notices, not errors.
func (s *Session) Dispatch(ctx context.Context, action Action) error {
	if share, ok := action.(ShareResult); ok {
		return s.share(ctx, share)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notice, err := s.applyLocked(action)
	if err != nil {
		return err
	}
	s.broadcastLocked(notice)
	return nil
}

func (s *Session) applyLocked(action Action) (*Notice, error) {
	switch a := action.(type) {
	case Login:
		id := a.Identity
		id.Name = strings.TrimSpace(id.Name)
		id.Email = strings.TrimSpace(id.Email)
		if id.Name == "" || id.Email == "" {
			return nil, domain.ErrInvalidIdentity
		}
		if id.ID == "" {
			id.ID = uuid.NewString()
		}
		s.transitionLocked(Login{Identity: id})
		return nil, nil

	case SelectAnswer:
		attempt, err := s.activeAttemptLocked()
		if err != nil {
			return nil, err
		}
		correct, err := attempt.SelectAnswer(a.Index)
		if err != nil {
			return nil, err
		}
		s.showFeedbackLocked(attempt.Current().ID, correct)
		return nil, nil

	case Advance:
		attempt, err := s.activeAttemptLocked()
		if err != nil {
			return nil, err
		}
		before := attempt.Index()
		if result := attempt.Advance(); result != nil {
			s.env.log.Info("attempt finished",
				zap.String("session", s.id),
				zap.String("quiz", result.QuizID),
				zap.Int("score", result.Score),
				zap.Int("total", result.TotalQuestions),
				zap.Int("timeSpent", result.TimeSpent),
			)
			s.transitionLocked(CompleteAttempt{Result: *result})
		} else if attempt.Index() != before {
			s.cancelFeedbackLocked()
		}
		return nil, nil

	case Retreat:
		attempt, err := s.activeAttemptLocked()
		if err != nil {
			return nil, err
		}
		if before := attempt.Index(); before > 0 {
			attempt.Retreat()
			s.cancelFeedbackLocked()
		}
		return nil, nil

	case JumpTo:
		attempt, err := s.activeAttemptLocked()
		if err != nil {
			return nil, err
		}
		if err := attempt.JumpTo(a.Index); err != nil {
			return nil, err
		}
		s.cancelFeedbackLocked()
		return nil, nil

	case SaveQuiz:
		if s.state.Identity == nil {
			s.transitionLocked(RequireIdentity{})
			return nil, nil
		}
		quiz, err := s.env.catalog.Create(a.Draft, s.state.Identity.ID)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				return &Notice{Level: NoticeError, Message: verr.Error()}, nil
			}
			return nil, err
		}
		s.env.log.Info("quiz created",
			zap.String("session", s.id),
			zap.String("quiz", quiz.ID),
			zap.String("author", quiz.CreatedBy),
			zap.Int("questions", len(quiz.Questions)),
		)
		s.transitionLocked(Navigate{Target: string(domain.PageBrowse)})
		return &Notice{Level: NoticeSuccess, Message: "Quiz created successfully!"}, nil

	default:
		s.transitionLocked(action)
		return nil, nil
	}
}

// transitionLocked runs the controller and performs its effects.
func (s *Session) transitionLocked(action Action) {
	from := s.state.Page
	next, effects := s.env.controller.Update(s.state, action)
	s.state = next

	for _, effect := range effects {
		switch e := effect.(type) {
		case StartAttempt:
			s.stopAttemptLocked()
			attempt, err := NewAttempt(e.Quiz, s.env.now)
			if err != nil {
				s.env.log.Warn("cannot start attempt", zap.String("quiz", e.Quiz.ID), zap.Error(err))
				s.state.ActiveQuiz = nil
				s.state = Guard(s.state)
				continue
			}
			s.attempt = attempt
		case StopAttempt:
			s.stopAttemptLocked()
		}
	}

	if from != s.state.Page {
		s.env.log.Debug("page changed",
			zap.String("session", s.id),
			zap.String("from", string(from)),
			zap.String("to", string(s.state.Page)),
		)
	}
}

func (s *Session) activeAttemptLocked() (*Attempt, error) {
	if s.state.Page != domain.PageTaking || s.attempt == nil {
		return nil, domain.ErrNoActiveAttempt
	}
	return s.attempt, nil
}

func (s *Session) stopAttemptLocked() {
	s.cancelFeedbackLocked()
	s.attempt = nil
}

func (s *Session) showFeedbackLocked(questionID string, correct bool) {
	s.cancelFeedbackLocked()
	s.feedback = &Feedback{QuestionID: questionID, Correct: correct}
	gen := s.generation
	s.feedbackTimer = s.env.afterFunc(s.env.feedbackDelay, func() {
		s.clearFeedback(gen)
	})
}

// cancelFeedbackLocked drops the visible feedback and invalidates any timer in flight.
func (s *Session) cancelFeedbackLocked() {
	if s.feedbackTimer != nil {
		s.feedbackTimer.Stop()
		s.feedbackTimer = nil
	}
	s.feedback = nil
	s.generation++
}

func (s *Session) clearFeedback(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.feedback == nil {
		return
	}
	s.feedback = nil
	s.feedbackTimer = nil
	s.broadcastLocked(nil)
}

func (s *Session) share(ctx context.Context, a ShareResult) error {
	s.mu.Lock()
	if s.state.Page != domain.PageResults || s.state.LastResult == nil || s.state.ActiveQuiz == nil {
		s.mu.Unlock()
		return domain.ErrNoResult
	}
	text := ShareText(*s.state.ActiveQuiz, *s.state.LastResult)
	s.mu.Unlock()

	if a.Primary != nil {
		err := a.Primary.Share(ctx, text)
		if err == nil {
			return nil
		}
		s.env.log.Debug("share failed, falling back to clipboard", zap.String("session", s.id), zap.Error(err))
	}
	if a.Fallback == nil {
		return nil
	}
	if err := a.Fallback.Share(ctx, text); err != nil {
		s.env.log.Debug("clipboard fallback failed", zap.String("session", s.id), zap.Error(err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(&Notice{Level: NoticeSuccess, Message: "Results copied to clipboard!"})
	return nil
}

// Close cancels pending timers and drops the running attempt.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAttemptLocked()
}

// Idle reports whether no connection is subscribed to the session.
func (s *Session) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers) == 0
}

func (s *Session) subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := Update{View: s.viewLocked()}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(notice *Notice) {
	update := Update{View: s.viewLocked(), Notice: notice}
	for ch := range s.subscribers {
		select {
		case ch <- update:
		default:
			// Full buffer: drop the oldest pending update.
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}
