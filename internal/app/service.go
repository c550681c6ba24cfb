package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"quizplay-service/internal/domain"
)

// SessionRepository abstracts how UI sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, create func(sessionID string) *Session) *Session
	Get(sessionID string) (*Session, bool)
	// DeleteIfIdle removes the session when nobody is subscribed and reports whether it did.
	DeleteIfIdle(sessionID string) bool
}

// Service contains the quiz application's use cases.
type Service struct {
	sessions SessionRepository
	catalog  *Catalog
	env      *sessionEnv
}

// Option customizes a Service.
type Option func(*sessionEnv)

// WithLogger sets the logger used by the service and its sessions.
func WithLogger(log *zap.Logger) Option {
	return func(e *sessionEnv) { e.log = log }
}

// WithFeedbackDelay sets how long answer feedback stays visible.
func WithFeedbackDelay(d time.Duration) Option {
	return func(e *sessionEnv) {
		if d > 0 {
			e.feedbackDelay = d
		}
	}
}

// WithSessionClock is test-only for deterministic attempt timing.
func WithSessionClock(now func() time.Time) Option {
	return func(e *sessionEnv) { e.now = now }
}

// WithAfterFunc replaces the timer used to clear answer feedback.
func WithAfterFunc(f AfterFunc) Option {
	return func(e *sessionEnv) { e.afterFunc = f }
}

func NewService(store SessionRepository, catalog *Catalog, opts ...Option) *Service {
	env := defaultEnv(catalog)
	for _, opt := range opts {
		opt(env)
	}
	return &Service{sessions: store, catalog: catalog, env: env}
}

// Catalog exposes the shared quiz catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Open returns the session's current view, creating the session on first use.
func (s *Service) Open(_ context.Context, sessionID string) View {
	session := s.sessions.GetOrCreate(sessionID, s.newSession)
	return session.View()
}

func (s *Service) newSession(sessionID string) *Session {
	s.env.log.Debug("session opened", zap.String("session", sessionID))
	return newSession(sessionID, s.env)
}

// Dispatch applies an action to an open session.
func (s *Service) Dispatch(ctx context.Context, sessionID string, action Action) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.Dispatch(ctx, action)
}

// Subscribe returns a channel that receives an Update after every transition.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Service) Subscribe(_ context.Context, sessionID string) (<-chan Update, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Elapsed reports the running attempt's elapsed seconds for the timer readout.
func (s *Service) Elapsed(sessionID string) (int, bool) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return 0, false
	}
	return session.Elapsed()
}

// Leave drops the session once its last subscriber is gone, discarding any
// attempt in progress.
func (s *Service) Leave(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if s.sessions.DeleteIfIdle(sessionID) {
		session.Close()
		s.env.log.Debug("session closed", zap.String("session", sessionID))
	}
}
