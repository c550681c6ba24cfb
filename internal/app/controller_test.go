package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quizplay-service/internal/app"
	"quizplay-service/internal/domain"
)

type quizMap map[string]domain.Quiz

func (m quizMap) Find(id string) (domain.Quiz, error) {
	if q, ok := m[id]; ok {
		return q, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func newTestController() *app.Controller {
	return app.NewController(quizMap{"quiz-1": twoQuestionQuiz()})
}

var alice = domain.Identity{ID: "u1", Name: "Alice", Email: "alice@example.com"}

func loggedIn() app.State {
	s := app.InitialState()
	id := alice
	s.Identity = &id
	return s
}

func takingState(t *testing.T, c *app.Controller) app.State {
	t.Helper()
	s, effects := c.Update(loggedIn(), app.Navigate{Target: app.TakePrefix + "quiz-1"})
	require.Equal(t, domain.PageTaking, s.Page)
	require.Len(t, effects, 1)
	return s
}

func TestBrowseWithoutIdentityLandsHomeWithPrompt(t *testing.T) {
	c := newTestController()

	for _, action := range []app.Action{
		app.Navigate{Target: string(domain.PageBrowse)},
		app.RequireIdentity{Then: app.Navigate{Target: string(domain.PageBrowse)}},
	} {
		s, effects := c.Update(app.InitialState(), action)
		assert.Equal(t, domain.PageHome, s.Page)
		assert.True(t, s.AuthPrompt)
		assert.Empty(t, effects)
	}
}

func TestRequireIdentityRunsActionWhenLoggedIn(t *testing.T) {
	c := newTestController()
	s, _ := c.Update(loggedIn(), app.RequireIdentity{Then: app.Navigate{Target: string(domain.PageCreate)}})
	assert.Equal(t, domain.PageCreate, s.Page)
	assert.False(t, s.AuthPrompt)
}

func TestLoginClosesPrompt(t *testing.T) {
	c := newTestController()
	s, _ := c.Update(app.InitialState(), app.Navigate{Target: string(domain.PageCreate)})
	require.True(t, s.AuthPrompt)

	s, _ = c.Update(s, app.Login{Identity: alice})
	assert.False(t, s.AuthPrompt)
	require.NotNil(t, s.Identity)
	assert.Equal(t, "Alice", s.Identity.Name)

	s, _ = c.Update(s, app.Navigate{Target: string(domain.PageBrowse)})
	s, _ = c.Update(s, app.CloseAuthPrompt{})
	assert.Equal(t, domain.PageBrowse, s.Page)
}

func TestTakeKnownQuizStartsAttempt(t *testing.T) {
	c := newTestController()
	s, effects := c.Update(loggedIn(), app.Navigate{Target: app.TakePrefix + "quiz-1"})

	assert.Equal(t, domain.PageTaking, s.Page)
	require.NotNil(t, s.ActiveQuiz)
	assert.Equal(t, "quiz-1", s.ActiveQuiz.ID)
	assert.Equal(t, []app.Effect{app.StartAttempt{Quiz: twoQuestionQuiz()}}, effects)
}

func TestTakeUnknownQuizIsNoop(t *testing.T) {
	c := newTestController()
	before := loggedIn()
	before.Page = domain.PageBrowse

	s, effects := c.Update(before, app.Navigate{Target: app.TakePrefix + "missing"})
	assert.Equal(t, before, s)
	assert.Empty(t, effects)

	s, effects = c.Update(before, app.Retake{QuizID: "missing"})
	assert.Equal(t, before, s)
	assert.Empty(t, effects)
}

func TestTakeWithoutIdentityFallsBack(t *testing.T) {
	c := newTestController()
	s, effects := c.Update(app.InitialState(), app.Navigate{Target: app.TakePrefix + "quiz-1"})
	assert.Equal(t, domain.PageHome, s.Page)
	assert.Nil(t, s.ActiveQuiz)
	assert.True(t, s.AuthPrompt)
	assert.Empty(t, effects, "no attempt starts on a page that is never shown")
}

func TestLeavingTakingStopsAttempt(t *testing.T) {
	c := newTestController()
	s := takingState(t, c)

	s, effects := c.Update(s, app.Navigate{Target: string(domain.PageHome)})
	assert.Equal(t, domain.PageHome, s.Page)
	assert.Nil(t, s.ActiveQuiz)
	assert.Equal(t, []app.Effect{app.StopAttempt{}}, effects)
}

func TestLogoutFromTaking(t *testing.T) {
	c := newTestController()
	s := takingState(t, c)

	s, effects := c.Update(s, app.Logout{})
	assert.Equal(t, app.InitialState(), s)
	assert.Equal(t, []app.Effect{app.StopAttempt{}}, effects)
}

func TestCompleteAttemptMovesToResults(t *testing.T) {
	c := newTestController()
	s := takingState(t, c)

	s, _ = c.Update(s, app.CompleteAttempt{Result: domain.QuizResult{QuizID: "other"}})
	assert.Equal(t, domain.PageTaking, s.Page, "results for another quiz are ignored")

	s, effects := c.Update(s, app.CompleteAttempt{Result: domain.QuizResult{QuizID: "quiz-1", Score: 2, TotalQuestions: 2}})
	assert.Equal(t, domain.PageResults, s.Page)
	require.NotNil(t, s.LastResult)
	assert.Equal(t, 2, s.LastResult.Score)
	assert.Equal(t, []app.Effect{app.StopAttempt{}}, effects)
}

func TestRetakeFromResults(t *testing.T) {
	c := newTestController()
	s := takingState(t, c)
	s, _ = c.Update(s, app.CompleteAttempt{Result: domain.QuizResult{QuizID: "quiz-1"}})
	require.Equal(t, domain.PageResults, s.Page)

	s, effects := c.Update(s, app.Retake{QuizID: "quiz-1"})
	assert.Equal(t, domain.PageTaking, s.Page)
	assert.Nil(t, s.LastResult)
	assert.Equal(t, []app.Effect{app.StartAttempt{Quiz: twoQuestionQuiz()}}, effects)
}

func TestGuardFallbacks(t *testing.T) {
	quiz := twoQuestionQuiz()

	cases := []struct {
		name   string
		state  app.State
		page   domain.Page
		prompt bool
	}{
		{"home always renders", app.State{Page: domain.PageHome}, domain.PageHome, false},
		{"create without identity", app.State{Page: domain.PageCreate}, domain.PageHome, true},
		{"taking without quiz", app.State{Page: domain.PageTaking, Identity: &alice}, domain.PageHome, false},
		{"results without result", app.State{Page: domain.PageResults, Identity: &alice, ActiveQuiz: &quiz}, domain.PageHome, false},
		{"results complete", app.State{Page: domain.PageResults, Identity: &alice, ActiveQuiz: &quiz, LastResult: &domain.QuizResult{}}, domain.PageResults, false},
		{"unknown page", app.State{Page: "settings", Identity: &alice}, domain.PageHome, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := app.Guard(tc.state)
			assert.Equal(t, tc.page, got.Page)
			assert.Equal(t, tc.prompt, got.AuthPrompt)
			if got.Page == domain.PageHome {
				assert.Nil(t, got.ActiveQuiz)
				assert.Nil(t, got.LastResult)
			}
		})
	}
}

func TestSetFilterOnlyOnBrowse(t *testing.T) {
	c := newTestController()
	filter := app.BrowseFilter{Search: "geo", Mine: true}

	s, _ := c.Update(loggedIn(), app.SetFilter{Filter: filter})
	assert.Equal(t, app.BrowseFilter{}, s.Filter)

	s, _ = c.Update(s, app.Navigate{Target: string(domain.PageBrowse)})
	s, _ = c.Update(s, app.SetFilter{Filter: filter})
	assert.Equal(t, filter, s.Filter)

	s, _ = c.Update(s, app.Navigate{Target: string(domain.PageHome)})
	assert.Equal(t, app.BrowseFilter{}, s.Filter)
}
