package app

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"quizplay-service/internal/domain"
)

// SeedLoader fetches the built-in quizzes the catalog starts with (YAML file, Postgres, etc).
type SeedLoader interface {
	LoadSeed(ctx context.Context) ([]domain.Quiz, error)
}

// Predicate selects quizzes when filtering the catalog.
type Predicate func(domain.Quiz) bool

// Catalog is the in-memory, most-recent-first collection of quizzes.
type Catalog struct {
	newID func() string
	now   func() time.Time

	seedOnce sync.Once
	mu       sync.RWMutex
	quizzes  []domain.Quiz
}

// CatalogOption customizes a Catalog.
type CatalogOption func(*Catalog)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) { c.now = now }
}

// WithIDGenerator overrides quiz id generation.
func WithIDGenerator(newID func() string) CatalogOption {
	return func(c *Catalog) { c.newID = newID }
}

func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed populates the catalog from loader. Only the first call has any effect.
func (c *Catalog) Seed(ctx context.Context, loader SeedLoader) error {
	var err error
	c.seedOnce.Do(func() {
		var quizzes []domain.Quiz
		quizzes, err = loader.LoadSeed(ctx)
		if err != nil {
			err = fmt.Errorf("load seed: %w", err)
			return
		}
		now := c.now()
		seeded := make([]domain.Quiz, 0, len(quizzes))
		for _, quiz := range quizzes {
			if verr := checkQuiz(quiz); verr != nil {
				err = fmt.Errorf("seed quiz %q: %w", quiz.ID, verr)
				return
			}
			if quiz.CreatedBy == "" {
				quiz.CreatedBy = domain.SystemAuthor
			}
			if quiz.CreatedAt.IsZero() {
				quiz.CreatedAt = now
			}
			seeded = append(seeded, quiz)
		}

		c.mu.Lock()
		c.quizzes = append(seeded, c.quizzes...)
		c.mu.Unlock()
	})
	return err
}

// Create validates draft and prepends the resulting quiz.
func (c *Catalog) Create(draft domain.QuizDraft, authorID string) (domain.Quiz, error) {
	questions, err := validateDraft(draft)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:          c.newID(),
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Questions:   questions,
		CreatedBy:   authorID,
		CreatedAt:   c.now(),
		Language:    draft.Language,
		Category:    strings.TrimSpace(draft.Category),
	}

	c.mu.Lock()
	c.quizzes = append([]domain.Quiz{quiz}, c.quizzes...)
	c.mu.Unlock()
	return quiz, nil
}

// Find returns the quiz with the given id.
func (c *Catalog) Find(id string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, quiz := range c.quizzes {
		if quiz.ID == id {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// Filter yields the quizzes matching pred. Each iteration walks a snapshot
// taken when it starts, so the sequence can be ranged over repeatedly.
func (c *Catalog) Filter(pred Predicate) iter.Seq[domain.Quiz] {
	return func(yield func(domain.Quiz) bool) {
		for _, quiz := range c.snapshot() {
			if pred != nil && !pred(quiz) {
				continue
			}
			if !yield(quiz) {
				return
			}
		}
	}
}

// List collects Filter(pred) into a slice.
func (c *Catalog) List(pred Predicate) []domain.Quiz {
	out := make([]domain.Quiz, 0)
	for quiz := range c.Filter(pred) {
		out = append(out, quiz)
	}
	return out
}

// Len reports the number of quizzes in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quizzes)
}

func (c *Catalog) snapshot() []domain.Quiz {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Quiz, len(c.quizzes))
	copy(out, c.quizzes)
	return out
}

// MatchSearch matches quizzes whose title or description contains term, ignoring case.
func MatchSearch(term string) Predicate {
	term = strings.ToLower(strings.TrimSpace(term))
	return func(q domain.Quiz) bool {
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(q.Title), term) ||
			strings.Contains(strings.ToLower(q.Description), term)
	}
}

// ByAuthor matches quizzes created by authorID.
func ByAuthor(authorID string) Predicate {
	return func(q domain.Quiz) bool { return q.CreatedBy == authorID }
}

// ByLanguage matches quizzes tagged with lang.
func ByLanguage(lang domain.Language) Predicate {
	return func(q domain.Quiz) bool { return q.Language == lang }
}

// ByCategory matches quizzes whose category equals cat, ignoring case.
func ByCategory(cat string) Predicate {
	return func(q domain.Quiz) bool { return strings.EqualFold(q.Category, cat) }
}

// AllOf matches quizzes accepted by every predicate; nil predicates are skipped.
func AllOf(preds ...Predicate) Predicate {
	return func(q domain.Quiz) bool {
		for _, pred := range preds {
			if pred != nil && !pred(q) {
				return false
			}
		}
		return true
	}
}
