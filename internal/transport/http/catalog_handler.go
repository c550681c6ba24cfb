package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quizplay-service/internal/app"
	"quizplay-service/internal/domain"
)

// CatalogHandler serves read-only catalog listings over REST.
type CatalogHandler struct {
	catalog *app.Catalog
	log     *zap.Logger
}

func NewCatalogHandler(catalog *app.Catalog, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

type quizDetail struct {
	app.QuizSummary
	Questions []app.QuestionView `json:"questions"`
}

// ListQuizzes handles GET /api/quizzes?search=&language=&category=&author=.
func (h *CatalogHandler) ListQuizzes(c *gin.Context) {
	pred := app.AllOf(
		app.MatchSearch(c.Query("search")),
		optional(c.Query("language"), func(v string) app.Predicate { return app.ByLanguage(domain.Language(v)) }),
		optional(c.Query("category"), app.ByCategory),
		optional(c.Query("author"), app.ByAuthor),
	)

	out := make([]app.QuizSummary, 0)
	for q := range h.catalog.Filter(pred) {
		out = append(out, app.Summarize(q))
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": out, "total": len(out)})
}

// GetQuiz handles GET /api/quizzes/:id. Correct answers are never included.
func (h *CatalogHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.catalog.Find(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("get quiz", zap.String("quiz", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	questions := make([]app.QuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, app.QuestionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options})
	}
	c.JSON(http.StatusOK, quizDetail{QuizSummary: app.Summarize(quiz), Questions: questions})
}

func optional(value string, build func(string) app.Predicate) app.Predicate {
	if value == "" {
		return nil
	}
	return build(value)
}
