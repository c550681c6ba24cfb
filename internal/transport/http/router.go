package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"quizplay-service/internal/app"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	AllowOrigins []string
	TickInterval time.Duration
}

// NewRouter wires the health check, websocket endpoint and catalog REST API.
func NewRouter(service *app.Service, log *zap.Logger, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	if len(cfg.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowOrigins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	wsHandler := NewWSHandler(service, log, cfg.TickInterval)
	router.GET("/ws", gin.WrapF(wsHandler.ServeWS))

	catalogHandler := NewCatalogHandler(service.Catalog(), log)
	api := router.Group("/api")
	{
		quizzes := api.Group("/quizzes")
		quizzes.GET("", catalogHandler.ListQuizzes)
		quizzes.GET("/:id", catalogHandler.GetQuiz)
	}
	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
