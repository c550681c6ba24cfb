package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"quizplay-service/internal/app"
	"quizplay-service/internal/config"
	"quizplay-service/internal/infra/memory"
	pgseed "quizplay-service/internal/infra/postgres"
	redissession "quizplay-service/internal/infra/redis"
	"quizplay-service/internal/logger"
	transport "quizplay-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log, false); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	catalog, err := seedCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}

	var store app.SessionRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, liveness markers will be skipped", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		store = redissession.NewSessionStore(redisClient, cfg.Redis.TTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewService(store, catalog,
		app.WithLogger(log),
		app.WithFeedbackDelay(cfg.Quiz.FeedbackDelay),
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewRouter(service, log, transport.RouterConfig{
		AllowOrigins: cfg.CORS.AllowOrigins,
		TickInterval: cfg.Quiz.TickInterval,
	})

	// No WriteTimeout: it would also cut long-lived websocket connections.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// seedCatalog builds the catalog from Postgres when configured, then the
// configured seed file, then the built-in sample quizzes.
func seedCatalog(ctx context.Context, cfg config.Config, log *zap.Logger) (*app.Catalog, error) {
	var (
		loader app.SeedLoader
		source string
	)
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		loader, source = pgseed.NewSeedLoader(pool), "postgres"
	case cfg.Quiz.SeedPath != "":
		fileLoader, err := memory.NewFileSeedLoader(cfg.Quiz.SeedPath)
		if err != nil {
			return nil, err
		}
		loader, source = fileLoader, cfg.Quiz.SeedPath
	default:
		loader, source = memory.NewDefaultSeedLoader(), "built-in"
	}

	catalog := app.NewCatalog()
	if err := catalog.Seed(ctx, loader); err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		log.Warn("seed catalog is empty", zap.String("source", source))
	}
	log.Info("catalog seeded", zap.String("source", source), zap.Int("quizzes", catalog.Len()))
	return catalog, nil
}
