package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
	"quizplay-service/internal/app"
	"quizplay-service/internal/config"
	"quizplay-service/internal/infra/memory"
	pgseed "quizplay-service/internal/infra/postgres"
	pgmigrations "quizplay-service/internal/infra/postgres/migrations"
	"quizplay-service/internal/logger"
)

// NewMigrateCmd applies database migrations and optionally imports the seed catalog.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "import the seed quizzes (quiz.seed_path or the built-in set) into seed_quizzes")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, seed bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	return runMigrationsWithConfig(ctx, cfg, log, seed)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *zap.Logger, seed bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
	} else {
		log.Info("migrations applied", zap.String("group", group.String()))
	}

	if !seed {
		return nil
	}
	var loader app.SeedLoader = memory.NewDefaultSeedLoader()
	if cfg.Quiz.SeedPath != "" {
		fileLoader, err := memory.NewFileSeedLoader(cfg.Quiz.SeedPath)
		if err != nil {
			return err
		}
		loader = fileLoader
	}
	quizzes, err := loader.LoadSeed(ctx)
	if err != nil {
		return err
	}
	if err := pgseed.ImportSeed(ctx, db, quizzes); err != nil {
		return err
	}
	log.Info("seed quizzes imported", zap.Int("quizzes", len(quizzes)))
	return nil
}
