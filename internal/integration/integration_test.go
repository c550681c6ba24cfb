package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quizplay-service/internal/app"
	"quizplay-service/internal/domain"
	"quizplay-service/internal/infra/memory"
	pgseed "quizplay-service/internal/infra/postgres"
	pgmigrations "quizplay-service/internal/infra/postgres/migrations"
	infraredis "quizplay-service/internal/infra/redis"
)

func TestSeededAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedDatabase(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	catalog := app.NewCatalog()
	if err := catalog.Seed(ctx, pgseed.NewSeedLoader(pool)); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	if catalog.Len() != 7 {
		t.Fatalf("expected 7 seeded quizzes, got %d", catalog.Len())
	}
	first := catalog.List(nil)[0]
	if first.ID != "english-1" {
		t.Fatalf("expected seed order preserved, first=%s", first.ID)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewService(sessionStore, catalog)

	service.Open(ctx, "tab-1")
	if n, err := redisClient.Exists(ctx, "quiz:ui-session:tab-1").Result(); err != nil || n != 1 {
		t.Fatalf("expected liveness marker, n=%d err=%v", n, err)
	}

	actions := []app.Action{
		app.Login{Identity: domain.Identity{Name: "Alice", Email: "alice@example.com"}},
		app.Navigate{Target: app.TakePrefix + first.ID},
	}
	for _, q := range first.Questions {
		actions = append(actions, app.SelectAnswer{Index: q.CorrectAnswer}, app.Advance{})
	}
	for _, a := range actions {
		if err := service.Dispatch(ctx, "tab-1", a); err != nil {
			t.Fatalf("dispatch %T: %v", a, err)
		}
	}

	view := service.Open(ctx, "tab-1")
	if view.Page != domain.PageResults || view.Result == nil {
		t.Fatalf("expected results page, got %s", view.Page)
	}
	if view.Result.Score != len(first.Questions) || view.Result.Tier != app.TierExcellent {
		t.Fatalf("expected a perfect score, got %+v", view.Result)
	}

	service.Leave(ctx, "tab-1")
	if n, _ := redisClient.Exists(ctx, "quiz:ui-session:tab-1").Result(); n != 0 {
		t.Fatalf("expected liveness marker removed")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

// seedDatabase migrates the schema and imports the built-in quizzes, twice to
// check the import is an upsert.
func seedDatabase(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	quizzes, err := memory.NewDefaultSeedLoader().LoadSeed(ctx)
	if err != nil {
		t.Fatalf("load default seed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := pgseed.ImportSeed(ctx, db, quizzes); err != nil {
			t.Fatalf("import seed: %v", err)
		}
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
