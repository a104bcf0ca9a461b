package integration

import (
	"context"
	"database/sql"
	"errors"
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

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/infra/memory"
	pgstore "studyplan-engine/internal/infra/postgres"
	pgmigrations "studyplan-engine/internal/infra/postgres/migrations"
	infraredis "studyplan-engine/internal/infra/redis"
)

func TestStudyEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := pgstore.NewStore(pool, nil)
	seed(t, ctx, store, pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	quizzes := infraredis.NewContentCache[[]domain.Question](redisClient, "quiz", memory.NewStaticGenerator(map[string][]domain.Question{
		"Types": {{Prompt: "Is int64 signed?", Options: []string{"No", "Yes"}, Answer: "Yes"}},
	}), 5*time.Minute, nil)
	decks := infraredis.NewContentCache[[]domain.Card](redisClient, "flashcards", memory.NewStaticGenerator(map[string][]domain.Card{}), 5*time.Minute, nil)

	service := app.NewStudyService(app.Dependencies{
		Roadmaps:   store,
		Sets:       store,
		Deleter:    store,
		Workspaces: infraredis.NewWorkspaceStore(redisClient, 5*time.Minute),
		Quizzes:    quizzes,
		Decks:      decks,
	})

	w, err := service.Open(ctx, "u1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer service.Close(w.ID)

	summary := w.Library.Summary()
	if len(summary.Roadmaps) != 1 || len(summary.Quizzes) != 1 {
		t.Fatalf("unexpected library %+v", summary)
	}
	// The malformed progress column decodes as all-incomplete.
	if got := summary.Roadmaps[0].Progress; got.Total != 3 || got.Completed != 0 {
		t.Fatalf("unexpected progress %+v", got)
	}

	tracker, err := w.OpenRoadmap(ctx, "r1")
	if err != nil {
		t.Fatalf("open roadmap: %v", err)
	}
	if err := tracker.ToggleCurrent(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	reloaded, err := store.GetRoadmap(ctx, "r1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := app.Summarize(reloaded).Progress; got.Completed != 1 || got.Percent != 33 {
		t.Fatalf("expected 1/3 (33%%) after toggle, got %+v", got)
	}

	w.Study.ShowTab(ctx, app.TabQuiz)
	w.Study.Select(ctx, domain.Subject{Topic: "Types", Explanation: "Go's built-in types."})
	w.Study.Wait()
	if total := w.Study.View().Quiz.Total; total != 1 {
		t.Fatalf("expected generated quiz, got %d questions", total)
	}
	if n, _ := redisClient.Exists(ctx, "study:content:quiz:Types").Result(); n != 1 {
		t.Fatalf("expected quiz cached in redis")
	}

	if _, err := w.Deletes.RequestDelete(domain.KindQuiz, true, "", ""); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if err := w.Deletes.Confirm(ctx); err != nil {
		t.Fatalf("confirm delete: %v", err)
	}
	left, err := store.ListQuizSets(ctx, "u1")
	if err != nil {
		t.Fatalf("list quiz sets: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected quiz sets deleted, got %d", len(left))
	}
	if _, err := store.GetRoadmap(ctx, "missing"); !errors.Is(err, domain.ErrRoadmapNotFound) {
		t.Fatalf("expected ErrRoadmapNotFound, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "study", "POSTGRES_PASSWORD": "studypass", "POSTGRES_DB": "studydb"},
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
	dsn := fmt.Sprintf("postgres://study:studypass@%s:%s/studydb?sslmode=disable", host, port.Port())
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

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
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
}

func seed(t *testing.T, ctx context.Context, store *pgstore.Store, pool *pgxpool.Pool) {
	t.Helper()
	err := store.SaveRoadmap(ctx, domain.Roadmap{
		ID:    "r1",
		Owner: "u1",
		Title: "Go in a month",
		Weeks: []domain.Week{{ID: "w1", Position: 1, Title: "Basics", Topics: []string{"Types", "Slices", "Maps"}}},
	})
	if err != nil {
		t.Fatalf("save roadmap: %v", err)
	}
	if _, err := pool.Exec(ctx, `UPDATE roadmap_weeks SET progress='not json' WHERE id='w1'`); err != nil {
		t.Fatalf("corrupt progress: %v", err)
	}
	if err := store.SaveQuizSet(ctx, domain.QuizSet{
		ID:        "q1",
		Owner:     "u1",
		Title:     "Go basics",
		Questions: []domain.Question{{Prompt: "2+2?", Options: []string{"3", "4"}, Answer: "4"}},
	}); err != nil {
		t.Fatalf("save quiz set: %v", err)
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
