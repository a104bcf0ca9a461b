package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/config"
	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/generator"
	"studyplan-engine/internal/infra/memory"
	pgstore "studyplan-engine/internal/infra/postgres"
	rediscache "studyplan-engine/internal/infra/redis"
)

// storage is the combined store the service reads from and deletes through.
type storage interface {
	app.RoadmapStore
	app.LibraryStore
	app.Deleter
}

// openStorage returns the Postgres store when configured, otherwise an
// in-memory store seeded with a demo roadmap. The returned func releases it.
func openStorage(ctx context.Context, cfg config.Config, log *zap.Logger) (storage, func(), error) {
	if cfg.Postgres.URL == "" {
		log.Info("postgres not configured, using in-memory storage")
		return demoStore(), func() {}, nil
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	return pgstore.NewStore(pool, log), pool.Close, nil
}

func openRedis(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// buildGenerators picks the content provider and puts a cache in front of it.
func buildGenerators(cfg config.Config, redisClient *redis.Client, log *zap.Logger) (app.QuizGenerator, app.DeckGenerator, error) {
	var (
		quizzes app.QuizGenerator
		decks   app.DeckGenerator
	)
	switch cfg.Generator.Provider {
	case "openai":
		client, err := generator.NewClient(generator.Config{
			APIKey:  cfg.Generator.APIKey,
			BaseURL: cfg.Generator.BaseURL,
			Model:   cfg.Generator.Model,
			Timeout: config.Duration(cfg.Generator.Timeout, 60*time.Second),
		}, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using openai-compatible generator", zap.String("model", client.Model()))
		quizzes = generator.NewQuizGenerator(client)
		decks = generator.NewDeckGenerator(client)
	default:
		log.Info("using static generator")
		quizzes = memory.NewStaticGenerator(demoQuizzes())
		decks = memory.NewStaticGenerator(demoDecks())
	}

	ttl := config.Duration(cfg.Cache.TTL, 24*time.Hour)
	if redisClient != nil {
		return rediscache.NewContentCache[[]domain.Question](redisClient, "quiz", quizzes, ttl, log),
			rediscache.NewContentCache[[]domain.Card](redisClient, "flashcards", decks, ttl, log),
			nil
	}
	return memory.NewContentCache[[]domain.Question]("quiz", quizzes, ttl),
		memory.NewContentCache[[]domain.Card]("flashcards", decks, ttl),
		nil
}

func buildWorkspaces(cfg config.Config, redisClient *redis.Client) app.WorkspaceRepository {
	if redisClient != nil {
		return rediscache.NewWorkspaceStore(redisClient, config.Duration(cfg.Redis.TTL, 10*time.Minute))
	}
	return memory.NewWorkspaceStore()
}

// demoStore provides a minimal roadmap for the "demo" learner; point
// postgres.url at a real database in production.
func demoStore() *memory.Store {
	s := memory.NewStore()
	s.PutRoadmap(domain.Roadmap{
		ID:    "demo-roadmap",
		Owner: "demo",
		Title: "Learn Go",
		Goal:  "Write a concurrent service",
		Weeks: []domain.Week{
			{ID: "demo-w1", Position: 1, Title: "Foundations", Topics: []string{"Types", "Slices"}},
			{ID: "demo-w2", Position: 2, Title: "Concurrency", Topics: []string{"Goroutines", "Channels"}},
		},
	})
	return s
}

func demoQuizzes() map[string][]domain.Question {
	return map[string][]domain.Question{
		"Types": {
			{Prompt: "Which type holds a signed 64-bit integer?", Options: []string{"uint64", "int64", "float64"}, Answer: "int64"},
		},
		"Goroutines": {
			{Prompt: "What starts a goroutine?", Options: []string{"go", "async", "spawn"}, Answer: "go"},
		},
	}
}

func demoDecks() map[string][]domain.Card {
	return map[string][]domain.Card{
		"Slices": {
			{Front: "What does append return?", Back: "The updated slice"},
			{Front: "What is len of a nil slice?", Back: "0"},
		},
		"Channels": {
			{Front: "What happens on send to a closed channel?", Back: "It panics"},
		},
	}
}
