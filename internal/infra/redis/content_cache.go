package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/domain"
)

// ContentCache stores generated content in Redis as JSON, one key per kind
// and subject, and falls back to the generator on a miss:
//
//	SET study:content:{kind}:{topic} <json> EX <ttl>
//
// Cache errors never fail a request; they only cost a generation call.
type ContentCache[T any] struct {
	client *redis.Client
	gen    app.Generator[T]
	kind   string
	ttl    time.Duration
	log    *zap.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewContentCache[T any](client *redis.Client, kind string, gen app.Generator[T], ttl time.Duration, log *zap.Logger) *ContentCache[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContentCache[T]{
		client: client,
		gen:    gen,
		kind:   kind,
		ttl:    ttl,
		log:    log.With(zap.String("cache", kind)),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ContentCache[T]) Generate(ctx context.Context, subject domain.Subject) (T, error) {
	key := c.key(subject)

	if content, ok := c.read(ctx, key); ok {
		return content, nil
	}

	// Detached so one caller going away does not fail the others sharing the call.
	shared := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if content, ok := c.read(shared, key); ok {
			return content, nil
		}

		content, err := c.gen.Generate(shared, subject)
		if err != nil {
			return content, err
		}

		payload, err := json.Marshal(content)
		if err != nil {
			c.log.Warn("encode content", zap.String("key", key), zap.Error(err))
			return content, nil
		}
		if err := c.client.Set(shared, key, payload, c.ttlWithJitter()).Err(); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return content, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Forget drops the cached entry for subject.
func (c *ContentCache[T]) Forget(ctx context.Context, subject domain.Subject) error {
	return c.client.Del(ctx, c.key(subject)).Err()
}

func (c *ContentCache[T]) read(ctx context.Context, key string) (T, bool) {
	var content T
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return content, false
	}
	if err := json.Unmarshal(data, &content); err != nil {
		c.log.Debug("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return content, false
	}
	return content, true
}

func (c *ContentCache[T]) key(subject domain.Subject) string {
	return "study:content:" + c.kind + ":" + subject.Key()
}

func (c *ContentCache[T]) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
