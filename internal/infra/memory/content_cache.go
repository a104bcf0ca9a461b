package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/domain"
)

// ContentCache remembers generated content per subject with a TTL so views
// revisiting a topic do not pay for another generation call.
type ContentCache[T any] struct {
	gen   app.Generator[T]
	kind  string
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedContent[T]
}

type cachedContent[T any] struct {
	content   T
	expiresAt time.Time
}

func NewContentCache[T any](kind string, gen app.Generator[T], ttl time.Duration) *ContentCache[T] {
	return &ContentCache[T]{
		gen:   gen,
		kind:  kind,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedContent[T]),
	}
}

func (c *ContentCache[T]) Generate(ctx context.Context, subject domain.Subject) (T, error) {
	key := c.kind + ":" + subject.Key()

	if content, ok := c.lookup(key); ok {
		return content, nil
	}

	// The shared call outlives any one caller: a view that goes away must not
	// cancel the generation others are waiting on.
	shared := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if content, ok := c.lookup(key); ok {
			return content, nil
		}

		content, err := c.gen.Generate(shared, subject)
		if err != nil {
			return content, err
		}

		c.mu.Lock()
		c.cache[key] = cachedContent[T]{
			content:   content,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return content, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Forget drops the cached entry for subject.
func (c *ContentCache[T]) Forget(_ context.Context, subject domain.Subject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, c.kind+":"+subject.Key())
	return nil
}

func (c *ContentCache[T]) lookup(key string) (T, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		return entry.content, true
	}
	var zero T
	return zero, false
}

func (c *ContentCache[T]) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
