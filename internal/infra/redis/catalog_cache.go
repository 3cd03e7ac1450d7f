package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"atelier-learning-service/internal/app"
	"atelier-learning-service/internal/domain"
)

// CatalogCache is a read-through cache in front of a catalog store. Entries
// are stored as JSON values under catalog:* keys with jittered TTLs, and
// concurrent misses for the same key collapse into one source read.
//
// Not-found results are never cached, so a module created after a miss shows
// up on the next read.
type CatalogCache struct {
	client *redis.Client
	source app.CatalogStore
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogCache(client *redis.Client, source app.CatalogStore, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) ListModules(ctx context.Context) ([]domain.Module, error) {
	var modules []domain.Module
	err := c.cached(ctx, "catalog:modules", &modules, func() (interface{}, error) {
		return c.source.ListModules(ctx)
	})
	return modules, err
}

func (c *CatalogCache) GetModule(ctx context.Context, moduleID string) (domain.Module, error) {
	var module domain.Module
	err := c.cached(ctx, "catalog:module:"+moduleID, &module, func() (interface{}, error) {
		return c.source.GetModule(ctx, moduleID)
	})
	return module, err
}

func (c *CatalogCache) ListLessons(ctx context.Context, moduleID string) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	err := c.cached(ctx, "catalog:module:"+moduleID+":lessons", &lessons, func() (interface{}, error) {
		return c.source.ListLessons(ctx, moduleID)
	})
	return lessons, err
}

func (c *CatalogCache) ListQuizQuestions(ctx context.Context, moduleID string) ([]domain.QuizQuestion, error) {
	var questions []domain.QuizQuestion
	err := c.cached(ctx, "catalog:module:"+moduleID+":quiz", &questions, func() (interface{}, error) {
		return c.source.ListQuizQuestions(ctx, moduleID)
	})
	return questions, err
}

func (c *CatalogCache) CountQuizQuestions(ctx context.Context, moduleID string) (int, error) {
	var count int
	err := c.cached(ctx, "catalog:module:"+moduleID+":quizcount", &count, func() (interface{}, error) {
		return c.source.CountQuizQuestions(ctx, moduleID)
	})
	return count, err
}

// cached fills out from the cache key, falling back to load on a miss. The
// loaded value is written back with a jittered TTL; cache write failures are
// ignored since the source result is already in hand.
func (c *CatalogCache) cached(ctx context.Context, key string, out interface{}, load func() (interface{}, error)) error {
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		if err := json.Unmarshal(raw, out); err == nil {
			return nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			return raw, nil
		}

		value, err := load()
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		return raw, nil
	})
	if err != nil {
		return err
	}
	raw, ok := result.([]byte)
	if !ok {
		return errors.New("unexpected cache result type")
	}
	return json.Unmarshal(raw, out)
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
