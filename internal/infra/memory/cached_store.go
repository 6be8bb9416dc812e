package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-authoring-service/internal/app"
	"quiz-authoring-service/internal/domain"
)

// CachedStore caches aggregates from a backing store with a TTL to avoid
// repeated DB hits. Writes go through to the backing store and drop the
// cached entry.
type CachedStore struct {
	backing app.QuizStore
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rndMu   sync.Mutex
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
	// writes counts Put/Delete calls; a load that raced a write is not cached.
	writes uint64
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewCachedStore(backing app.QuizStore, ttl time.Duration) *CachedStore {
	return &CachedStore{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedQuiz),
	}
}

func (c *CachedStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(id); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if quiz, ok := c.lookup(id); ok {
			return quiz, nil
		}

		c.mu.RLock()
		writes := c.writes
		c.mu.RUnlock()

		quiz, err := c.backing.Get(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			if c.writes == writes {
				c.cache[id] = cachedQuiz{quiz: quiz.Clone(), expiresAt: c.clock().Add(ttl)}
			}
			c.mu.Unlock()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz).Clone(), nil
}

func (c *CachedStore) Put(ctx context.Context, quiz domain.Quiz) error {
	c.invalidate(quiz.ID)
	err := c.backing.Put(ctx, quiz)
	c.invalidate(quiz.ID)
	return err
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	c.invalidate(id)
	err := c.backing.Delete(ctx, id)
	c.invalidate(id)
	return err
}

// List always reads the backing store.
func (c *CachedStore) List(ctx context.Context) ([]domain.Quiz, error) {
	return c.backing.List(ctx)
}

func (c *CachedStore) lookup(id string) (domain.Quiz, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Quiz{}, false
	}
	return entry.quiz.Clone(), true
}

func (c *CachedStore) invalidate(id string) {
	c.mu.Lock()
	delete(c.cache, id)
	c.writes++
	c.mu.Unlock()
	c.sf.Forget(id)
}

func (c *CachedStore) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
