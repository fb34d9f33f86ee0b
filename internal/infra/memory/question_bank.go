package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"assessment-engine/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches question records from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadLevels(ctx context.Context) ([]string, error)
	LoadLevel(ctx context.Context, level string) ([]domain.QuestionRecord, error)
}

// QuestionBank caches level question lists with TTL to avoid repeated DB hits.
type QuestionBank struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu     sync.RWMutex
	rnd    *rand.Rand
	levels cachedLevels
	cache  map[string]cachedLevel
}

type cachedLevel struct {
	questions []domain.QuestionRecord
	expiresAt time.Time
}

type cachedLevels struct {
	levels    []string
	expiresAt time.Time
}

func NewQuestionBank(loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedLevel),
	}
}

func (b *QuestionBank) QuestionsByLevel(ctx context.Context, level string) ([]domain.QuestionRecord, error) {
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[level]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("level:"+level, func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[level]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		questions, err := b.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			// unknown levels are not cached so a later upload shows up immediately
			return questions, nil
		}

		b.mu.Lock()
		b.cache[level] = cachedLevel{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitterLocked()),
		}
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionRecord), nil
}

func (b *QuestionBank) Levels(ctx context.Context) ([]string, error) {
	now := b.clock()

	b.mu.RLock()
	if b.levels.expiresAt.After(now) {
		levels := b.levels.levels
		b.mu.RUnlock()
		return levels, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("levels", func() (interface{}, error) {
		levels, err := b.loader.LoadLevels(ctx)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.levels = cachedLevels{levels: levels, expiresAt: now.Add(b.ttlWithJitterLocked())}
		b.mu.Unlock()
		return levels, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Invalidate drops the given levels and the level list.
func (b *QuestionBank) Invalidate(_ context.Context, levels ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, level := range levels {
		delete(b.cache, level)
	}
	b.levels = cachedLevels{}
}

func (b *QuestionBank) ttlWithJitterLocked() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
