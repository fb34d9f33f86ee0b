package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"assessment-engine/internal/domain"
	"assessment-engine/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionBank caches level question lists in Redis and falls back to a loader on cache miss.
// Questions are stored as:  RPUSH assessment:level:{level}:questions {json}...
// Levels are stored as:     ZADD  assessment:levels 0 {level}   (lexicographic range)
type QuestionBank struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) QuestionsByLevel(ctx context.Context, level string) ([]domain.QuestionRecord, error) {
	key := b.levelKey(level)
	if cached, ok := b.readLevel(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := b.readLevel(ctx, key); ok {
			return cached, nil
		}

		questions, err := b.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return questions, nil
		}

		values := make([]interface{}, 0, len(questions))
		for _, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			values = append(values, raw)
		}
		pipe := b.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, values...)
		if ttl := b.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("cache level %s: %v", level, err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionRecord), nil
}

func (b *QuestionBank) readLevel(ctx context.Context, key string) ([]domain.QuestionRecord, bool) {
	raw, err := b.client.LRange(ctx, key, 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	questions := make([]domain.QuestionRecord, 0, len(raw))
	for _, item := range raw {
		var q domain.QuestionRecord
		if err := json.Unmarshal([]byte(item), &q); err != nil {
			return nil, false
		}
		questions = append(questions, q)
	}
	return questions, true
}

func (b *QuestionBank) Levels(ctx context.Context) ([]string, error) {
	key := b.levelsKey()
	levels, err := b.client.ZRangeByLex(ctx, key, &redis.ZRangeBy{Min: "-", Max: "+"}).Result()
	if err == nil && len(levels) > 0 {
		return levels, nil
	}

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		levels, err := b.loader.LoadLevels(ctx)
		if err != nil {
			return nil, err
		}
		if len(levels) == 0 {
			return levels, nil
		}
		members := make([]redis.Z, 0, len(levels))
		for _, level := range levels {
			members = append(members, redis.Z{Score: 0, Member: level})
		}
		pipe := b.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.ZAdd(ctx, key, members...)
		if ttl := b.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("cache levels: %v", err)
		}
		return levels, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Invalidate drops cached levels so the next read goes to the loader.
func (b *QuestionBank) Invalidate(ctx context.Context, levels ...string) {
	keys := []string{b.levelsKey()}
	for _, level := range levels {
		keys = append(keys, b.levelKey(level))
	}
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("invalidate question cache: %v", err)
	}
}

func (b *QuestionBank) levelKey(level string) string {
	return "assessment:level:" + level + ":questions"
}

func (b *QuestionBank) levelsKey() string {
	return "assessment:levels"
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
