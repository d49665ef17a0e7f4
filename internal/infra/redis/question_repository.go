package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"drivetest-quiz/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the question pool from a backing store (file, Postgres, ...).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// PoolKey holds the JSON-encoded, already validated question pool.
const PoolKey = "quiz:pool"

// QuestionRepository caches the pool in Redis and falls back to a loader on cache miss.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context) ([]domain.Question, error) {
	if pool, ok := r.fromCache(ctx); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(PoolKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := r.fromCache(ctx); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if err := domain.ValidatePool(pool); err != nil {
			return nil, fmt.Errorf("validate pool: %w", err)
		}

		if raw, err := json.Marshal(pool); err == nil {
			// best-effort fill; a failed write only costs another load
			_ = r.client.Set(ctx, PoolKey, raw, r.ttlWithJitter()).Err()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) fromCache(ctx context.Context) ([]domain.Question, bool) {
	raw, err := r.client.Get(ctx, PoolKey).Bytes()
	if err != nil {
		return nil, false
	}
	var pool []domain.Question
	if err := json.Unmarshal(raw, &pool); err != nil || len(pool) == 0 {
		return nil, false
	}
	// the key may be written by other processes
	if err := domain.ValidatePool(pool); err != nil {
		return nil, false
	}
	return pool, true
}

// Invalidate drops the cached pool so the next read reloads it.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, PoolKey).Err()
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
