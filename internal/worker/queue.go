package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/astraid/intervox-backend/internal/config"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/redis/go-redis/v9"
)

// RedisQueue is the producer side of evaluate_answers_queue.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue creates a new RedisQueue.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Enqueue pushes one scoring task for the worker to consume.
func (q *RedisQueue) Enqueue(ctx context.Context, task service.EvaluationTask) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal evaluation task: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.EvaluateAnswersQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue evaluation task: %w", err)
	}
	return nil
}

// Purge drops all pending scoring tasks.
func (q *RedisQueue) Purge(ctx context.Context) error {
	return q.rdb.Del(ctx, config.WorkerKey.EvaluateAnswersQueue).Err()
}
