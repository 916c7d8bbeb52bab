package worker

import (
	"context"

	"github.com/astraid/intervox-backend/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisNotifier fans out state-change events over Redis PubSub so every
// server instance can push fresh snapshots to its websocket subscribers.
type RedisNotifier struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(rdb *redis.Client, log zerolog.Logger) *RedisNotifier {
	return &RedisNotifier{
		rdb: rdb,
		log: log.With().Str("component", "state_notifier").Logger(),
	}
}

// NotifyStateChange publishes to the session's event channel. Delivery is
// best effort; subscribers re-read the full snapshot on every event.
func (n *RedisNotifier) NotifyStateChange(ctx context.Context, interviewID uuid.UUID) {
	channel := config.CacheKey.InterviewEventsChannel(interviewID.String())
	if err := n.rdb.Publish(ctx, channel, "state_changed").Err(); err != nil {
		n.log.Error().Err(err).
			Str("interview_id", interviewID.String()).
			Msg("Publish error")
	}
}
