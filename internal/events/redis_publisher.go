package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/persistence"
)

// RedisPublisher mirrors catalog events onto a Redis pub/sub channel
// for external consumers. Publish failures are logged, never surfaced.
type RedisPublisher struct {
	rds     *persistence.Redis
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher creates a publisher.
func NewRedisPublisher(rds *persistence.Redis, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rds: rds, channel: channel, logger: logger}
}

// RegisterHandlers subscribes the publisher to the full event stream.
func (p *RedisPublisher) RegisterHandlers(dispatcher Dispatcher) {
	if dispatcher == nil || p.rds == nil {
		return
	}
	dispatcher.SubscribeAll(p.handle)
}

func (p *RedisPublisher) handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("encode event", zap.Error(err))
		return err
	}
	if err := p.rds.Publish(ctx, p.channel, payload); err != nil {
		p.logger.Warn("publish event to redis",
			zap.String("channel", p.channel),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
