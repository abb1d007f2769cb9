package alerting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/raeyennuttall1/pumpfun-motion-alerts/internal/domain"
)

// RedisSink publishes alerts as JSON over Redis pub/sub so downstream
// consumers (notifier bots, dashboards) can subscribe by tier or firehose.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink creates a sink publishing to the given Redis address.
func NewRedisSink(addr string) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
	}
}

// Record publishes the alert to the firehose and the tier-specific channel.
func (s *RedisSink) Record(ctx context.Context, alert *domain.AlertRecord) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	channels := []string{
		"alerts:all",
		fmt.Sprintf("alerts:tier:%d", int(alert.Tier)),
	}

	pipe := s.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

var _ AlertSink = (*RedisSink)(nil)
