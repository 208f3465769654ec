package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"studentnest/internal/models"
)

// RedisPublisher publishes stored notifications on a Redis pub/sub channel
// so that other processes (push gateways, websocket fan-out) can pick them up
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *logrus.Logger
}

func NewRedisPublisher(addr, channel string, logger *logrus.Logger) *RedisPublisher {
	if logger == nil {
		logger = logrus.New()
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	logger.WithFields(logrus.Fields{
		"addr":    addr,
		"channel": channel,
	}).Info("Redis notification publisher initialized")

	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Notify publishes the notification as JSON
func (r *RedisPublisher) Notify(ctx context.Context, n *models.Notification) error {
	payload, err := Encode(n)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

func (r *RedisPublisher) Close() error {
	return r.client.Close()
}

// Encode renders a notification in the wire format used on the channel
func Encode(n *models.Notification) ([]byte, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return payload, nil
}
