package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/gridiron/internal/service"
	"github.com/redis/go-redis/v9"
)

const (
	// RosterStream receives one entry per roster build.
	RosterStream = "roster.events.nfl"

	defaultMaxLen = 1000
)

// RedisPublisher publishes roster events to a Redis stream
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisPublisher connects to redisURL and verifies the connection
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewRedisStreamPublisher(client), nil
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		stream: RosterStream,
		maxLen: defaultMaxLen,
	}
}

// NotifyRosterBuilt appends event to the roster stream. The stream is
// trimmed to roughly the last thousand entries.
func (rp *RedisPublisher) NotifyRosterBuilt(ctx context.Context, event service.RosterEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rp.stream,
		MaxLen: rp.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":      "roster_built",
			"season":    event.Season,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// HealthCheck pings Redis to verify connection
func (rp *RedisPublisher) HealthCheck(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}
