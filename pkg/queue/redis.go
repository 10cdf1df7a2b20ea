package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDriver is a durable queue driver backed by a Redis list.
// Push does LPUSH, Pop does a blocking BRPOP, so jobs survive restarts and
// multiple worker processes can share the same queue.
type RedisDriver struct {
	client *redis.Client
	key    string
}

// NewRedisDriver creates a driver using client and the given list key.
func NewRedisDriver(client *redis.Client, key string) *RedisDriver {
	if key == "" {
		key = "arthome:queue:default"
	}
	return &RedisDriver{client: client, key: key}
}

func (d *RedisDriver) Push(payload []byte) error {
	return d.client.LPush(context.Background(), d.key, payload).Err()
}

func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.client.BRPop(ctx, 2*time.Second, d.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // timeout, no job available
		}
		return nil, err
	}
	// BRPop returns [key, value]
	if len(res) != 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}
