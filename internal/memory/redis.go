package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "docflow:conversation:"

// RedisBackend stores each session as a Redis list. Sessions expire after
// ttl without new messages; zero keeps them forever.
type RedisBackend struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisBackend(client redis.Cmdable, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (b *RedisBackend) Append(ctx context.Context, sessionID string, msg Message, maxHistory int) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := redisKeyPrefix + sessionID
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if maxHistory > 0 {
			pipe.LTrim(ctx, key, int64(-maxHistory), -1)
		}
		if b.ttl > 0 {
			pipe.Expire(ctx, key, b.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (b *RedisBackend) History(ctx context.Context, sessionID string) ([]Message, error) {
	raw, err := b.client.LRange(ctx, redisKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decoding stored message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}
