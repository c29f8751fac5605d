package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryLog records successful deliveries for quick operator lookup
// without scanning the persisted queue image.
type DeliveryLog interface {
	RecordSent(ctx context.Context, messageID, threadTarget string, sentAt time.Time) error
}

type RedisDeliveryLog struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeliveryLog(rdb *redis.Client, ttl time.Duration) *RedisDeliveryLog {
	return &RedisDeliveryLog{rdb: rdb, ttl: ttl}
}

type sentValue struct {
	ThreadTarget string    `json:"threadTarget"`
	SentAt       time.Time `json:"sentAt"`
}

func (l *RedisDeliveryLog) RecordSent(ctx context.Context, messageID, threadTarget string, sentAt time.Time) error {
	key := fmt.Sprintf("delivery:%s", messageID)
	val := sentValue{
		ThreadTarget: threadTarget,
		SentAt:       sentAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return l.rdb.Set(ctx, key, b, l.ttl).Err()
}
