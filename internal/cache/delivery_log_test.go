package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisDeliveryLog_RecordSent(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	log := NewRedisDeliveryLog(rdb, 10*time.Second)

	sentAt := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)
	if err := log.RecordSent(context.Background(), "3f0b1c2d", "12345", sentAt); err != nil {
		t.Fatalf("RecordSent() error: %v", err)
	}

	key := "delivery:3f0b1c2d"
	if !mr.Exists(key) {
		t.Fatalf("expected key %q to exist", key)
	}
	if ttl := mr.TTL(key); ttl <= 0 {
		t.Fatalf("expected TTL to be set, got %v", ttl)
	}

	raw, err := mr.Get(key)
	if err != nil {
		t.Fatalf("failed to get key %q: %v", key, err)
	}

	var got sentValue
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("failed to unmarshal value: %v", err)
	}
	if got.ThreadTarget != "12345" {
		t.Fatalf("expected threadTarget %q, got %q", "12345", got.ThreadTarget)
	}
	if !got.SentAt.Equal(sentAt) {
		t.Fatalf("expected sentAt %v, got %v", sentAt, got.SentAt)
	}
}

func TestRedisDeliveryLog_RecordSent_ContextCanceled(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	log := NewRedisDeliveryLog(rdb, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := log.RecordSent(ctx, "x", "100", time.Now()); err == nil {
		t.Fatalf("expected error due to canceled context, got nil")
	}
}
