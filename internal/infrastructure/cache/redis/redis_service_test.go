// internal/infrastructure/cache/redis/redis_service_test.go
package redis

import (
	"context"
	"testing"
	"time"

	"github.com/TAG-Epic/shitpost/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

func unreachable() config.RedisConfig {
	return config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        1,
		PoolSize:    1,
		DialTimeout: 100 * time.Millisecond,
		ReadTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}
}

func TestStartFailsWithoutServer(t *testing.T) {
	rs := NewRedisService(unreachable())

	if err := rs.Start(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
	if rs.State() != StateError {
		t.Fatalf("state = %s", rs.State())
	}
	if rs.GetCache() != nil || rs.HealthCheck() {
		t.Fatal("failed service must not expose a cache")
	}
	if err := rs.Stop(); err != nil {
		t.Fatalf("Stop on failed service: %v", err)
	}
}

func TestCachePropagatesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()
	cache := NewCacheWithClient(client, "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := cache.MarkInteraction(ctx, "1", time.Minute); err == nil {
		t.Fatal("expected error from MarkInteraction")
	}
	if _, err := cache.GetCommandHash(ctx, "app"); err == nil {
		t.Fatal("connection error must not look like a missing hash")
	}
}

func TestCachePrefix(t *testing.T) {
	if got := NewCacheWithClient(nil, "").Prefix(); got != defaultPrefix {
		t.Fatalf("prefix = %q", got)
	}
	if got := NewCacheWithClient(nil, "test:").Prefix(); got != "test:" {
		t.Fatalf("prefix = %q", got)
	}
}
