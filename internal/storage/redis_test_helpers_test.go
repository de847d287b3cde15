package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	testcontainers "github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/redis/go-redis/v9"
)

// newRedisForTest starts a throwaway Redis and returns a config pointing at it
// plus a client for seeding fixtures.
func newRedisForTest(t *testing.T) (RedisConfig, *redis.Client, func()) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := rediscontainer.Run(ctx, "redis:7.2-alpine")
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("container mapped port: %v", err)
	}

	p, err := strconv.Atoi(port.Port())
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("parse mapped port: %v", err)
	}

	cfg := RedisConfig{
		Host:        host,
		Port:        p,
		MaxRetries:  3,
		DialTimeout: 5 * time.Second,
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":" + strconv.Itoa(p)})

	cleanup := func() {
		_ = client.Close()
		_ = container.Terminate(context.Background())
	}
	return cfg, client, cleanup
}
