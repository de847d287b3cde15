package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

const (
	defaultRedisPort        = 6379
	defaultRedisMaxRetries  = 3
	defaultRedisDialTimeout = 5 * time.Second

	// DefaultRedisKeyPrefix prefixes the sorted set that holds one session.
	DefaultRedisKeyPrefix = "ttyreplay:session:"

	// redisHeaderLen is seq(8) + marker(8) ahead of the payload in each member.
	redisHeaderLen = 16
)

// RedisConfig configures the Redis record store.
//
// A session is a sorted set at KeyPrefix+sessionID. The score is the
// ordering key written by the capture side (sequence number for relative
// datasets, timestamp for absolute ones); each member is an 8-byte
// big-endian sequence number, an 8-byte big-endian marker, then the payload.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Cluster      bool
	ClusterNodes []string
	MaxRetries   int
	DialTimeout  time.Duration
	KeyPrefix    string
}

// RedisStore reads sessions from Redis sorted sets.
type RedisStore struct {
	conf *RedisConfig
	mode timing.Mode
}

// NewRedisStore validates cfg. The client is created per FetchSession call.
func NewRedisStore(cfg RedisConfig, mode timing.Mode) (*RedisStore, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	conf, err := normalizeRedisConfig(&cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidConfig, "redis config", err)
	}
	return &RedisStore{conf: conf, mode: mode}, nil
}

// FetchSession reads the whole sorted set for sessionID in score order.
// Absolute datasets are then ordered by the decoded timestamp.
func (s *RedisStore) FetchSession(ctx context.Context, sessionID string) ([]session.Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	client := newRedisClient(s.conf)
	defer client.Close()

	if err := pingWithRetry(ctx, client, s.conf.MaxRetries); err != nil {
		return nil, apperr.Wrap(apperr.CodeStoreUnavailable, "redis ping failed", err)
	}

	members, err := client.ZRange(ctx, s.conf.KeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, queryFailed(sessionID, "zrange", err)
	}

	records := make([]session.Record, 0, len(members))
	for i, m := range members {
		marker, payload, err := decodeRedisMember(m)
		if err != nil {
			return nil, queryFailed(sessionID, fmt.Sprintf("member %d", i), err)
		}
		records = append(records, session.Record{
			SessionID: sessionID,
			Marker:    marker,
			Payload:   payload,
		})
	}
	sortByMarker(records, s.mode)
	return records, nil
}

func decodeRedisMember(m string) (int64, []byte, error) {
	if len(m) < redisHeaderLen {
		return 0, nil, fmt.Errorf("member too short: %d bytes", len(m))
	}
	b := []byte(m)
	marker := int64(binary.BigEndian.Uint64(b[8:16]))
	return marker, b[redisHeaderLen:], nil
}

func pingWithRetry(ctx context.Context, client redis.UniversalClient, maxRetries int) error {
	attempts := maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	backoff := 100 * time.Millisecond
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := client.Ping(ctx).Err(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
	}

	if lastErr == nil {
		lastErr = errors.New("ping failed with unknown error")
	}
	return lastErr
}

func normalizeRedisConfig(cfg *RedisConfig) (*RedisConfig, error) {
	conf := *cfg
	if conf.MaxRetries < 0 {
		conf.MaxRetries = 0
	} else if conf.MaxRetries == 0 {
		conf.MaxRetries = defaultRedisMaxRetries
	}
	if conf.DialTimeout <= 0 {
		conf.DialTimeout = defaultRedisDialTimeout
	}
	if conf.KeyPrefix == "" {
		conf.KeyPrefix = DefaultRedisKeyPrefix
	}

	if conf.Cluster {
		if len(conf.ClusterNodes) == 0 {
			return nil, fmt.Errorf("cluster_nodes is required when cluster=true")
		}
		return &conf, nil
	}

	if conf.Port == 0 {
		conf.Port = defaultRedisPort
	}
	if conf.Host == "" {
		return nil, fmt.Errorf("host is required when cluster=false")
	}
	if conf.Port < 0 {
		return nil, fmt.Errorf("port must be positive when cluster=false, got %d", conf.Port)
	}
	return &conf, nil
}

func newRedisClient(cfg *RedisConfig) redis.UniversalClient {
	// go-redis treats 0 as "use the default"; -1 disables retries.
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = -1
	}

	if cfg.Cluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       cfg.ClusterNodes,
			Password:    cfg.Password,
			PoolSize:    1,
			MaxRetries:  retries,
			DialTimeout: cfg.DialTimeout,
		})
	}

	addr := cfg.Host + ":" + strconv.Itoa(cfg.Port)
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    1,
		MaxRetries:  retries,
		DialTimeout: cfg.DialTimeout,
	})
}
