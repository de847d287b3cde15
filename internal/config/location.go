package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/storage"
)

const defaultRedisPort = 6379

// StoreConfig resolves the store location given on the command line against
// the configured backend. location is a SQLite file, a Pebble directory, or a
// Redis host[:port] (a comma separated node list in cluster mode).
func (c Config) StoreConfig(location string) (storage.Config, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return storage.Config{}, apperr.New(apperr.CodeUsage, "store location is required")
	}

	sc := storage.Config{
		Backend: c.Storage.Backend,
		Mode:    c.Replay.Mode,
	}
	switch c.Storage.Backend {
	case storage.BackendSQLite:
		sc.SQLite = storage.SQLiteConfig{
			Path:           location,
			Table:          c.Storage.SQLite.Table,
			SessionColumn:  c.Storage.SQLite.SessionColumn,
			MarkerColumn:   c.Storage.SQLite.MarkerColumn,
			PayloadColumn:  c.Storage.SQLite.PayloadColumn,
			SequenceColumn: c.Storage.SQLite.SequenceColumn,
		}
	case storage.BackendPebble:
		sc.Pebble = storage.PebbleConfig{
			Dir:       location,
			KeyPrefix: c.Storage.Pebble.KeyPrefix,
		}
	case storage.BackendRedis:
		r := c.Storage.Redis
		sc.Redis = storage.RedisConfig{
			Password:    r.Password,
			DB:          r.DB,
			Cluster:     r.Cluster,
			MaxRetries:  r.MaxRetries,
			DialTimeout: r.DialTimeout,
			KeyPrefix:   r.KeyPrefix,
		}
		if r.MaxRetries == 0 {
			// The store reads zero as "use the default".
			sc.Redis.MaxRetries = -1
		}
		if r.Cluster {
			for _, node := range strings.Split(location, ",") {
				if node = strings.TrimSpace(node); node != "" {
					sc.Redis.ClusterNodes = append(sc.Redis.ClusterNodes, node)
				}
			}
			break
		}
		host, port, err := normalizeRedisHostPort(location, defaultRedisPort)
		if err != nil {
			return storage.Config{}, apperr.Wrap(apperr.CodeUsage, "redis store location", err)
		}
		sc.Redis.Host = host
		sc.Redis.Port = port
	default:
		return storage.Config{}, apperr.New(apperr.CodeInvalidConfig,
			fmt.Sprintf("unknown storage backend %q, must be one of: sqlite, redis, pebble", c.Storage.Backend))
	}
	return sc, nil
}

func normalizeRedisHostPort(host string, port int) (string, int, error) {
	if strings.Contains(host, ":") {
		h, p, err := net.SplitHostPort(host)
		if err != nil {
			return "", 0, fmt.Errorf("invalid redis address %q: %w", host, err)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("invalid redis port in %q: %w", host, err)
		}
		host = h
		port = n
	}

	if host == "" {
		return "", 0, fmt.Errorf("redis host cannot be empty")
	}
	if port <= 0 {
		return "", 0, fmt.Errorf("redis port must be positive, got %d", port)
	}

	return host, port, nil
}
