// Package storage reads captured sessions from a record store.
//
// Every backend opens its connection inside FetchSession and closes it before
// returning, and returns either the complete ordered record set or an error.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendPebble = "pebble"
)

// Store returns the records of one session in temporal order.
type Store interface {
	FetchSession(ctx context.Context, sessionID string) ([]session.Record, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Mode decides how records are ordered at query level.
	Mode   timing.Mode
	SQLite SQLiteConfig
	Redis  RedisConfig
	Pebble PebbleConfig
}

// Open validates cfg and returns the configured backend. No connection is
// made until FetchSession is called.
func Open(cfg Config) (Store, error) {
	if err := cfg.Mode.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendSQLite:
		return NewSQLiteStore(cfg.SQLite, cfg.Mode)
	case BackendRedis:
		return NewRedisStore(cfg.Redis, cfg.Mode)
	case BackendPebble:
		return NewPebbleStore(cfg.Pebble, cfg.Mode)
	default:
		return nil, apperr.New(apperr.CodeInvalidConfig,
			fmt.Sprintf("unknown storage backend %q, must be one of: sqlite, redis, pebble", cfg.Backend))
	}
}

// sortByMarker orders absolute datasets by timestamp, keeping the store's
// order for equal timestamps. Relative datasets are left in capture order.
func sortByMarker(records []session.Record, mode timing.Mode) {
	if mode != timing.ModeAbsolute {
		return
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Marker < records[j].Marker })
}

func validateSessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.New(apperr.CodeStoreQueryFailed, "session id is required")
	}
	return nil
}

func queryFailed(id string, what string, err error) error {
	return apperr.Wrap(apperr.CodeStoreQueryFailed, fmt.Sprintf("session %s: %s", id, what), err)
}
