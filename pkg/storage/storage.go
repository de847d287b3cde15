package storage

import (
	internalstorage "github.com/SmitUplenchwar2687/ttyreplay/internal/storage"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// Backend names.
const (
	BackendSQLite = internalstorage.BackendSQLite
	BackendRedis  = internalstorage.BackendRedis
	BackendPebble = internalstorage.BackendPebble
)

// Store returns the records of one session in temporal order.
type Store = internalstorage.Store

// Config selects and configures a backend.
type Config = internalstorage.Config

// SQLiteConfig locates the session table in a SQLite file.
type SQLiteConfig = internalstorage.SQLiteConfig

// RedisConfig configures the Redis record store.
type RedisConfig = internalstorage.RedisConfig

// PebbleConfig configures the Pebble record store.
type PebbleConfig = internalstorage.PebbleConfig

// Open validates cfg and returns the configured backend.
func Open(cfg Config) (Store, error) {
	return internalstorage.Open(cfg)
}

// MemoryStore is an in-process record store.
type MemoryStore = internalstorage.MemoryStore

// NewMemoryStore creates an empty in-process store for datasets of the given
// marker mode.
func NewMemoryStore(mode timing.Mode) (*MemoryStore, error) {
	return internalstorage.NewMemoryStore(mode)
}
