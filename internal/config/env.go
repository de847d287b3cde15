package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// envConfig mirrors Config with optional fields so unset variables leave the
// current value alone.
type envConfig struct {
	Backend        *string        `env:"TTYREPLAY_BACKEND"`
	Mode           *string        `env:"TTYREPLAY_MODE"`
	MaxWait        *time.Duration `env:"TTYREPLAY_MAX_WAIT"`
	SQLiteTable    *string        `env:"TTYREPLAY_SQLITE_TABLE"`
	SessionColumn  *string        `env:"TTYREPLAY_SQLITE_SESSION_COLUMN"`
	MarkerColumn   *string        `env:"TTYREPLAY_SQLITE_MARKER_COLUMN"`
	PayloadColumn  *string        `env:"TTYREPLAY_SQLITE_PAYLOAD_COLUMN"`
	SequenceColumn *string        `env:"TTYREPLAY_SQLITE_SEQUENCE_COLUMN"`
	RedisPassword  *string        `env:"TTYREPLAY_REDIS_PASSWORD"`
	RedisDB        *int           `env:"TTYREPLAY_REDIS_DB"`
	RedisCluster   *bool          `env:"TTYREPLAY_REDIS_CLUSTER"`
	RedisRetries   *int           `env:"TTYREPLAY_REDIS_MAX_RETRIES"`
	RedisTimeout   *time.Duration `env:"TTYREPLAY_REDIS_DIAL_TIMEOUT"`
	RedisPrefix    *string        `env:"TTYREPLAY_REDIS_PREFIX"`
	PebblePrefix   *string        `env:"TTYREPLAY_PEBBLE_PREFIX"`
}

// ApplyEnv overlays TTYREPLAY_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return apperr.Wrap(apperr.CodeInvalidConfig, "parse env", err)
	}

	if e.Backend != nil {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(*e.Backend))
	}
	if e.Mode != nil {
		mode, err := timing.ParseMode(*e.Mode)
		if err != nil {
			return err
		}
		cfg.Replay.Mode = mode
	}
	if e.MaxWait != nil {
		cfg.Replay.MaxWait = *e.MaxWait
	}
	setString(&cfg.Storage.SQLite.Table, e.SQLiteTable)
	setString(&cfg.Storage.SQLite.SessionColumn, e.SessionColumn)
	setString(&cfg.Storage.SQLite.MarkerColumn, e.MarkerColumn)
	setString(&cfg.Storage.SQLite.PayloadColumn, e.PayloadColumn)
	setString(&cfg.Storage.SQLite.SequenceColumn, e.SequenceColumn)
	setString(&cfg.Storage.Redis.Password, e.RedisPassword)
	setString(&cfg.Storage.Redis.KeyPrefix, e.RedisPrefix)
	if e.RedisDB != nil {
		cfg.Storage.Redis.DB = *e.RedisDB
	}
	if e.RedisCluster != nil {
		cfg.Storage.Redis.Cluster = *e.RedisCluster
	}
	if e.RedisRetries != nil {
		cfg.Storage.Redis.MaxRetries = *e.RedisRetries
	}
	if e.RedisTimeout != nil {
		cfg.Storage.Redis.DialTimeout = *e.RedisTimeout
	}
	setString(&cfg.Storage.Pebble.KeyPrefix, e.PebblePrefix)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Load resolves defaults, then the optional file at path, then the
// environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
