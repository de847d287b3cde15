// Package config loads ttyreplay settings from defaults, a config file and
// the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/storage"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// Config is the top-level configuration for a replay.
type Config struct {
	Replay  ReplayConfig  `json:"replay" yaml:"replay"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ReplayConfig holds playback settings.
type ReplayConfig struct {
	Mode    timing.Mode   `json:"mode" yaml:"mode"`
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait"`
}

// StorageConfig selects the record store backend. The store location itself
// is given on the command line.
type StorageConfig struct {
	Backend string              `json:"backend" yaml:"backend"`
	SQLite  StorageSQLiteConfig `json:"sqlite" yaml:"sqlite"`
	Redis   StorageRedisConfig  `json:"redis" yaml:"redis"`
	Pebble  StoragePebbleConfig `json:"pebble" yaml:"pebble"`
}

// StorageSQLiteConfig names the session table and its columns.
type StorageSQLiteConfig struct {
	Table          string `json:"table" yaml:"table"`
	SessionColumn  string `json:"session_column" yaml:"session_column"`
	MarkerColumn   string `json:"marker_column" yaml:"marker_column"`
	PayloadColumn  string `json:"payload_column" yaml:"payload_column"`
	SequenceColumn string `json:"sequence_column" yaml:"sequence_column"`
}

// StorageRedisConfig configures the Redis backend.
type StorageRedisConfig struct {
	Password    string        `json:"password" yaml:"password"`
	DB          int           `json:"db" yaml:"db"`
	Cluster     bool          `json:"cluster" yaml:"cluster"`
	MaxRetries  int           `json:"max_retries" yaml:"max_retries"`
	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	KeyPrefix   string        `json:"key_prefix" yaml:"key_prefix"`
}

// StoragePebbleConfig configures the Pebble backend.
type StoragePebbleConfig struct {
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// Default returns a Config matching the capture tool's SQLite layout.
func Default() Config {
	return Config{
		Replay: ReplayConfig{
			Mode: timing.ModeRelative,
		},
		Storage: StorageConfig{
			Backend: storage.BackendSQLite,
			SQLite: StorageSQLiteConfig{
				Table:          storage.DefaultSQLiteTable,
				SessionColumn:  storage.DefaultSQLiteSessionColumn,
				PayloadColumn:  storage.DefaultSQLitePayloadColumn,
				SequenceColumn: storage.DefaultSQLiteSequenceColumn,
			},
			Redis: StorageRedisConfig{
				MaxRetries:  3,
				DialTimeout: 5 * time.Second,
				KeyPrefix:   storage.DefaultRedisKeyPrefix,
			},
			Pebble: StoragePebbleConfig{
				KeyPrefix: storage.DefaultPebbleKeyPrefix,
			},
		},
	}
}

// Validate checks that the config is valid.
func (c Config) Validate() error {
	if err := c.Replay.Mode.Validate(); err != nil {
		return err
	}
	if c.Replay.MaxWait < 0 {
		return apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("max_wait must not be negative, got %s", c.Replay.MaxWait))
	}
	switch c.Storage.Backend {
	case storage.BackendSQLite, storage.BackendRedis, storage.BackendPebble:
	default:
		return apperr.New(apperr.CodeInvalidConfig,
			fmt.Sprintf("unknown storage backend %q, must be one of: sqlite, redis, pebble", c.Storage.Backend))
	}
	if c.Storage.Redis.DB < 0 {
		return apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("redis db must not be negative, got %d", c.Storage.Redis.DB))
	}
	return nil
}

// LoadFile reads a JSON or YAML config file (by extension) and merges it with
// defaults. Fields not specified in the file retain their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, apperr.Wrap(apperr.CodeInvalidConfig, "reading config file", err)
	}

	// Use a raw intermediate struct to handle duration parsing.
	var raw rawConfig
	if isYAML(path) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return cfg, apperr.Wrap(apperr.CodeInvalidConfig, "parsing config file", err)
	}

	if err := raw.merge(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// rawConfig is the file representation with string durations.
type rawConfig struct {
	Replay struct {
		Mode    string `json:"mode" yaml:"mode"`
		MaxWait string `json:"max_wait" yaml:"max_wait"`
	} `json:"replay" yaml:"replay"`
	Storage struct {
		Backend string              `json:"backend" yaml:"backend"`
		SQLite  StorageSQLiteConfig `json:"sqlite" yaml:"sqlite"`
		Redis   struct {
			Password    string `json:"password" yaml:"password"`
			DB          int    `json:"db" yaml:"db"`
			Cluster     bool   `json:"cluster" yaml:"cluster"`
			MaxRetries  *int   `json:"max_retries" yaml:"max_retries"`
			DialTimeout string `json:"dial_timeout" yaml:"dial_timeout"`
			KeyPrefix   string `json:"key_prefix" yaml:"key_prefix"`
		} `json:"redis" yaml:"redis"`
		Pebble StoragePebbleConfig `json:"pebble" yaml:"pebble"`
	} `json:"storage" yaml:"storage"`
}

func (raw rawConfig) merge(cfg *Config) error {
	if raw.Replay.Mode != "" {
		mode, err := timing.ParseMode(raw.Replay.Mode)
		if err != nil {
			return err
		}
		cfg.Replay.Mode = mode
	}
	if raw.Replay.MaxWait != "" {
		d, err := time.ParseDuration(raw.Replay.MaxWait)
		if err != nil {
			return apperr.Wrap(apperr.CodeInvalidConfig, "parsing replay.max_wait", err)
		}
		cfg.Replay.MaxWait = d
	}

	if raw.Storage.Backend != "" {
		cfg.Storage.Backend = strings.ToLower(raw.Storage.Backend)
	}
	mergeString(&cfg.Storage.SQLite.Table, raw.Storage.SQLite.Table)
	mergeString(&cfg.Storage.SQLite.SessionColumn, raw.Storage.SQLite.SessionColumn)
	mergeString(&cfg.Storage.SQLite.MarkerColumn, raw.Storage.SQLite.MarkerColumn)
	mergeString(&cfg.Storage.SQLite.PayloadColumn, raw.Storage.SQLite.PayloadColumn)
	mergeString(&cfg.Storage.SQLite.SequenceColumn, raw.Storage.SQLite.SequenceColumn)

	r := raw.Storage.Redis
	mergeString(&cfg.Storage.Redis.Password, r.Password)
	mergeString(&cfg.Storage.Redis.KeyPrefix, r.KeyPrefix)
	if r.DB != 0 {
		cfg.Storage.Redis.DB = r.DB
	}
	if r.Cluster {
		cfg.Storage.Redis.Cluster = true
	}
	if r.MaxRetries != nil {
		cfg.Storage.Redis.MaxRetries = *r.MaxRetries
	}
	if r.DialTimeout != "" {
		d, err := time.ParseDuration(r.DialTimeout)
		if err != nil {
			return apperr.Wrap(apperr.CodeInvalidConfig, "parsing storage.redis.dial_timeout", err)
		}
		cfg.Storage.Redis.DialTimeout = d
	}

	mergeString(&cfg.Storage.Pebble.KeyPrefix, raw.Storage.Pebble.KeyPrefix)
	return nil
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

const exampleJSON = `{
  "replay": {
    "mode": "relative",
    "max_wait": "0s"
  },
  "storage": {
    "backend": "sqlite",
    "sqlite": {
      "table": "metadata",
      "session_column": "id",
      "payload_column": "net_data",
      "sequence_column": "rowid"
    },
    "redis": {
      "db": 0,
      "max_retries": 3,
      "dial_timeout": "5s",
      "key_prefix": "ttyreplay:session:"
    },
    "pebble": {
      "key_prefix": "session/"
    }
  }
}
`

const exampleYAML = `replay:
  mode: relative
  max_wait: 0s
storage:
  backend: sqlite
  sqlite:
    table: metadata
    session_column: id
    payload_column: net_data
    sequence_column: rowid
  redis:
    db: 0
    max_retries: 3
    dial_timeout: 5s
    key_prefix: "ttyreplay:session:"
  pebble:
    key_prefix: session/
`

// WriteExample writes an example config file to the given path, as YAML when
// the extension asks for it and JSON otherwise.
func WriteExample(path string) error {
	example := exampleJSON
	if isYAML(path) {
		example = exampleYAML
	}
	return os.WriteFile(path, []byte(example), 0o644)
}
