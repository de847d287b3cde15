package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/config"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/storage"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

type storeOptions struct {
	configPath       string
	backend          string
	mode             string
	maxWait          time.Duration
	table            string
	sessionColumn    string
	markerColumn     string
	payloadColumn    string
	sequenceColumn   string
	redisPassword    string
	redisDB          int
	redisCluster     bool
	redisMaxRetries  int
	redisDialTimeout time.Duration
	redisPrefix      string
	pebblePrefix     string
}

func (o *storeOptions) addFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().StringVar(&o.configPath, "config", "", "path to a JSON or YAML config file")
	cmd.Flags().StringVar(&o.backend, "backend", d.Storage.Backend, "record store backend (sqlite, redis, pebble)")
	cmd.Flags().StringVar(&o.mode, "mode", string(d.Replay.Mode), "marker mode of the dataset (relative, absolute)")
	cmd.Flags().DurationVar(&o.maxWait, "max-wait", 0, "cap on a single pause after scaling (0 = no cap)")
	cmd.Flags().StringVar(&o.table, "table", d.Storage.SQLite.Table, "sqlite table holding the records")
	cmd.Flags().StringVar(&o.sessionColumn, "session-column", d.Storage.SQLite.SessionColumn, "sqlite session id column")
	cmd.Flags().StringVar(&o.markerColumn, "marker-column", "", "sqlite marker column (default delay or time by mode)")
	cmd.Flags().StringVar(&o.payloadColumn, "payload-column", d.Storage.SQLite.PayloadColumn, "sqlite payload column")
	cmd.Flags().StringVar(&o.sequenceColumn, "sequence-column", d.Storage.SQLite.SequenceColumn, "sqlite capture order column")
	cmd.Flags().StringVar(&o.redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&o.redisDB, "redis-db", 0, "redis database index")
	cmd.Flags().BoolVar(&o.redisCluster, "redis-cluster", false, "treat the store location as a comma separated cluster node list")
	cmd.Flags().IntVar(&o.redisMaxRetries, "redis-max-retries", d.Storage.Redis.MaxRetries, "redis connection retries")
	cmd.Flags().DurationVar(&o.redisDialTimeout, "redis-dial-timeout", d.Storage.Redis.DialTimeout, "redis dial timeout")
	cmd.Flags().StringVar(&o.redisPrefix, "redis-prefix", d.Storage.Redis.KeyPrefix, "redis session key prefix")
	cmd.Flags().StringVar(&o.pebblePrefix, "pebble-prefix", d.Storage.Pebble.KeyPrefix, "pebble session key prefix")
}

// resolve builds the effective config: defaults, then the config file, then
// the environment, then flags the user actually set.
func (o *storeOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadFile(o.configPath)
		if err != nil {
			return cfg, err
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := o.applyFlags(cmd, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (o *storeOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("backend") {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(o.backend))
	}
	if changed("mode") {
		mode, err := timing.ParseMode(o.mode)
		if err != nil {
			return err
		}
		cfg.Replay.Mode = mode
	}
	if changed("max-wait") {
		cfg.Replay.MaxWait = o.maxWait
	}
	if changed("table") {
		cfg.Storage.SQLite.Table = o.table
	}
	if changed("session-column") {
		cfg.Storage.SQLite.SessionColumn = o.sessionColumn
	}
	if changed("marker-column") {
		cfg.Storage.SQLite.MarkerColumn = o.markerColumn
	}
	if changed("payload-column") {
		cfg.Storage.SQLite.PayloadColumn = o.payloadColumn
	}
	if changed("sequence-column") {
		cfg.Storage.SQLite.SequenceColumn = o.sequenceColumn
	}
	if changed("redis-password") {
		cfg.Storage.Redis.Password = o.redisPassword
	}
	if changed("redis-db") {
		cfg.Storage.Redis.DB = o.redisDB
	}
	if changed("redis-cluster") {
		cfg.Storage.Redis.Cluster = o.redisCluster
	}
	if changed("redis-max-retries") {
		cfg.Storage.Redis.MaxRetries = o.redisMaxRetries
	}
	if changed("redis-dial-timeout") {
		cfg.Storage.Redis.DialTimeout = o.redisDialTimeout
	}
	if changed("redis-prefix") {
		cfg.Storage.Redis.KeyPrefix = o.redisPrefix
	}
	if changed("pebble-prefix") {
		cfg.Storage.Pebble.KeyPrefix = o.pebblePrefix
	}
	return nil
}

// openStore resolves the config and the positional store location into a
// ready backend.
func (o *storeOptions) openStore(cmd *cobra.Command, location string) (config.Config, storage.Store, error) {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return cfg, nil, err
	}
	sc, err := cfg.StoreConfig(location)
	if err != nil {
		return cfg, nil, err
	}
	store, err := storage.Open(sc)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, store, nil
}

// parseSpeedup reads the speedup argument. A non-numeric value is a usage
// error; a numeric but out of range one is InvalidSpeedup.
func parseSpeedup(arg string) (float64, error) {
	s, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeUsage, fmt.Sprintf("speedup %q is not a number", arg), err)
	}
	if err := timing.ValidateSpeedup(s); err != nil {
		return 0, err
	}
	return s, nil
}
