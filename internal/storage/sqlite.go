package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// Defaults match the capture tool's metadata table.
const (
	DefaultSQLiteTable          = "metadata"
	DefaultSQLiteSessionColumn  = "id"
	DefaultSQLitePayloadColumn  = "net_data"
	DefaultSQLiteSequenceColumn = "rowid"
	DefaultSQLiteRelativeMarker = "delay"
	DefaultSQLiteAbsoluteMarker = "time"
)

var sqlIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteConfig locates the session table in a SQLite file.
type SQLiteConfig struct {
	Path           string
	Table          string
	SessionColumn  string
	MarkerColumn   string
	PayloadColumn  string
	SequenceColumn string
}

// SQLiteStore reads sessions from a SQLite database opened read-only.
type SQLiteStore struct {
	path  string
	mode  timing.Mode
	query string
}

// NewSQLiteStore fills in default names, validates them and prepares the
// session query. Relative datasets are ordered by capture sequence, since a
// delay only has meaning next to its predecessor; absolute datasets are
// ordered by timestamp, then sequence.
func NewSQLiteStore(cfg SQLiteConfig, mode timing.Mode) (*SQLiteStore, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	conf := normalizeSQLiteConfig(cfg, mode)
	if conf.Path == "" {
		return nil, apperr.New(apperr.CodeInvalidConfig, "sqlite path is required")
	}
	for _, ident := range []string{conf.Table, conf.SessionColumn, conf.MarkerColumn, conf.PayloadColumn, conf.SequenceColumn} {
		if !sqlIdentifier.MatchString(ident) {
			return nil, apperr.New(apperr.CodeInvalidConfig, fmt.Sprintf("invalid sqlite identifier %q", ident))
		}
	}

	order := conf.SequenceColumn
	if mode == timing.ModeAbsolute {
		order = conf.MarkerColumn + " ASC, " + conf.SequenceColumn
	}
	query := fmt.Sprintf(
		"SELECT %s, %s FROM %s WHERE %s = ? ORDER BY %s ASC",
		conf.MarkerColumn, conf.PayloadColumn, conf.Table, conf.SessionColumn, order,
	)

	return &SQLiteStore{
		path:  filepath.Clean(conf.Path),
		mode:  mode,
		query: query,
	}, nil
}

func normalizeSQLiteConfig(cfg SQLiteConfig, mode timing.Mode) SQLiteConfig {
	conf := cfg
	conf.Path = strings.TrimSpace(conf.Path)
	if conf.Table == "" {
		conf.Table = DefaultSQLiteTable
	}
	if conf.SessionColumn == "" {
		conf.SessionColumn = DefaultSQLiteSessionColumn
	}
	if conf.PayloadColumn == "" {
		conf.PayloadColumn = DefaultSQLitePayloadColumn
	}
	if conf.SequenceColumn == "" {
		conf.SequenceColumn = DefaultSQLiteSequenceColumn
	}
	if conf.MarkerColumn == "" {
		conf.MarkerColumn = DefaultSQLiteRelativeMarker
		if mode == timing.ModeAbsolute {
			conf.MarkerColumn = DefaultSQLiteAbsoluteMarker
		}
	}
	return conf
}

// Query returns the SQL used to fetch a session.
func (s *SQLiteStore) Query() string {
	return s.query
}

// FetchSession returns every record of sessionID, ordered.
func (s *SQLiteStore) FetchSession(ctx context.Context, sessionID string) ([]session.Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, s.query, sessionID)
	if err != nil {
		return nil, queryFailed(sessionID, "query records", err)
	}
	defer rows.Close()

	var records []session.Record
	for rows.Next() {
		var (
			raw     any
			payload []byte
		)
		if err := rows.Scan(&raw, &payload); err != nil {
			return nil, queryFailed(sessionID, fmt.Sprintf("scan record %d", len(records)), err)
		}
		marker, err := markerValue(raw, s.mode)
		if err != nil {
			return nil, queryFailed(sessionID, fmt.Sprintf("record %d", len(records)), err)
		}
		records = append(records, session.Record{
			SessionID: sessionID,
			Marker:    marker,
			Payload:   payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(sessionID, "read records", err)
	}
	return records, nil
}

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStoreUnavailable, "open sqlite store", err)
	}
	if info.IsDir() {
		return nil, apperr.New(apperr.CodeStoreUnavailable, fmt.Sprintf("open sqlite store: %s is a directory", s.path))
	}

	db, err := sql.Open("sqlite", sqliteDSN(s.path, "ro"))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStoreUnavailable, "open sqlite store", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperr.Wrap(apperr.CodeStoreUnavailable, "ping sqlite store", err)
	}
	return db, nil
}

// sqliteDSN builds a file: URI for path. The path is percent-encoded so
// names holding '?', '#' or '%' reach SQLite intact.
func sqliteDSN(path, mode string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		OmitHost: true,
		RawQuery: url.Values{"mode": {mode}}.Encode(),
	}
	return u.String()
}
