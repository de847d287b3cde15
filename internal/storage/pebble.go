package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/pebble"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// DefaultPebbleKeyPrefix prefixes every session key.
const DefaultPebbleKeyPrefix = "session/"

// PebbleConfig locates a Pebble directory of captured sessions.
//
// Keys are KeyPrefix + sessionID + 0x00 + order(8 bytes BE) + seq(8 bytes BE),
// so iteration order is the capture side's ordering key. Values are the
// marker (8 bytes BE) followed by the payload.
type PebbleConfig struct {
	Dir       string
	KeyPrefix string
}

// PebbleStore reads sessions from a Pebble database opened read-only.
type PebbleStore struct {
	dir    string
	prefix string
	mode   timing.Mode
}

// NewPebbleStore validates cfg.
func NewPebbleStore(cfg PebbleConfig, mode timing.Mode) (*PebbleStore, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, apperr.New(apperr.CodeInvalidConfig, "pebble directory is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultPebbleKeyPrefix
	}
	return &PebbleStore{dir: dir, prefix: prefix, mode: mode}, nil
}

// FetchSession iterates the key range of sessionID.
func (s *PebbleStore) FetchSession(ctx context.Context, sessionID string) ([]session.Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	if strings.IndexByte(sessionID, 0) >= 0 {
		return nil, apperr.New(apperr.CodeStoreQueryFailed, "session id must not contain NUL")
	}

	if _, err := os.Stat(s.dir); err != nil {
		return nil, apperr.Wrap(apperr.CodeStoreUnavailable, "open pebble store", err)
	}
	db, err := pebble.Open(s.dir, &pebble.Options{ReadOnly: true})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeStoreUnavailable, "open pebble store", err)
	}
	defer db.Close()

	lower, upper := pebbleSessionBounds(s.prefix, sessionID)
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return nil, queryFailed(sessionID, "open iterator", err)
	}
	defer iter.Close()

	var records []session.Record
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, queryFailed(sessionID, "iterate", err)
		}
		marker, payload, err := decodePebbleValue(iter.Value())
		if err != nil {
			return nil, queryFailed(sessionID, fmt.Sprintf("record %d", len(records)), err)
		}
		records = append(records, session.Record{
			SessionID: sessionID,
			Marker:    marker,
			Payload:   payload,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, queryFailed(sessionID, "iterate", err)
	}
	sortByMarker(records, s.mode)
	return records, nil
}

func pebbleSessionBounds(prefix, sessionID string) ([]byte, []byte) {
	base := prefix + sessionID
	return []byte(base + "\x00"), []byte(base + "\x01")
}

// decodePebbleValue copies the payload out of the iterator's buffer.
func decodePebbleValue(v []byte) (int64, []byte, error) {
	if len(v) < 8 {
		return 0, nil, fmt.Errorf("value too short: %d bytes", len(v))
	}
	payload := make([]byte, len(v)-8)
	copy(payload, v[8:])
	return int64(binary.BigEndian.Uint64(v[:8])), payload, nil
}
