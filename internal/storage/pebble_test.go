package storage

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

type pebbleEntry struct {
	session string
	order   uint64
	seq     uint64
	marker  int64
	payload string
}

func pebbleKey(prefix string, e pebbleEntry) []byte {
	key := []byte(prefix + e.session + "\x00")
	key = binary.BigEndian.AppendUint64(key, e.order)
	return binary.BigEndian.AppendUint64(key, e.seq)
}

func pebbleValue(e pebbleEntry) []byte {
	v := binary.BigEndian.AppendUint64(nil, uint64(e.marker))
	return append(v, e.payload...)
}

func newPebbleFixture(t *testing.T, entries ...pebbleEntry) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sessions")
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		t.Fatalf("pebble.Open() error = %v", err)
	}
	for _, e := range entries {
		if err := db.Set(pebbleKey(DefaultPebbleKeyPrefix, e), pebbleValue(e), pebble.Sync); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return dir
}

func TestPebbleStore_FetchSessionInKeyOrder(t *testing.T) {
	dir := newPebbleFixture(t,
		pebbleEntry{session: "7", order: 2, seq: 2, marker: 1000, payload: "z"},
		pebbleEntry{session: "7", order: 0, seq: 0, marker: 0, payload: "x"},
		pebbleEntry{session: "7", order: 1, seq: 1, marker: 500, payload: "y"},
		pebbleEntry{session: "70", order: 0, seq: 0, marker: 1, payload: "neighbour"},
		pebbleEntry{session: "6", order: 9, seq: 9, marker: 1, payload: "before"},
	)
	store, err := NewPebbleStore(PebbleConfig{Dir: dir}, timing.ModeRelative)
	if err != nil {
		t.Fatal(err)
	}

	records, err := store.FetchSession(context.Background(), "7")
	if err != nil {
		t.Fatalf("FetchSession() error = %v", err)
	}
	wantMarkers := []int64{0, 500, 1000}
	wantPayloads := []string{"x", "y", "z"}
	if len(records) != len(wantMarkers) {
		t.Fatalf("got %d records, want %d", len(records), len(wantMarkers))
	}
	for i, rec := range records {
		if rec.Marker != wantMarkers[i] || string(rec.Payload) != wantPayloads[i] {
			t.Errorf("record %d = (%d, %q), want (%d, %q)", i, rec.Marker, rec.Payload, wantMarkers[i], wantPayloads[i])
		}
	}
}

func TestPebbleStore_MissingDirUnavailable(t *testing.T) {
	store, err := NewPebbleStore(PebbleConfig{Dir: filepath.Join(t.TempDir(), "nope")}, timing.ModeRelative)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.FetchSession(context.Background(), "1"); !apperr.HasCode(err, apperr.CodeStoreUnavailable) {
		t.Fatalf("FetchSession() error = %v, want %s", err, apperr.CodeStoreUnavailable)
	}
}

func TestPebbleStore_CorruptValueFailsWhole(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		t.Fatal(err)
	}
	good := pebbleEntry{session: "1", order: 0, seq: 0, marker: 5, payload: "ok"}
	if err := db.Set(pebbleKey(DefaultPebbleKeyPrefix, good), pebbleValue(good), pebble.Sync); err != nil {
		t.Fatal(err)
	}
	bad := pebbleEntry{session: "1", order: 1, seq: 1}
	if err := db.Set(pebbleKey(DefaultPebbleKeyPrefix, bad), []byte{1, 2}, pebble.Sync); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	store, err := NewPebbleStore(PebbleConfig{Dir: dir}, timing.ModeRelative)
	if err != nil {
		t.Fatal(err)
	}
	records, err := store.FetchSession(context.Background(), "1")
	if !apperr.HasCode(err, apperr.CodeStoreQueryFailed) {
		t.Fatalf("FetchSession() error = %v, want %s", err, apperr.CodeStoreQueryFailed)
	}
	if records != nil {
		t.Errorf("FetchSession() returned %d records alongside an error", len(records))
	}
}

func TestPebbleStore_RejectsNULInSessionID(t *testing.T) {
	dir := newPebbleFixture(t)
	store, err := NewPebbleStore(PebbleConfig{Dir: dir}, timing.ModeRelative)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.FetchSession(context.Background(), "a\x00b"); !apperr.HasCode(err, apperr.CodeStoreQueryFailed) {
		t.Fatalf("FetchSession() error = %v, want %s", err, apperr.CodeStoreQueryFailed)
	}
}

func TestNewPebbleStore_RequiresDir(t *testing.T) {
	if _, err := NewPebbleStore(PebbleConfig{}, timing.ModeRelative); !apperr.HasCode(err, apperr.CodeInvalidConfig) {
		t.Fatalf("NewPebbleStore() error = %v, want %s", err, apperr.CodeInvalidConfig)
	}
}

func TestPebbleStore_AbsoluteSortsByMarker(t *testing.T) {
	// The writer's order key disagrees with the stored timestamps.
	dir := newPebbleFixture(t,
		pebbleEntry{session: "7", order: 0, seq: 0, marker: 1_600_000_010, payload: "c"},
		pebbleEntry{session: "7", order: 1, seq: 1, marker: 1_600_000_000, payload: "a"},
		pebbleEntry{session: "7", order: 2, seq: 2, marker: 1_600_000_005, payload: "b"},
		pebbleEntry{session: "7", order: 3, seq: 3, marker: 1_600_000_005, payload: "b2"},
	)
	store, err := NewPebbleStore(PebbleConfig{Dir: dir}, timing.ModeAbsolute)
	if err != nil {
		t.Fatal(err)
	}

	records, err := store.FetchSession(context.Background(), "7")
	if err != nil {
		t.Fatalf("FetchSession() error = %v", err)
	}
	wantPayloads := []string{"a", "b", "b2", "c"}
	if len(records) != len(wantPayloads) {
		t.Fatalf("got %d records, want %d", len(records), len(wantPayloads))
	}
	for i, rec := range records {
		if string(rec.Payload) != wantPayloads[i] {
			t.Errorf("record %d payload = %q, want %q", i, rec.Payload, wantPayloads[i])
		}
	}
}

func TestPebbleStore_RelativeKeepsKeyOrder(t *testing.T) {
	dir := newPebbleFixture(t,
		pebbleEntry{session: "7", order: 0, seq: 0, marker: 900, payload: "x"},
		pebbleEntry{session: "7", order: 1, seq: 1, marker: 10, payload: "y"},
	)
	store, err := NewPebbleStore(PebbleConfig{Dir: dir}, timing.ModeRelative)
	if err != nil {
		t.Fatal(err)
	}

	records, err := store.FetchSession(context.Background(), "7")
	if err != nil {
		t.Fatalf("FetchSession() error = %v", err)
	}
	if len(records) != 2 || string(records[0].Payload) != "x" || string(records[1].Payload) != "y" {
		t.Fatalf("records = %v, want capture order x, y", records)
	}
}
