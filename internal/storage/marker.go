package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// timestampLayouts are the textual forms absolute markers are read from.
// The first is SQLite's CURRENT_TIMESTAMP format.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

// markerValue converts a driver value into a marker for the given mode.
func markerValue(raw any, mode timing.Mode) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("marker %v is not finite", v)
		}
		return int64(math.Round(v)), nil
	case time.Time:
		if mode != timing.ModeAbsolute {
			return 0, fmt.Errorf("timestamp marker %s in %s dataset", v.Format(time.RFC3339), mode)
		}
		return v.Unix(), nil
	case []byte:
		return markerText(string(v), mode)
	case string:
		return markerText(v, mode)
	case nil:
		return 0, fmt.Errorf("marker is null")
	default:
		return 0, fmt.Errorf("unsupported marker type %T", raw)
	}
}

func markerText(s string, mode timing.Mode) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(math.Round(f)), nil
	}
	if mode == timing.ModeAbsolute {
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.Unix(), nil
			}
		}
	}
	return 0, fmt.Errorf("cannot read %s marker from %q", mode, s)
}
