// Package session defines the captured terminal session records replayed by ttyreplay.
package session

import "fmt"

// Record is one captured chunk of terminal traffic. Records are written by the
// capture side and are read-only here.
type Record struct {
	SessionID string `json:"session_id"`
	// Marker is either milliseconds since the previous record (relative
	// datasets) or a whole-second Unix timestamp (absolute datasets).
	Marker  int64  `json:"marker"`
	Payload []byte `json:"payload"`
}

// String summarizes the record without dumping the payload, which may hold
// arbitrary control sequences.
func (r Record) String() string {
	return fmt.Sprintf("session=%s marker=%d bytes=%d", r.SessionID, r.Marker, len(r.Payload))
}

// Markers returns the temporal markers of records in order.
func Markers(records []Record) []int64 {
	out := make([]int64, len(records))
	for i, rec := range records {
		out[i] = rec.Marker
	}
	return out
}
