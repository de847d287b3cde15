package timing

import (
	"math"
	"time"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
)

// Entry is one step of playback: wait, then write Payload.
type Entry struct {
	Wait    time.Duration
	Payload []byte
}

// Plan is the ordered sequence of entries for one replay run.
type Plan []Entry

// Total returns the sum of all waits, saturating at MaxDuration.
func (p Plan) Total() time.Duration {
	var total time.Duration
	for _, e := range p {
		if e.Wait > MaxDuration-total {
			return MaxDuration
		}
		total += e.Wait
	}
	return total
}

// Bytes returns the number of payload bytes the plan writes.
func (p Plan) Bytes() int {
	n := 0
	for _, e := range p {
		n += len(e.Payload)
	}
	return n
}

// Options tune plan construction.
type Options struct {
	// MaxWait caps a single scaled wait. Zero disables the cap.
	MaxWait time.Duration
}

// Build converts ordered records into a plan. Records are assumed to be in
// the store's temporal order; waits are never negative.
func Build(records []session.Record, mode Mode, speedup float64, opts Options) (Plan, error) {
	waits, err := Waits(session.Markers(records), mode, speedup)
	if err != nil {
		return nil, err
	}

	plan := make(Plan, len(records))
	for i, rec := range records {
		wait := waits[i]
		if opts.MaxWait > 0 && wait > opts.MaxWait {
			wait = opts.MaxWait
		}
		plan[i] = Entry{Wait: wait, Payload: rec.Payload}
	}
	return plan, nil
}

// Waits computes the scaled wait before each marker.
//
// In relative mode every marker is a delay in milliseconds, the first one
// measured from the start of the session. In absolute mode the first wait is
// zero and each later wait is the gap to the previous timestamp; a gap that
// goes backwards is clamped to zero instead of failing the replay.
func Waits(markers []int64, mode Mode, speedup float64) ([]time.Duration, error) {
	if err := ValidateSpeedup(speedup); err != nil {
		return nil, err
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	waits := make([]time.Duration, len(markers))
	for i, m := range markers {
		// Nanoseconds as float64, so huge markers and tiny speedups saturate
		// instead of wrapping.
		var ns float64
		switch mode {
		case ModeRelative:
			ns = float64(m) * float64(time.Millisecond)
		case ModeAbsolute:
			if i > 0 {
				ns = (float64(m) - float64(markers[i-1])) * float64(time.Second)
			}
		}
		waits[i] = scale(ns, speedup)
	}
	return waits, nil
}

// MaxDuration is the longest wait a plan can hold.
const MaxDuration = time.Duration(math.MaxInt64)

func scale(ns float64, speedup float64) time.Duration {
	if !(ns > 0) {
		return 0
	}
	scaled := ns / speedup
	if scaled >= float64(math.MaxInt64) {
		return MaxDuration
	}
	return time.Duration(scaled)
}
