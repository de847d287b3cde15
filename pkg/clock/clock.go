package clock

import (
	"context"
	"time"

	internalclock "github.com/SmitUplenchwar2687/ttyreplay/internal/clock"
)

// Clock abstracts time so replays run against real or virtual time.
type Clock = internalclock.Clock

// RealClock delegates to the standard time package.
type RealClock = internalclock.RealClock

// VirtualClock is a controllable clock for deterministic replays.
type VirtualClock = internalclock.VirtualClock

// NewRealClock creates a real wall-clock implementation.
func NewRealClock() *RealClock {
	return internalclock.NewRealClock()
}

// NewVirtualClock creates a virtual clock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return internalclock.NewVirtualClock(start)
}

// NewSteppingClock creates a virtual clock that jumps forward by every
// duration it is asked to wait.
func NewSteppingClock(start time.Time) *VirtualClock {
	return internalclock.NewSteppingClock(start)
}

// Sleep waits d on c, returning early with ctx's error if ctx is done.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	return internalclock.Sleep(ctx, c, d)
}
