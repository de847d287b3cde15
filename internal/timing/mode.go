// Package timing turns stored temporal markers into playback waits.
package timing

import (
	"fmt"
	"math"
	"strings"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
)

// Mode declares how the markers of a dataset are to be read.
type Mode string

const (
	// ModeRelative markers hold milliseconds elapsed since the previous record.
	ModeRelative Mode = "relative"
	// ModeAbsolute markers hold whole-second Unix timestamps.
	ModeAbsolute Mode = "absolute"
)

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate checks that m is a known mode.
func (m Mode) Validate() error {
	switch m {
	case ModeRelative, ModeAbsolute:
		return nil
	default:
		return apperr.New(apperr.CodeInvalidConfig,
			fmt.Sprintf("unknown marker mode %q, must be one of: relative, absolute", string(m)))
	}
}

// ValidateSpeedup rejects speedups that are not finite and strictly positive.
func ValidateSpeedup(speedup float64) error {
	if math.IsNaN(speedup) || math.IsInf(speedup, 0) || speedup <= 0 {
		return apperr.New(apperr.CodeInvalidSpeedup,
			fmt.Sprintf("speedup must be a positive number, got %v", speedup))
	}
	return nil
}
