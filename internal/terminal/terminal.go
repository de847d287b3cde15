// Package terminal owns the controlling terminal's mode during playback.
package terminal

import (
	"os"

	"golang.org/x/term"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
)

// State is an opaque snapshot of terminal mode settings.
type State interface {
	terminalState()
}

// Controller captures, changes and restores the terminal mode.
type Controller interface {
	// CaptureState reads the current mode attributes.
	CaptureState() (State, error)
	// EnterRawMode disables line buffering, echo and signal characters.
	EnterRawMode() error
	// RestoreState reapplies a state returned by CaptureState.
	RestoreState(State) error
}

type ttyState struct {
	saved *term.State
}

func (ttyState) terminalState() {}

// TTY controls the terminal attached to a file descriptor, normally stdin.
type TTY struct {
	file *os.File
}

// NewTTY returns a controller for f.
func NewTTY(f *os.File) *TTY {
	return &TTY{file: f}
}

// CaptureState fails with TerminalUnavailable when f is not a terminal,
// e.g. when stdin is redirected from a file or pipe.
func (t *TTY) CaptureState() (State, error) {
	if t.file == nil {
		return nil, apperr.New(apperr.CodeTerminalUnavailable, "no terminal file")
	}
	fd := int(t.file.Fd())
	if !term.IsTerminal(fd) {
		return nil, apperr.New(apperr.CodeTerminalUnavailable, t.file.Name()+" is not a terminal")
	}
	saved, err := term.GetState(fd)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeTerminalUnavailable, "read terminal state", err)
	}
	return ttyState{saved: saved}, nil
}

func (t *TTY) EnterRawMode() error {
	if _, err := term.MakeRaw(int(t.file.Fd())); err != nil {
		return apperr.Wrap(apperr.CodeTerminalUnavailable, "enter raw mode", err)
	}
	return nil
}

func (t *TTY) RestoreState(s State) error {
	st, ok := s.(ttyState)
	if !ok || st.saved == nil {
		return apperr.New(apperr.CodeTerminalUnavailable, "restore: state was not captured from a tty")
	}
	if err := term.Restore(int(t.file.Fd()), st.saved); err != nil {
		return apperr.Wrap(apperr.CodeTerminalUnavailable, "restore terminal state", err)
	}
	return nil
}
