package terminal

import (
	"sync"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
)

// Mode names used by Memory.
const (
	ModeCooked = "cooked"
	ModeRaw    = "raw"
)

type memoryState struct {
	mode string
}

func (memoryState) terminalState() {}

// Memory is an in-process Controller that tracks the mode it would have set.
// The Err fields inject failures into the matching operation.
type Memory struct {
	mu       sync.Mutex
	mode     string
	captures int
	raws     int
	restores int

	CaptureErr error
	RawErr     error
	RestoreErr error
}

// NewMemory returns a Memory controller in cooked mode.
func NewMemory() *Memory {
	return &Memory{mode: ModeCooked}
}

func (m *Memory) CaptureState() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CaptureErr != nil {
		return nil, m.CaptureErr
	}
	m.captures++
	return memoryState{mode: m.mode}, nil
}

func (m *Memory) EnterRawMode() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RawErr != nil {
		return m.RawErr
	}
	m.raws++
	m.mode = ModeRaw
	return nil
}

func (m *Memory) RestoreState(s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restores++
	st, ok := s.(memoryState)
	if !ok {
		return apperr.New(apperr.CodeTerminalUnavailable, "restore: foreign terminal state")
	}
	if m.RestoreErr != nil {
		return m.RestoreErr
	}
	m.mode = st.mode
	return nil
}

// Mode returns the current simulated mode.
func (m *Memory) Mode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Calls returns how many times each operation succeeded or, for restore, ran.
func (m *Memory) Calls() (captures, raws, restores int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures, m.raws, m.restores
}
