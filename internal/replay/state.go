package replay

// State is a phase of one replay run.
//
//	Idle -> TerminalRaw -> Streaming -> Restoring -> Done
//
// Error is entered from TerminalRaw or Streaming and is always followed by
// Restoring.
type State int

const (
	StateIdle State = iota
	StateTerminalRaw
	StateStreaming
	StateRestoring
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTerminalRaw:
		return "terminal-raw"
	case StateStreaming:
		return "streaming"
	case StateRestoring:
		return "restoring"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
