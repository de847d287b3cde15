// Package replay exposes the session replay engine for embedding.
package replay

import (
	"io"
	"os"

	internalreplay "github.com/SmitUplenchwar2687/ttyreplay/internal/replay"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/session"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/terminal"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
	"github.com/SmitUplenchwar2687/ttyreplay/pkg/storage"
)

// Engine replays one session at a time to a terminal.
type Engine = internalreplay.Engine

// Options configures an Engine.
type Options = internalreplay.Options

// Summary reports what a replay did.
type Summary = internalreplay.Summary

// State is a step of the engine lifecycle.
type State = internalreplay.State

// Record is one captured output chunk.
type Record = session.Record

// Mode declares how the markers of a dataset are to be read.
type Mode = timing.Mode

// Marker modes.
const (
	ModeRelative = timing.ModeRelative
	ModeAbsolute = timing.ModeAbsolute
)

// Plan is the precomputed sequence of waits and payloads of a session.
type Plan = timing.Plan

// TerminalController captures, switches and restores a terminal mode.
type TerminalController = terminal.Controller

// New creates an engine that reads from store, controls term and writes
// payloads to out.
func New(store storage.Store, term TerminalController, out io.Writer, opts Options) *Engine {
	return internalreplay.New(store, term, out, opts)
}

// NewTerminal returns a controller for the terminal attached to f.
func NewTerminal(f *os.File) TerminalController {
	return terminal.NewTTY(f)
}

// MemoryTerminal is an in-process terminal for tests and headless replays.
type MemoryTerminal = terminal.Memory

// NewMemoryTerminal returns a MemoryTerminal in cooked mode.
func NewMemoryTerminal() *MemoryTerminal {
	return terminal.NewMemory()
}

// BuildPlan converts ordered records into waits without replaying them.
func BuildPlan(records []Record, mode Mode, speedup float64) (Plan, error) {
	return timing.Build(records, mode, speedup, timing.Options{})
}
