// Package replay plays a captured session back onto a terminal.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/clock"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/storage"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/terminal"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

// Options configure an Engine.
type Options struct {
	Mode    timing.Mode
	Speedup float64 // >1 faster, <1 slower; must be positive
	MaxWait time.Duration

	Clock  clock.Clock // defaults to the wall clock
	Logger *log.Logger // defaults to discarding output
	// Observer, if set, is called on every state transition.
	Observer func(State)
}

// Summary describes a replay run.
type Summary struct {
	SessionID string        `json:"session_id"`
	Records   int           `json:"records"`
	Written   int           `json:"written"`
	Bytes     int           `json:"bytes"`
	Planned   time.Duration `json:"planned"`
	Wall      time.Duration `json:"wall"`
}

// Engine replays one session at a time. It is not safe for concurrent use:
// the terminal it controls is a single shared resource.
type Engine struct {
	store storage.Store
	term  terminal.Controller
	out   io.Writer
	opts  Options
}

// New creates an engine that reads from store, controls term and writes
// payloads to out.
func New(store storage.Store, term terminal.Controller, out io.Writer, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		store: store,
		term:  term,
		out:   out,
		opts:  opts,
	}
}

// Run replays sessionID. Configuration errors and terminal capture failures
// are returned before the terminal is touched. Once the state is captured it
// is restored exactly once on every path out of Run, including panics, and
// any restore failure is joined to the returned error. Errors raised during
// playback are marked with apperr.MarkRestored once the terminal is back in
// its original mode.
func (e *Engine) Run(ctx context.Context, sessionID string) (summary *Summary, err error) {
	if err := timing.ValidateSpeedup(e.opts.Speedup); err != nil {
		return nil, err
	}
	if err := e.opts.Mode.Validate(); err != nil {
		return nil, err
	}

	e.enter(StateIdle)
	guard, err := terminal.Acquire(e.term)
	if err != nil {
		return nil, err
	}

	summary = &Summary{SessionID: sessionID}
	raw := false
	defer func() {
		r := recover()
		if err != nil || r != nil {
			e.enter(StateError)
		}
		e.enter(StateRestoring)
		rerr := guard.Release()
		if rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore terminal: %w", rerr))
		}
		if r != nil {
			panic(r)
		}
		if err != nil {
			e.opts.Logger.Printf("session %s: stopped after %d/%d records: %v", sessionID, summary.Written, summary.Records, err)
			if raw && rerr == nil {
				err = apperr.MarkRestored(err)
			}
			return
		}
		e.enter(StateDone)
		e.opts.Logger.Printf("session %s: replayed %d records (%d bytes) in %s",
			sessionID, summary.Written, summary.Bytes, summary.Wall.Round(time.Millisecond))
	}()

	e.enter(StateTerminalRaw)
	if err := guard.EnterRaw(); err != nil {
		return summary, err
	}
	raw = true

	plan, err := e.plan(ctx, sessionID)
	if err != nil {
		return summary, err
	}
	summary.Records = len(plan)
	summary.Planned = plan.Total()

	e.enter(StateStreaming)
	return summary, e.stream(ctx, plan, summary)
}

// plan fetches the session and converts it into waits. The store connection
// is closed by the time it returns.
func (e *Engine) plan(ctx context.Context, sessionID string) (timing.Plan, error) {
	records, err := e.store.FetchSession(ctx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Wrap(apperr.CodeInterrupted, "interrupted while fetching session", err)
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperr.New(apperr.CodeSessionNotFound, fmt.Sprintf("session %s has no records", sessionID))
	}
	return timing.Build(records, e.opts.Mode, e.opts.Speedup, timing.Options{MaxWait: e.opts.MaxWait})
}

func (e *Engine) stream(ctx context.Context, plan timing.Plan, summary *Summary) error {
	start := e.opts.Clock.Now()
	defer func() {
		summary.Wall = e.opts.Clock.Since(start)
	}()

	for i, entry := range plan {
		if err := clock.Sleep(ctx, e.opts.Clock, entry.Wait); err != nil {
			return apperr.Wrap(apperr.CodeInterrupted, fmt.Sprintf("interrupted before record %d", i), err)
		}

		n, err := e.out.Write(entry.Payload)
		summary.Bytes += n
		if err == nil && n < len(entry.Payload) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return apperr.Wrap(apperr.CodeTerminalWriteFailed, fmt.Sprintf("write record %d", i), err)
		}
		summary.Written++
	}
	return nil
}

func (e *Engine) enter(s State) {
	if e.opts.Observer != nil {
		e.opts.Observer(s)
	}
}
