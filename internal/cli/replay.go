package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/clock"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/replay"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/terminal"
)

// ioSet is the process surface a replay touches.
type ioSet struct {
	term   terminal.Controller
	in     io.Reader // watched for interrupt keys while raw; nil disables
	out    io.Writer
	errOut io.Writer
	clock  clock.Clock
}

// stdio puts stdin into raw mode, since that is where interrupt keys arrive,
// and writes payloads to stdout. When both are the same terminal the
// payloads land on the raw tty; a redirected stdout receives them unchanged.
func stdio() ioSet {
	return ioSet{
		term:   terminal.NewTTY(os.Stdin),
		in:     newInput(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
		clock:  clock.NewRealClock(),
	}
}

func newReplayCmd(sys ioSet) *cobra.Command {
	var (
		opts    storeOptions
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "replay <store> <session-id> <speedup>",
		Short: "Replay a recorded session to the terminal",
		Long: `Streams the output of a recorded session to stdout, pausing between chunks
as long as the original session did, divided by the speedup.

The terminal is switched to raw mode for the duration of the replay and is
always restored afterwards, including on errors and interrupts. Press Ctrl-C
to stop early.

Speedup: 1 = real-time, 2 = twice as fast, 0.5 = half speed`,
		Example: `  ttyreplay replay casts.db 8f2c1a 1
  ttyreplay replay casts.db 8f2c1a 4 --max-wait 2s
  ttyreplay replay --backend pebble /var/lib/casts 8f2c1a 2
  ttyreplay replay --backend redis localhost:6379 8f2c1a 1 --mode absolute`,
		Args: exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			speedup, err := parseSpeedup(args[2])
			if err != nil {
				return err
			}
			cfg, store, err := opts.openStore(cmd, args[0])
			if err != nil {
				return err
			}

			logger := log.New(sys.errOut, "ttyreplay: ", 0)
			var (
				observer     func(replay.State)
				engineLogger *log.Logger
			)
			if verbose {
				engineLogger = logger
				observer = func(s replay.State) {
					// The terminal may be raw here, so end lines explicitly.
					fmt.Fprintf(sys.errOut, "ttyreplay: state %s\r\n", s)
				}
			}

			engine := replay.New(store, sys.term, sys.out, replay.Options{
				Mode:     cfg.Replay.Mode,
				Speedup:  speedup,
				MaxWait:  cfg.Replay.MaxWait,
				Clock:    sys.clock,
				Logger:   engineLogger,
				Observer: observer,
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			stopWatch := startInterruptWatch(ctx, sys.in, cancel)

			summary, err := engine.Run(ctx, args[1])
			stopWatch()
			if err != nil {
				return err
			}

			// In verbose mode the engine logger has already reported this.
			if !verbose {
				logger.Printf("replayed session %s: %d records, %d bytes, planned %s, wall %s",
					summary.SessionID,
					summary.Written,
					summary.Bytes,
					summary.Planned.Round(time.Millisecond),
					summary.Wall.Round(time.Millisecond))
			}
			return nil
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "report engine states on stderr")

	return cmd
}

// Keys that stop a replay while the terminal is raw and no longer turns them
// into signals.
const (
	keyInterrupt = 0x03 // Ctrl-C
	keyQuit      = 0x1c // Ctrl-\
)

// deadlineReader is input whose pending reads can be cut short.
type deadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// startInterruptWatch runs watchInterrupt on in and returns a function that
// stops it. When in supports read deadlines the stop function waits for the
// watcher to exit, so no input is read after the replay. Other readers are
// left with their pending read.
func startInterruptWatch(ctx context.Context, in io.Reader, cancel context.CancelFunc) (stop func()) {
	if in == nil {
		return func() {}
	}
	dr, ok := in.(deadlineReader)
	if ok {
		if err := dr.SetReadDeadline(time.Time{}); err != nil {
			ok = false
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		watchInterrupt(ctx, in, cancel)
	}()

	return func() {
		cancel()
		if !ok {
			return
		}
		if err := dr.SetReadDeadline(time.Now()); err != nil {
			return
		}
		<-done
	}
}

// watchInterrupt cancels the replay when an interrupt key is read from in. It
// returns when in fails or ctx is done.
func watchInterrupt(ctx context.Context, in io.Reader, cancel context.CancelFunc) {
	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		if ctx.Err() != nil {
			return
		}
		for _, b := range buf[:n] {
			if b == keyInterrupt || b == keyQuit {
				cancel()
				return
			}
		}
		if err != nil {
			return
		}
	}
}
