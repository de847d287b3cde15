package cli

import (
	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
)

// NewRootCmd creates the root ttyreplay command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ttyreplay",
		Short: "Replay recorded terminal sessions",
		Long: `ttyreplay streams a captured terminal session back to your terminal,
reproducing the original pauses between output chunks at any speed.

Sessions are read from a SQLite file, a Pebble directory or a Redis server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.Wrap(apperr.CodeUsage, "invalid flags", err)
	})

	root.AddCommand(
		newReplayCmd(stdio()),
		newPlanCmd(),
		newConfigCmd(),
	)

	return root
}

// exactArgs is cobra.ExactArgs reporting a Usage error.
func exactArgs(n int) cobra.PositionalArgs {
	check := cobra.ExactArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return apperr.Wrap(apperr.CodeUsage, cmd.UseLine(), err)
		}
		return nil
	}
}
