package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/timing"
)

type planEntry struct {
	Index  int    `json:"index"`
	Wait   string `json:"wait"`
	Offset string `json:"offset"`
	Bytes  int    `json:"bytes"`
}

type planOutput struct {
	SessionID string      `json:"session_id"`
	Mode      timing.Mode `json:"mode"`
	Speedup   float64     `json:"speedup"`
	Entries   []planEntry `json:"entries"`
	Total     string      `json:"total"`
	Bytes     int         `json:"bytes"`
}

func newPlanCmd() *cobra.Command {
	var (
		opts       storeOptions
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan <store> <session-id> <speedup>",
		Short: "Print the replay schedule of a session without replaying it",
		Long: `Fetches a session and prints, for every record, the pause that would
precede it, the cumulative offset from the start and its payload size.
The terminal is not touched.`,
		Example: `  ttyreplay plan casts.db 8f2c1a 1
  ttyreplay plan casts.db 8f2c1a 4 --max-wait 2s --json`,
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

			sessionID := args[1]
			records, err := store.FetchSession(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return apperr.New(apperr.CodeSessionNotFound, fmt.Sprintf("session %s has no records", sessionID))
			}
			plan, err := timing.Build(records, cfg.Replay.Mode, speedup, timing.Options{MaxWait: cfg.Replay.MaxWait})
			if err != nil {
				return err
			}

			out := planOutput{
				SessionID: sessionID,
				Mode:      cfg.Replay.Mode,
				Speedup:   speedup,
				Entries:   make([]planEntry, 0, len(plan)),
				Total:     plan.Total().String(),
				Bytes:     plan.Bytes(),
			}
			var offset time.Duration
			for i, e := range plan {
				offset += e.Wait
				out.Entries = append(out.Entries, planEntry{
					Index:  i,
					Wait:   e.Wait.String(),
					Offset: offset.String(),
					Bytes:  len(e.Payload),
				})
			}

			w := cmd.OutOrStdout()
			if outputJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(w, "Session %s (%s markers) at %gx speed\n\n", sessionID, out.Mode, speedup)
			for _, e := range out.Entries {
				fmt.Fprintf(w, "  #%-5d wait=%-12s at=%-12s bytes=%d\n", e.Index, e.Wait, e.Offset, e.Bytes)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "--- Plan Summary ---")
			fmt.Fprintf(w, "  Records:     %d\n", len(out.Entries))
			fmt.Fprintf(w, "  Bytes:       %d\n", out.Bytes)
			fmt.Fprintf(w, "  Duration:    %s\n", out.Total)
			return nil
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")

	return cmd
}
