package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/ttyreplay/internal/apperr"
	"github.com/SmitUplenchwar2687/ttyreplay/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ttyreplay config files",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write an example config file",
		Long: `Writes an example config file holding every setting at its default value.
Paths ending in .yaml or .yml get YAML, anything else gets JSON.`,
		Example: `  ttyreplay config init ttyreplay.yaml
  ttyreplay replay --config ttyreplay.yaml casts.db 8f2c1a 1`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return apperr.New(apperr.CodeUsage, fmt.Sprintf("%s already exists (use --force to overwrite)", path))
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("checking %s: %w", path, err)
				}
			}
			if err := config.WriteExample(path); err != nil {
				return fmt.Errorf("writing example config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote example config to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
