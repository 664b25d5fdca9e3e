package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/linuxstory/internal/world"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all progress and empty the sandbox",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openProgress(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.tracker.Clear(cmd.Context(), d.graph.First()); err != nil {
			return fmt.Errorf("clear progress: %w", err)
		}

		root, err := sandboxRoot(cmd)
		if err != nil {
			return err
		}
		sb, err := world.New(root, logger)
		if err != nil {
			return fmt.Errorf("open sandbox: %w", err)
		}
		if err := sb.Reset(); err != nil {
			return fmt.Errorf("reset sandbox: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Progress cleared. The story starts from the beginning next time.")
		return nil
	},
}
