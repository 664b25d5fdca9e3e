package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where you are in the story",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openProgress(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		v := d.engine.View()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Story:      %s\n", d.catalog.Resolve(d.graph.Title()))
		if v.Finished {
			fmt.Fprintf(out, "Progress:   complete (%d steps)\n", v.Total)
		} else {
			fmt.Fprintf(out, "Progress:   step %d of %d\n", v.Ordinal+1, v.Total)
			fmt.Fprintf(out, "Current:    %s\n", v.Cursor)
			fmt.Fprintf(out, "Attempts:   %d\n", v.Attempts)
			fmt.Fprintf(out, "Hints seen: %d of %d\n", v.HintsShown, len(v.Step.HintKeys))
		}

		completed := "none"
		if len(v.Completed) > 0 {
			completed = strings.Join(v.Completed, ", ")
		}
		fmt.Fprintf(out, "Completed:  %s\n", completed)
		return nil
	},
}
