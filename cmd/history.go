package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/linuxstory/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent progression events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		events, err := st.EventRepo("").Query(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No events recorded yet.")
			return nil
		}
		for _, ev := range events {
			line := fmt.Sprintf("%s  %-8.8s  %-18s  %s/%d",
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.SessionID, ev.Kind, ev.Challenge, ev.StepIndex)
			if ev.HintKey != "" {
				line += "  " + ev.HintKey
			}
			if ev.Detail != "" {
				line += "  " + ev.Detail
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 50, "Number of most recent events to show (0 for all)")
}
