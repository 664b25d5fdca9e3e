package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/linuxstory/internal/story"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Resume the story where you left off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge <challenge> <step>",
	Short: "Start playing at a specific challenge step",
	Long: "Jump straight to a step and play from there. Steps are numbered from 0.\n" +
		"Progress already made in other challenges is kept.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("step must be a number, got %q", args[1])
		}
		return runApp(cmd, &story.StepID{Challenge: args[0], Index: index})
	},
}
