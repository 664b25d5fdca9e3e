package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/abhisek/linuxstory/internal/story"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Inspect story files",
}

var storyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the challenges of the story",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadStory(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cmd, g)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %-36s  %5s  %s\n", "ID", "Title", "Steps", "Requires")
		fmt.Fprintln(out, strings.Repeat("─", 80))

		for _, c := range g.Challenges() {
			fmt.Fprintf(out, "%-20s  %s  %5d  %s\n", c.ID, cell(cat.Resolve(c.TitleKey), 36), len(c.Steps), c.Prerequisite)
		}

		fmt.Fprintf(out, "\n%d challenges, %d steps\n", g.Len(), g.StepCount())
		return nil
	},
}

var storyValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a story file for errors without playing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := story.LoadFile(args[0])
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cmd, g)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: ok (%d challenges, %d steps)\n", args[0], g.Len(), g.StepCount())
		if missing := cat.Missing(textKeys(g)); len(missing) > 0 {
			fmt.Fprintf(out, "%d text keys have no string and will show as written:\n", len(missing))
			for _, k := range missing {
				fmt.Fprintf(out, "  %s\n", k)
			}
		}
		return nil
	},
}

// textKeys lists every key the story asks the catalog to resolve.
func textKeys(g *story.Graph) []string {
	var keys []string
	for _, c := range g.Challenges() {
		keys = append(keys, c.TitleKey)
		for _, s := range c.Steps {
			keys = append(keys, s.PromptKey)
			keys = append(keys, s.HintKeys...)
		}
	}
	return keys
}

// cell truncates s to width terminal cells and pads it back out, so
// multi-byte titles stay aligned.
func cell(s string, width int) string {
	s = ansi.Truncate(s, width, "...")
	return s + strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
}

func init() {
	storyCmd.AddCommand(storyListCmd)
	storyCmd.AddCommand(storyValidateCmd)
}
