package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/store"
)

// logger is built by the root command before any subcommand runs. The TUI
// owns the terminal, so logs go to a file in the data directory.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "linuxstory",
	Short: "Learn the Linux command line through a story",
	Long:  "Linux Story: a terminal tutorial that teaches shell commands one challenge at a time.",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := buildLogger(cmd)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides LINUXSTORY_DB env var)")
	flags.String("state", "", "Keep progress in this JSON file instead of the database")
	flags.String("story", "", "Story file to play instead of the built-in story")
	flags.String("strings", "", "YAML file of story text overriding the story's own strings")
	flags.String("sandbox", "", "Directory the story takes place in (overrides LINUXSTORY_WORLD env var)")
	flags.Bool("debug", false, "Show the engine state widget")
	flags.BoolP("verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LINUXSTORY_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	dir, err := store.DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logPath := filepath.Join(dir, "linuxstory.log")

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(zap.String("version", version)), nil
}
