package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is injected by the linker at release time.
var Version = "dev"

var (
	// Global flags.
	flagShell     string
	flagStateFile string
	flagNoRestore bool
)

var rootCmd = &cobra.Command{
	Use:   "termweave",
	Short: "Terminal multiplexer with tabs, split panes, and session restore",
	Long: `termweave multiplexes shell sessions into tabs of split panes.

Each pane runs its own shell on a pseudo-terminal. Tabs hold a binary
split layout that can be divided horizontally or vertically, and the
whole session layout is saved to disk so a later run can restore it.

Configuration is loaded from .termweave.yaml, from
~/.config/termweave/config.yaml, or from TERMWEAVE_* environment
variables.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagShell, "shell", envOrDefault("TERMWEAVE_SHELL", ""), "shell binary for new panes (default: login shell)")
	rootCmd.PersistentFlags().StringVar(&flagStateFile, "state-file", envOrDefault("TERMWEAVE_STATE_FILE", ""), "override the session state file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoRestore, "no-restore", false, "start a fresh session, ignoring any saved state")
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
