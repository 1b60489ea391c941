package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termweave/termweave/internal/state"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the saved session",
	Long:  `Delete the session state file so the next run starts fresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		store := state.NewStore(cfg.StateFile)
		if err := store.Remove(); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", store.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
