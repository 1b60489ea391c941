package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/termweave/termweave/internal/layout"
	"github.com/termweave/termweave/internal/state"
)

var stateAsJSON bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the saved session",
	Long: `Print a summary of the saved session state: its tabs, their split
layouts, and which panes had exited when the session was saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showState()
	},
}

func init() {
	stateCmd.Flags().BoolVar(&stateAsJSON, "json", false, "print the raw state file")
	rootCmd.AddCommand(stateCmd)
}

func showState() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	store := state.NewStore(cfg.StateFile)
	if stateAsJSON {
		raw, err := os.ReadFile(store.Path())
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "no saved session at %s\n", store.Path())
				return nil
			}
			return err
		}
		os.Stdout.Write(raw)
		return nil
	}
	snap, ok, err := store.Load()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "no saved session at %s\n", store.Path())
		return nil
	}

	fmt.Printf("state file: %s\n", store.Path())
	fmt.Printf("tabs: %d\n", len(snap.Tabs))
	for _, tab := range snap.Tabs {
		active := ""
		if tab.ID == snap.ActiveTabID {
			active = " (active)"
		}
		fmt.Printf("\n%s %q%s\n", tab.ID, tab.Name, active)
		printNode(tab.Root, tab.ActivePaneID, "  ")
		for _, p := range tab.Panes {
			if p.Exited {
				fmt.Printf("  %s %q exited at %s\n", p.ID, p.Title, p.ExitedAt.Format("2006-01-02 15:04:05"))
			}
		}
	}
	return nil
}

func printNode(n layout.Node, activePane, indent string) {
	switch n := n.(type) {
	case *layout.Leaf:
		marker := ""
		if n.PaneID == activePane {
			marker = " *"
		}
		fmt.Printf("%s%s%s\n", indent, n.PaneID, marker)
	case *layout.Split:
		fmt.Printf("%s%s %.0f%%\n", indent, n.Direction, n.Ratio*100)
		printNode(n.A, activePane, indent+"  ")
		printNode(n.B, activePane, indent+"  ")
	}
}
