package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/termweave/termweave/internal/bridge"
	"github.com/termweave/termweave/internal/config"
	telem "github.com/termweave/termweave/internal/otel"
	"github.com/termweave/termweave/internal/router"
	"github.com/termweave/termweave/internal/session"
	"github.com/termweave/termweave/internal/state"
	"github.com/termweave/termweave/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the multiplexer",
	Long: `Start the interactive multiplexer. A saved session is restored when
the state file exists; otherwise a single tab with one shell opens.

The session is saved on exit and, by default, every 30 seconds while
running. Restored panes get fresh shells; running programs are not
resurrected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMux()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runMux() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration: defaults -> config file -> env vars.
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
	}
	if tel != nil {
		defer tel.Shutdown(ctx)
	}

	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}

	pty := bridge.NewPTY(cfg.Shell)
	defer pty.Close()

	mgr := session.NewManager(pty, metrics)
	store := state.NewStore(cfg.StateFile)

	if !flagNoRestore {
		if snap, ok, err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring saved state: %v\n", err)
		} else if ok {
			if err := mgr.Restore(snap); err != nil {
				fmt.Fprintf(os.Stderr, "warning: ignoring saved state: %v\n", err)
			}
		}
	}

	resizer := router.NewResizer(pty, cfg.ResizeDebounceDuration, metrics)
	defer resizer.Close()

	save := func() error { return store.Save(mgr.Snapshot()) }

	model := tui.New(ctx, tui.Options{
		Manager:  mgr,
		Bridge:   pty,
		Resizer:  resizer,
		Metrics:  metrics,
		Save:     save,
		Autosave: cfg.AutosaveDuration,
		Cols:     cfg.Cols,
		Rows:     cfg.Rows,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Route bridge events into the running program.
	rt := &router.Router{
		Lookup: mgr.PaneByHandle,
		OnOutput: func(tabID, paneID string, data []byte) {
			p.Send(tui.OutputMsg{TabID: tabID, PaneID: paneID, Data: data})
		},
		OnExit: func(h bridge.Handle) bool {
			tabID, paneID, ok := mgr.HandleExit(h)
			if ok {
				resizer.Cancel(h)
				p.Send(tui.ExitMsg{TabID: tabID, PaneID: paneID})
			}
			return ok
		},
		Metrics: metrics,
	}
	go rt.Run(ctx, pty.Events())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if err := save(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// loadConfig loads the file/env config and applies command-line flags,
// which win over everything.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagShell != "" {
		cfg.Shell = flagShell
	}
	if flagStateFile != "" {
		cfg.StateFile = flagStateFile
	}
	return cfg, nil
}
