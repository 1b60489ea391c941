// Package session owns the live multiplexer state: the ordered list of
// tabs, each tab's split tree and pane registry, and the reverse index
// from process handles to panes. All mutations go through Manager,
// which serializes them with a single mutex and keeps every invariant
// (exactly one active tab while tabs exist, one active pane per tab,
// ids never reused) inside one critical section.
package session

import (
	"time"

	"github.com/termweave/termweave/internal/bridge"
	"github.com/termweave/termweave/internal/layout"
)

// Pane is a terminal viewport bound to at most one shell process.
// A pane whose process has exited stays in the tree with Exited set
// until the user closes it.
type Pane struct {
	ID       string
	Title    string
	Handle   bridge.Handle
	Exited   bool
	ExitedAt time.Time
}

// Tab is one workspace: a named split tree plus the panes it holds.
type Tab struct {
	ID           string
	Name         string
	Root         layout.Node
	ActivePaneID string
	Panes        map[string]*Pane
}

// Terminator is the slice of the process bridge the manager needs when
// it closes panes. Terminate must tolerate stale handles.
type Terminator interface {
	Terminate(h bridge.Handle)
}

// PaneView is a read-only copy of a pane handed to renderers.
type PaneView struct {
	ID         string
	Title      string
	Handle     bridge.Handle
	Exited     bool
	ExitedAt   time.Time
	HasProcess bool
}

// TabView is a read-only copy of a tab. Root is shared, not copied:
// layout trees are immutable values, so a view stays stable even while
// the manager builds the tab's next tree.
type TabView struct {
	ID           string
	Name         string
	Root         layout.Node
	ActivePaneID string
	Panes        map[string]PaneView
}

func (t *Tab) view() TabView {
	panes := make(map[string]PaneView, len(t.Panes))
	for id, p := range t.Panes {
		panes[id] = PaneView{
			ID:         p.ID,
			Title:      p.Title,
			Handle:     p.Handle,
			Exited:     p.Exited,
			ExitedAt:   p.ExitedAt,
			HasProcess: p.Handle != "" && !p.Exited,
		}
	}
	return TabView{
		ID:           t.ID,
		Name:         t.Name,
		Root:         t.Root,
		ActivePaneID: t.ActivePaneID,
		Panes:        panes,
	}
}
