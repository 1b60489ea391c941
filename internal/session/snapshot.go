package session

import (
	"fmt"
	"time"

	"github.com/termweave/termweave/internal/layout"
)

// Snapshot is a point-in-time copy of the session safe to serialize.
// Process handles never appear in a snapshot; a restored session holds
// unbound panes until new processes are attached.
type Snapshot struct {
	Tabs        []TabSnapshot
	ActiveTabID string
	TabCounter  uint64
	PaneCounter uint64
}

// TabSnapshot mirrors Tab without runtime process state.
type TabSnapshot struct {
	ID           string
	Name         string
	Root         layout.Node
	ActivePaneID string
	Panes        []PaneSnapshot
}

// PaneSnapshot records a pane's identity and whether its process had
// already exited when the snapshot was taken.
type PaneSnapshot struct {
	ID       string
	Title    string
	Exited   bool
	ExitedAt time.Time
}

// Snapshot copies the current session. Layout trees are immutable, so
// sharing roots with the live session is safe.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		ActiveTabID: m.activeID,
		TabCounter:  m.tabCounter,
		PaneCounter: m.paneCounter,
		Tabs:        make([]TabSnapshot, 0, len(m.tabs)),
	}
	for _, t := range m.tabs {
		ts := TabSnapshot{
			ID:           t.ID,
			Name:         t.Name,
			Root:         t.Root,
			ActivePaneID: t.ActivePaneID,
		}
		for _, id := range layout.Leaves(t.Root) {
			p := t.Panes[id]
			ts.Panes = append(ts.Panes, PaneSnapshot{
				ID:       p.ID,
				Title:    p.Title,
				Exited:   p.Exited,
				ExitedAt: p.ExitedAt,
			})
		}
		snap.Tabs = append(snap.Tabs, ts)
	}
	return snap
}

// Restore replaces the session with the snapshot's contents after
// validating it. Counters are restored as-is, so ids minted after a
// restore never collide with ids recorded in the snapshot. Every
// restored pane starts unbound.
func (m *Manager) Restore(snap Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tabs := make([]*Tab, 0, len(snap.Tabs))
	for _, ts := range snap.Tabs {
		tab := &Tab{
			ID:           ts.ID,
			Name:         ts.Name,
			Root:         ts.Root,
			ActivePaneID: ts.ActivePaneID,
			Panes:        make(map[string]*Pane, len(ts.Panes)),
		}
		for _, ps := range ts.Panes {
			tab.Panes[ps.ID] = &Pane{
				ID:       ps.ID,
				Title:    ps.Title,
				Exited:   ps.Exited,
				ExitedAt: ps.ExitedAt,
			}
		}
		tabs = append(tabs, tab)
	}

	for h := range m.byHandle {
		if m.term != nil {
			m.term.Terminate(h)
		}
		delete(m.byHandle, h)
	}
	m.tabs = tabs
	m.activeID = snap.ActiveTabID
	m.tabCounter = snap.TabCounter
	m.paneCounter = snap.PaneCounter
	return nil
}

func validateSnapshot(snap Snapshot) error {
	activeOK := snap.ActiveTabID == "" && len(snap.Tabs) == 0
	tabIDs := make(map[string]bool, len(snap.Tabs))
	for _, ts := range snap.Tabs {
		if tabIDs[ts.ID] {
			return fmt.Errorf("duplicate tab id %q", ts.ID)
		}
		tabIDs[ts.ID] = true
		if ts.ID == snap.ActiveTabID {
			activeOK = true
		}
		if ts.Root == nil {
			return fmt.Errorf("tab %q has no layout", ts.ID)
		}
		leaves := layout.Leaves(ts.Root)
		if len(leaves) != len(ts.Panes) {
			return fmt.Errorf("tab %q has %d panes but %d leaves", ts.ID, len(ts.Panes), len(leaves))
		}
		paneIDs := make(map[string]bool, len(ts.Panes))
		for _, ps := range ts.Panes {
			if paneIDs[ps.ID] {
				return fmt.Errorf("duplicate pane id %q in tab %q", ps.ID, ts.ID)
			}
			paneIDs[ps.ID] = true
			if !layout.Contains(ts.Root, ps.ID) {
				return fmt.Errorf("pane %q not in tab %q layout", ps.ID, ts.ID)
			}
		}
		if !paneIDs[ts.ActivePaneID] {
			return fmt.Errorf("active pane %q not in tab %q", ts.ActivePaneID, ts.ID)
		}
	}
	if !activeOK {
		return fmt.Errorf("active tab %q not in snapshot", snap.ActiveTabID)
	}
	return nil
}
