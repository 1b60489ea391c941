// Package state persists session snapshots to disk as JSON and loads
// them back. The on-disk format is a plain tagged rendering of the
// snapshot; process handles are runtime-only and never written.
package state

import (
	"fmt"
	"time"

	"github.com/termweave/termweave/internal/layout"
	"github.com/termweave/termweave/internal/session"
)

// formatVersion guards against loading files written by an
// incompatible future layout of the state file.
const formatVersion = 1

type fileState struct {
	Version     int        `json:"version"`
	SavedAt     time.Time  `json:"saved_at"`
	ActiveTabID string     `json:"active_tab_id,omitempty"`
	TabCounter  uint64     `json:"tab_counter"`
	PaneCounter uint64     `json:"pane_counter"`
	Tabs        []tabState `json:"tabs"`
}

type tabState struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Layout       *nodeState  `json:"layout"`
	ActivePaneID string      `json:"active_pane_id"`
	Panes        []paneState `json:"panes"`
}

type paneState struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Exited   bool       `json:"exited,omitempty"`
	ExitedAt *time.Time `json:"exited_at,omitempty"`
}

// nodeState is the tagged wire form of a layout node. Exactly one of
// the leaf and split field groups is populated, selected by Type.
type nodeState struct {
	Type      string     `json:"type"`
	PaneID    string     `json:"pane_id,omitempty"`
	Direction string     `json:"direction,omitempty"`
	Ratio     float64    `json:"ratio,omitempty"`
	A         *nodeState `json:"a,omitempty"`
	B         *nodeState `json:"b,omitempty"`
}

const (
	nodeLeaf  = "leaf"
	nodeSplit = "split"
)

func encodeNode(n layout.Node) *nodeState {
	switch n := n.(type) {
	case *layout.Leaf:
		return &nodeState{Type: nodeLeaf, PaneID: n.PaneID}
	case *layout.Split:
		return &nodeState{
			Type:      nodeSplit,
			Direction: string(n.Direction),
			Ratio:     n.Ratio,
			A:         encodeNode(n.A),
			B:         encodeNode(n.B),
		}
	}
	return nil
}

func decodeNode(n *nodeState) (layout.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("missing layout node")
	}
	switch n.Type {
	case nodeLeaf:
		if n.PaneID == "" {
			return nil, fmt.Errorf("leaf node without pane id")
		}
		return &layout.Leaf{PaneID: n.PaneID}, nil
	case nodeSplit:
		dir := layout.Direction(n.Direction)
		if dir != layout.Horizontal && dir != layout.Vertical {
			return nil, fmt.Errorf("unknown split direction %q", n.Direction)
		}
		if n.Ratio <= 0 || n.Ratio >= 1 {
			return nil, fmt.Errorf("split ratio %v out of range", n.Ratio)
		}
		a, err := decodeNode(n.A)
		if err != nil {
			return nil, err
		}
		b, err := decodeNode(n.B)
		if err != nil {
			return nil, err
		}
		return &layout.Split{Direction: dir, Ratio: n.Ratio, A: a, B: b}, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", n.Type)
	}
}

func encode(snap session.Snapshot) fileState {
	fs := fileState{
		Version:     formatVersion,
		SavedAt:     time.Now().UTC(),
		ActiveTabID: snap.ActiveTabID,
		TabCounter:  snap.TabCounter,
		PaneCounter: snap.PaneCounter,
		Tabs:        make([]tabState, 0, len(snap.Tabs)),
	}
	for _, t := range snap.Tabs {
		ts := tabState{
			ID:           t.ID,
			Name:         t.Name,
			Layout:       encodeNode(t.Root),
			ActivePaneID: t.ActivePaneID,
		}
		for _, p := range t.Panes {
			ps := paneState{ID: p.ID, Title: p.Title, Exited: p.Exited}
			if !p.ExitedAt.IsZero() {
				at := p.ExitedAt
				ps.ExitedAt = &at
			}
			ts.Panes = append(ts.Panes, ps)
		}
		fs.Tabs = append(fs.Tabs, ts)
	}
	return fs
}

func decode(fs fileState) (session.Snapshot, error) {
	if fs.Version != formatVersion {
		return session.Snapshot{}, fmt.Errorf("unsupported state version %d", fs.Version)
	}
	snap := session.Snapshot{
		ActiveTabID: fs.ActiveTabID,
		TabCounter:  fs.TabCounter,
		PaneCounter: fs.PaneCounter,
		Tabs:        make([]session.TabSnapshot, 0, len(fs.Tabs)),
	}
	for _, ts := range fs.Tabs {
		root, err := decodeNode(ts.Layout)
		if err != nil {
			return session.Snapshot{}, fmt.Errorf("tab %q: %w", ts.ID, err)
		}
		tab := session.TabSnapshot{
			ID:           ts.ID,
			Name:         ts.Name,
			Root:         root,
			ActivePaneID: ts.ActivePaneID,
		}
		for _, ps := range ts.Panes {
			p := session.PaneSnapshot{ID: ps.ID, Title: ps.Title, Exited: ps.Exited}
			if ps.ExitedAt != nil {
				p.ExitedAt = *ps.ExitedAt
			}
			tab.Panes = append(tab.Panes, p)
		}
		snap.Tabs = append(snap.Tabs, tab)
	}
	return snap, nil
}
