package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/termweave/termweave/internal/bridge"
	"github.com/termweave/termweave/internal/layout"
	"github.com/termweave/termweave/internal/otel"
)

type paneRef struct {
	tabID  string
	paneID string
}

// Manager holds the whole session and serializes every mutation.
// Unknown tab or pane ids make mutating calls return false without
// touching any state; partial mutation never happens.
type Manager struct {
	mu sync.Mutex

	tabs     []*Tab
	activeID string

	// Counters only ever increase, so ids are never reused within a
	// session, including across close and restore.
	tabCounter  uint64
	paneCounter uint64

	byHandle map[bridge.Handle]paneRef

	term    Terminator
	metrics *otel.Metrics
}

// NewManager creates an empty session. term may be nil when no process
// bridge is attached, as in tests that only exercise layout bookkeeping.
func NewManager(term Terminator, metrics *otel.Metrics) *Manager {
	return &Manager{
		byHandle: make(map[bridge.Handle]paneRef),
		term:     term,
		metrics:  metrics,
	}
}

func (m *Manager) nextTabID() string {
	m.tabCounter++
	return fmt.Sprintf("tab-%d", m.tabCounter)
}

func (m *Manager) nextPaneID() string {
	m.paneCounter++
	return fmt.Sprintf("pane-%d", m.paneCounter)
}

func (m *Manager) tabByID(id string) (*Tab, int) {
	for i, t := range m.tabs {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

// CreateTab appends a new tab with a single unbound pane and makes it
// the active tab. An empty name gets the default "Terminal N" title.
func (m *Manager) CreateTab(name string) (tabID, paneID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tabID = m.nextTabID()
	paneID = m.nextPaneID()
	if name == "" {
		name = fmt.Sprintf("Terminal %d", m.tabCounter)
	}
	pane := &Pane{ID: paneID, Title: fmt.Sprintf("Pane %d", m.paneCounter)}
	tab := &Tab{
		ID:           tabID,
		Name:         name,
		Root:         &layout.Leaf{PaneID: paneID},
		ActivePaneID: paneID,
		Panes:        map[string]*Pane{paneID: pane},
	}
	m.tabs = append(m.tabs, tab)
	m.activeID = tabID
	m.metrics.RecordTabOpened(context.Background())
	return tabID, paneID
}

// CloseTab removes the tab, terminating every bound process in it.
// When the closed tab was active, the replacement is the tab now at
// the closed tab's index, or the last tab when the closed one was
// last. Closing the final tab leaves the session with no active tab.
func (m *Manager) CloseTab(tabID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, idx := m.tabByID(tabID)
	if tab == nil {
		return false
	}

	for _, p := range tab.Panes {
		m.releasePane(p)
	}
	m.tabs = append(m.tabs[:idx], m.tabs[idx+1:]...)

	if m.activeID == tabID {
		if len(m.tabs) == 0 {
			m.activeID = ""
		} else {
			if idx >= len(m.tabs) {
				idx = len(m.tabs) - 1
			}
			m.activeID = m.tabs[idx].ID
		}
	}
	m.metrics.RecordTabClosed(context.Background(), len(tab.Panes))
	return true
}

// releasePane terminates the pane's process if one is still bound and
// drops its reverse-index entry. Caller holds the lock.
func (m *Manager) releasePane(p *Pane) {
	if p.Handle == "" {
		return
	}
	delete(m.byHandle, p.Handle)
	if !p.Exited && m.term != nil {
		m.term.Terminate(p.Handle)
	}
	p.Handle = ""
}

// SetActiveTab switches focus to the given tab.
func (m *Manager) SetActiveTab(tabID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tab, _ := m.tabByID(tabID); tab == nil {
		return false
	}
	m.activeID = tabID
	return true
}

// CycleActiveTab moves focus by delta positions in tab order, wrapping
// at both ends. A session with no tabs is a no-op.
func (m *Manager) CycleActiveTab(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.tabs)
	if n == 0 {
		return
	}
	_, idx := m.tabByID(m.activeID)
	if idx < 0 {
		idx = 0
	}
	idx = ((idx+delta)%n + n) % n
	m.activeID = m.tabs[idx].ID
}

// SetPaneTitle updates a pane's display title.
func (m *Manager) SetPaneTitle(tabID, paneID, title string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(tabID)
	if tab == nil || title == "" {
		return false
	}
	pane, ok := tab.Panes[paneID]
	if !ok {
		return false
	}
	pane.Title = title
	return true
}

// RenameTab sets the tab's display name. Empty names are rejected.
func (m *Manager) RenameTab(tabID, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(tabID)
	if tab == nil || name == "" {
		return false
	}
	tab.Name = name
	return true
}

// SplitPane divides the target pane in the given direction and returns
// the id of the new pane, which becomes the tab's active pane. The new
// pane has no process until BindProcess is called for it.
func (m *Manager) SplitPane(tabID, paneID string, dir layout.Direction) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(tabID)
	if tab == nil {
		return "", false
	}
	if _, ok := tab.Panes[paneID]; !ok {
		return "", false
	}

	newID := m.nextPaneID()
	root, ok := layout.SplitLeaf(tab.Root, paneID, newID, dir)
	if !ok {
		return "", false
	}
	tab.Root = root
	tab.Panes[newID] = &Pane{ID: newID, Title: fmt.Sprintf("Pane %d", m.paneCounter)}
	tab.ActivePaneID = newID
	m.metrics.RecordPaneOpened(context.Background())
	return newID, true
}

// ClosePane removes the pane and terminates its process. The last pane
// of a tab cannot be closed this way; close the tab instead. When the
// closed pane was active, the first leaf of the collapsed tree takes
// over.
func (m *Manager) ClosePane(tabID, paneID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(tabID)
	if tab == nil {
		return false
	}
	pane, ok := tab.Panes[paneID]
	if !ok || layout.CountLeaves(tab.Root) <= 1 {
		return false
	}

	root, ok := layout.RemoveLeaf(tab.Root, paneID)
	if !ok {
		return false
	}
	tab.Root = root
	m.releasePane(pane)
	delete(tab.Panes, paneID)

	if tab.ActivePaneID == paneID {
		if id, ok := layout.FirstLeaf(tab.Root); ok {
			tab.ActivePaneID = id
		}
	}
	m.metrics.RecordPaneClosed(context.Background())
	return true
}

// SetActivePane focuses the given pane within its tab.
func (m *Manager) SetActivePane(tabID, paneID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(tabID)
	if tab == nil {
		return false
	}
	if _, ok := tab.Panes[paneID]; !ok {
		return false
	}
	tab.ActivePaneID = paneID
	return true
}

// CycleActivePane moves focus to the next pane in depth-first tree
// order, wrapping from the last pane back to the first.
func (m *Manager) CycleActivePane(tabID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(tabID)
	if tab == nil {
		return false
	}
	ids := layout.Leaves(tab.Root)
	if len(ids) < 2 {
		return true
	}
	for i, id := range ids {
		if id == tab.ActivePaneID {
			tab.ActivePaneID = ids[(i+1)%len(ids)]
			return true
		}
	}
	tab.ActivePaneID = ids[0]
	return true
}

// BindProcess attaches a process handle to a pane and indexes it for
// event routing. Rebinding a pane whose previous process exited clears
// the exit marker.
func (m *Manager) BindProcess(tabID, paneID string, h bridge.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(tabID)
	if tab == nil {
		return false
	}
	pane, ok := tab.Panes[paneID]
	if !ok {
		return false
	}
	m.releasePane(pane)
	if h == "" {
		return true
	}
	pane.Handle = h
	pane.Exited = false
	pane.ExitedAt = time.Time{}
	m.byHandle[h] = paneRef{tabID: tabID, paneID: paneID}
	return true
}

// PaneByHandle resolves a process handle to its owning tab and pane.
func (m *Manager) PaneByHandle(h bridge.Handle) (tabID, paneID string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref, ok := m.byHandle[h]
	return ref.tabID, ref.paneID, ok
}

// HandleExit marks the pane owning the handle as exited and drops the
// handle from the reverse index. The pane stays in the tree so the
// exit is visible until the user closes it. Handles with no owner,
// such as those of panes already closed, are reported as not ok.
func (m *Manager) HandleExit(h bridge.Handle) (tabID, paneID string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref, ok := m.byHandle[h]
	if !ok {
		return "", "", false
	}
	delete(m.byHandle, h)

	tab, _ := m.tabByID(ref.tabID)
	if tab == nil {
		return "", "", false
	}
	pane, ok := tab.Panes[ref.paneID]
	if !ok {
		return "", "", false
	}
	pane.Exited = true
	pane.ExitedAt = time.Now()
	pane.Handle = ""
	m.metrics.RecordExit(context.Background())
	return ref.tabID, ref.paneID, true
}

// ActiveHandle returns the process handle of the focused pane in the
// focused tab, for routing keyboard input. Not ok when no tab exists
// or the focused pane has no live process.
func (m *Manager) ActiveHandle() (bridge.Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(m.activeID)
	if tab == nil {
		return "", false
	}
	pane, ok := tab.Panes[tab.ActivePaneID]
	if !ok || pane.Handle == "" || pane.Exited {
		return "", false
	}
	return pane.Handle, true
}

// ActiveTabID returns the focused tab's id, or "" when no tabs exist.
func (m *Manager) ActiveTabID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// TabCount returns the number of open tabs.
func (m *Manager) TabCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tabs)
}

// Tabs returns read-only copies of every tab in order.
func (m *Manager) Tabs() []TabView {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]TabView, len(m.tabs))
	for i, t := range m.tabs {
		views[i] = t.view()
	}
	return views
}

// ActiveTab returns a read-only copy of the focused tab.
func (m *Manager) ActiveTab() (TabView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tab, _ := m.tabByID(m.activeID)
	if tab == nil {
		return TabView{}, false
	}
	return tab.view(), true
}
