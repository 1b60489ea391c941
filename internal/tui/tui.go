// Package tui renders the multiplexer with bubbletea: a tab bar, the
// active tab's split tree, and a status line. Keystrokes go to the
// focused pane's shell except while the prefix key (ctrl+b) arms the
// multiplexer commands.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/termweave/termweave/internal/bridge"
	"github.com/termweave/termweave/internal/layout"
	"github.com/termweave/termweave/internal/otel"
	"github.com/termweave/termweave/internal/router"
	"github.com/termweave/termweave/internal/session"
)

// OutputMsg carries process output for a pane. The event router posts
// these into the program from its own goroutine.
type OutputMsg struct {
	TabID  string
	PaneID string
	Data   []byte
}

// ExitMsg signals that a pane's process exited. The session manager
// has already recorded the exit when this arrives.
type ExitMsg struct {
	TabID  string
	PaneID string
}

type spawnedMsg struct {
	tabID  string
	paneID string
	handle bridge.Handle
	err    error
}

type autosaveTickMsg struct{}

type savedMsg struct{ err error }

// input mode
type inputMode int

const (
	modeNormal inputMode = iota
	modeRename
)

// Options wires the TUI to the rest of the system.
type Options struct {
	Manager  *session.Manager
	Bridge   bridge.Bridge
	Resizer  *router.Resizer
	Metrics  *otel.Metrics
	Save     func() error  // nil disables persistence
	Autosave time.Duration // 0 disables the autosave tick
	Cols     int           // geometry before the first WindowSizeMsg
	Rows     int
}

// Model implements tea.Model for the multiplexer.
type Model struct {
	ctx     context.Context
	mgr     *session.Manager
	bridge  bridge.Bridge
	resizer *router.Resizer
	metrics *otel.Metrics

	save     func() error
	autosave time.Duration

	width  int
	height int

	buffers   map[string]*scrollback
	spawnErrs map[string]string

	prefix bool
	mode   inputMode

	renameInput textinput.Model
	renameTab   string

	message string
}

// New creates the multiplexer model.
func New(ctx context.Context, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "Tab name..."
	ti.CharLimit = 64
	ti.Width = 30

	return &Model{
		ctx:         ctx,
		mgr:         opts.Manager,
		bridge:      opts.Bridge,
		resizer:     opts.Resizer,
		metrics:     opts.Metrics,
		save:        opts.Save,
		autosave:    opts.Autosave,
		width:       opts.Cols,
		height:      opts.Rows,
		buffers:     map[string]*scrollback{},
		spawnErrs:   map[string]string{},
		renameInput: ti,
	}
}

func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd

	if m.mgr.TabCount() == 0 {
		tabID, paneID := m.mgr.CreateTab("")
		cmds = append(cmds, m.spawnPane(tabID, paneID))
	} else {
		// Restored session: every pane needs a fresh process.
		for _, tab := range m.mgr.Tabs() {
			for id, p := range tab.Panes {
				if !p.Exited {
					cmds = append(cmds, m.spawnPane(tab.ID, id))
				}
			}
		}
	}

	if cmd := m.scheduleAutosave(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) scheduleAutosave() tea.Cmd {
	if m.autosave <= 0 || m.save == nil {
		return nil
	}
	return tea.Tick(m.autosave, func(time.Time) tea.Msg {
		return autosaveTickMsg{}
	})
}

// spawnPane starts a shell sized to the pane's current rectangle and
// binds it on success.
func (m *Model) spawnPane(tabID, paneID string) tea.Cmd {
	cols, rows := m.paneSize(tabID, paneID)
	b := m.bridge
	ctx := m.ctx
	return func() tea.Msg {
		h, err := b.CreateProcess(ctx, cols, rows)
		return spawnedMsg{tabID: tabID, paneID: paneID, handle: h, err: err}
	}
}

// contentSize returns the area available to panes, below the tab bar
// and above the status line.
func (m *Model) contentSize() (cols, rows int) {
	cols, rows = m.width, m.height-2
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// paneSize returns the inner dimensions of a pane, inside its border.
func (m *Model) paneSize(tabID, paneID string) (cols, rows int) {
	cols, rows = m.contentSize()
	for _, tab := range m.mgr.Tabs() {
		if tab.ID != tabID {
			continue
		}
		for _, r := range layout.Rects(tab.Root, cols, rows) {
			if r.PaneID == paneID {
				return innerDim(r.Cols), innerDim(r.Rows)
			}
		}
	}
	return innerDim(cols), innerDim(rows)
}

func innerDim(v int) int {
	v -= 2 // border
	if v < 1 {
		v = 1
	}
	return v
}

// requestResizes pushes the active tab's current pane sizes to the
// debouncer. Hidden tabs are resized when they become active.
func (m *Model) requestResizes() {
	tab, ok := m.mgr.ActiveTab()
	if !ok {
		return
	}
	cols, rows := m.contentSize()
	for _, r := range layout.Rects(tab.Root, cols, rows) {
		p, ok := tab.Panes[r.PaneID]
		if !ok || !p.HasProcess {
			continue
		}
		m.resizer.Request(p.Handle, innerDim(r.Cols), innerDim(r.Rows))
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.requestResizes()
		return m, nil

	case OutputMsg:
		m.buffer(msg.PaneID).Append(msg.Data)
		return m, nil

	case ExitMsg:
		// The manager already holds the exit marker; re-render.
		return m, nil

	case spawnedMsg:
		if msg.err != nil {
			m.spawnErrs[msg.paneID] = msg.err.Error()
			m.metrics.RecordSpawn(m.ctx, false)
			return m, nil
		}
		delete(m.spawnErrs, msg.paneID)
		m.metrics.RecordSpawn(m.ctx, true)
		if !m.mgr.BindProcess(msg.tabID, msg.paneID, msg.handle) {
			// Pane closed while the shell was starting.
			m.bridge.Terminate(msg.handle)
		}
		return m, nil

	case autosaveTickMsg:
		save := m.save
		return m, tea.Batch(
			func() tea.Msg { return savedMsg{err: save()} },
			m.scheduleAutosave(),
		)

	case savedMsg:
		if msg.err != nil {
			m.message = "autosave failed: " + msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeRename {
		return m.handleRenameKey(msg)
	}

	if m.prefix {
		m.prefix = false
		return m.handlePrefixKey(msg)
	}

	if msg.Type == tea.KeyCtrlB {
		m.prefix = true
		return m, nil
	}

	// Everything else goes to the focused shell.
	if h, ok := m.mgr.ActiveHandle(); ok {
		if b := keyToBytes(msg); b != nil {
			m.bridge.Write(h, b)
		}
	}
	return m, nil
}

func (m *Model) handlePrefixKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlB {
		// Double prefix sends a literal ctrl+b to the shell.
		if h, ok := m.mgr.ActiveHandle(); ok {
			m.bridge.Write(h, []byte{0x02})
		}
		return m, nil
	}

	switch msg.String() {
	case "c":
		tabID, paneID := m.mgr.CreateTab("")
		return m, m.spawnPane(tabID, paneID)

	case "&":
		return m.closeActiveTab()

	case "x":
		return m.closeActivePane()

	case "\"":
		return m.splitActivePane(layout.Horizontal)

	case "%":
		return m.splitActivePane(layout.Vertical)

	case "o":
		if tab, ok := m.mgr.ActiveTab(); ok {
			m.mgr.CycleActivePane(tab.ID)
		}
		return m, nil

	case "n":
		m.mgr.CycleActiveTab(1)
		m.requestResizes()
		return m, nil

	case "p":
		m.mgr.CycleActiveTab(-1)
		m.requestResizes()
		return m, nil

	case ",":
		if tab, ok := m.mgr.ActiveTab(); ok {
			m.mode = modeRename
			m.renameTab = tab.ID
			m.renameInput.SetValue(tab.Name)
			m.renameInput.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case "d", "q":
		return m, tea.Quit

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		tabs := m.mgr.Tabs()
		if idx < len(tabs) {
			m.mgr.SetActiveTab(tabs[idx].ID)
			m.requestResizes()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) splitActivePane(dir layout.Direction) (tea.Model, tea.Cmd) {
	tab, ok := m.mgr.ActiveTab()
	if !ok {
		return m, nil
	}
	newID, ok := m.mgr.SplitPane(tab.ID, tab.ActivePaneID, dir)
	if !ok {
		return m, nil
	}
	m.requestResizes()
	return m, m.spawnPane(tab.ID, newID)
}

func (m *Model) closeActivePane() (tea.Model, tea.Cmd) {
	tab, ok := m.mgr.ActiveTab()
	if !ok {
		return m, nil
	}
	paneID := tab.ActivePaneID
	if !m.mgr.ClosePane(tab.ID, paneID) {
		// Last pane in the tab: closing it closes the tab.
		return m.closeActiveTab()
	}
	delete(m.buffers, paneID)
	delete(m.spawnErrs, paneID)
	m.requestResizes()
	return m, nil
}

func (m *Model) closeActiveTab() (tea.Model, tea.Cmd) {
	tab, ok := m.mgr.ActiveTab()
	if !ok {
		return m, nil
	}
	if !m.mgr.CloseTab(tab.ID) {
		return m, nil
	}
	for id := range tab.Panes {
		delete(m.buffers, id)
		delete(m.spawnErrs, id)
	}
	if m.mgr.TabCount() == 0 {
		return m, tea.Quit
	}
	m.requestResizes()
	return m, nil
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape":
		m.mode = modeNormal
		m.renameInput.Blur()
		return m, nil

	case "enter":
		if name := m.renameInput.Value(); name != "" {
			m.mgr.RenameTab(m.renameTab, name)
		}
		m.mode = modeNormal
		m.renameInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m *Model) buffer(paneID string) *scrollback {
	sb, ok := m.buffers[paneID]
	if !ok {
		sb = &scrollback{}
		m.buffers[paneID] = sb
	}
	return sb
}
