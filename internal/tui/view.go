package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/termweave/termweave/internal/layout"
	"github.com/termweave/termweave/internal/session"
)

// Styles
var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	exitedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	spawnErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	paneBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("8"))
	paneActiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("12"))
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.mode == modeRename {
		return m.viewRename()
	}

	tab, ok := m.mgr.ActiveTab()
	if !ok {
		return "No tabs open.\n"
	}

	var b strings.Builder
	b.WriteString(m.viewTabBar(tab.ID))
	b.WriteString("\n")

	cols, rows := m.contentSize()
	b.WriteString(m.renderNode(tab, tab.Root, cols, rows))
	b.WriteString("\n")
	b.WriteString(m.viewStatus(tab))
	return b.String()
}

func (m *Model) viewTabBar(activeID string) string {
	var parts []string
	for i, tab := range m.mgr.Tabs() {
		label := fmt.Sprintf(" %d:%s ", i+1, tab.Name)
		if tab.ID == activeID {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(label))
		}
	}
	bar := strings.Join(parts, " ")
	return truncateANSI(bar, m.width)
}

// renderNode draws a subtree into a cols x rows area. Vertical splits
// join side by side, horizontal splits stack.
func (m *Model) renderNode(tab session.TabView, n layout.Node, cols, rows int) string {
	switch n := n.(type) {
	case *layout.Leaf:
		return m.renderPane(tab, n.PaneID, cols, rows)
	case *layout.Split:
		if n.Direction == layout.Vertical {
			aCols := clampShare(cols, n.Ratio)
			a := m.renderNode(tab, n.A, aCols, rows)
			b := m.renderNode(tab, n.B, cols-aCols, rows)
			return lipgloss.JoinHorizontal(lipgloss.Top, a, b)
		}
		aRows := clampShare(rows, n.Ratio)
		a := m.renderNode(tab, n.A, cols, aRows)
		b := m.renderNode(tab, n.B, cols, rows-aRows)
		return lipgloss.JoinVertical(lipgloss.Left, a, b)
	}
	return ""
}

func clampShare(total int, ratio float64) int {
	v := int(float64(total) * ratio)
	if v < 1 {
		v = 1
	}
	if v > total-1 {
		v = total - 1
	}
	return v
}

func (m *Model) renderPane(tab session.TabView, paneID string, cols, rows int) string {
	inner := cols - 2
	if inner < 1 {
		inner = 1
	}
	innerRows := rows - 2
	if innerRows < 1 {
		innerRows = 1
	}

	lines := m.buffer(paneID).Tail(innerRows, inner)

	pane, ok := tab.Panes[paneID]
	if ok && pane.Exited {
		marker := exitedStyle.Render(fmt.Sprintf("[process exited %s]", pane.ExitedAt.Format("15:04:05")))
		lines = appendMarker(lines, marker, innerRows)
	}
	if errText, ok := m.spawnErrs[paneID]; ok {
		marker := spawnErrStyle.Render("[spawn failed: " + errText + "]")
		lines = appendMarker(lines, marker, innerRows)
	}

	for len(lines) < innerRows {
		lines = append(lines, "")
	}
	content := strings.Join(lines, "\n")

	style := paneBorderStyle
	if paneID == tab.ActivePaneID {
		style = paneActiveBorderStyle
	}
	return style.Width(inner).Height(innerRows).MaxWidth(cols).Render(content)
}

func appendMarker(lines []string, marker string, max int) []string {
	lines = append(lines, marker)
	if len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	return lines
}

func (m *Model) viewStatus(tab session.TabView) string {
	left := fmt.Sprintf(" %s | %d pane", tab.Name, len(tab.Panes))
	if len(tab.Panes) != 1 {
		left += "s"
	}
	if p, ok := tab.Panes[tab.ActivePaneID]; ok && p.Title != "" {
		left += " | " + p.Title
	}
	hints := `ctrl+b: c=new-tab "=split %=vsplit x=close o=next n/p=tabs ,=rename q=quit`
	line := left + " | " + hints
	if m.message != "" {
		line = left + " | " + m.message
	}
	return statusStyle.Render(truncateANSI(line, m.width))
}

func (m *Model) viewRename() string {
	var b strings.Builder
	b.WriteString("  Rename Tab\n")
	b.WriteString("  ──────────────────────────\n")
	b.WriteString(statusStyle.Render("  Enter=apply  Escape=cancel"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.renameInput.View())
	b.WriteString("\n")
	return b.String()
}

// truncateANSI cuts a styled string to a visible width, counting
// printable runes only.
func truncateANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	n := 0
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			b.WriteRune(r)
			continue
		}
		if inEscape {
			b.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		if n >= width {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
