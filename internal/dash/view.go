package dash

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/ui"
	"github.com/boxbench/boxbench/internal/util"
)

// render composes header, menu + content panes, and footer.
func (m Model) render() string {
	header := headerStyle.Render("boxbench · server dashboard")
	footer := footerStyle.Render("↑/↓ select · enter run/refresh · pgup/pgdn scroll · q quit")

	menu := m.renderMenu()
	content := contentStyle.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, menu, content)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderMenu renders the page list with status glyphs.
func (m Model) renderMenu() string {
	var b strings.Builder
	for i, it := range m.items {
		glyph := " "
		if it.kind != sysinfoKind {
			if c, ok := m.coords[it.kind]; ok {
				glyph = statusGlyph(c.Snapshot())
			}
		}
		line := fmt.Sprintf("%s %s", glyph, it.title)
		if i == m.selected {
			line = menuSelectedStyle.Render("▸ " + line)
		} else {
			line = menuItemStyle.Render("  " + line)
		}
		b.WriteString(line)
		if i < len(m.items)-1 {
			b.WriteString("\n")
		}
	}
	return menuStyle.Render(b.String())
}

// statusGlyph maps a run state to its menu indicator.
func statusGlyph(s bench.State) string {
	switch s.Status {
	case bench.StatusRunning:
		return statusRunningStyle.Render(ui.Spinner(s.AnimationFrame))
	case bench.StatusCompleted:
		return statusCompletedStyle.Render(ui.SymbolSuccess)
	case bench.StatusFailed:
		return statusFailedStyle.Render(ui.SymbolFail)
	default:
		return mutedStyle.Render(ui.SymbolPending)
	}
}

// resizeViewport adjusts the content pane to the terminal size.
func (m *Model) resizeViewport() {
	contentWidth := m.width - menuWidth - 6 // borders and padding
	if contentWidth < 20 {
		contentWidth = 20
	}
	contentHeight := m.height - 4 // header, footer, borders
	if contentHeight < 3 {
		contentHeight = 3
	}
	if !m.viewportReady {
		m.viewport = viewport.New(contentWidth, contentHeight)
		m.viewportReady = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = contentHeight
	}
	m.syncViewport()
}

// syncViewport refreshes the viewport with the selected page's content,
// rendering only on cache miss.
func (m *Model) syncViewport() {
	if !m.viewportReady {
		return
	}
	content, ok := m.cache[m.selected]
	if !ok {
		content = m.renderPage(m.items[m.selected])
		m.cache[m.selected] = content
	}
	m.viewport.SetContent(content)
}

// renderPage produces the full content of one page from fresh state.
func (m *Model) renderPage(it item) string {
	if it.kind == sysinfoKind {
		return m.renderSysinfo()
	}
	c, ok := m.coords[it.kind]
	if !ok {
		return mutedStyle.Render("not available")
	}
	return renderTestPage(it, c.Snapshot())
}

// renderSysinfo renders the system information page.
func (m *Model) renderSysinfo() string {
	if m.sysErr != "" {
		return statusFailedStyle.Render(ui.SymbolFail+" "+m.sysErr) +
			"\n\n" + mutedStyle.Render("press enter to retry")
	}
	if m.sys == nil {
		return mutedStyle.Render("collecting system information…")
	}
	out := m.sys.Render()
	return out + "\n" + mutedStyle.Render("press enter to refresh")
}

// renderTestPage renders a benchmark page for any run state.
func renderTestPage(it item, s bench.State) string {
	labels := ui.LabelsFor(it.kind)

	switch s.Status {
	case bench.StatusIdle:
		return fmt.Sprintf("%s\n\n%s",
			it.title,
			mutedStyle.Render("press enter to start"))

	case bench.StatusRunning:
		var b strings.Builder
		b.WriteString(ui.ProgressLine(s.AnimationFrame, s.PhaseTitle, s.Progress, 30))
		fmt.Fprintf(&b, "\n\nphase %d of %d", s.PhaseIndex+1, s.TotalPhases)
		fmt.Fprintf(&b, "\nelapsed %s", util.ShortDuration(s.Elapsed(time.Now())))
		if s.EstimatedPrimary > 0 || s.EstimatedSecondary > 0 {
			fmt.Fprintf(&b, "\n\nestimate: %s %d · %s %d",
				labels.Primary, s.EstimatedPrimary, labels.Secondary, s.EstimatedSecondary)
		}
		if len(s.Results) > 0 {
			b.WriteString("\n\n")
			b.WriteString(ui.RenderResults(s.Results, labels))
		}
		return b.String()

	case bench.StatusCompleted:
		return fmt.Sprintf("%s\n\n%s\n%s",
			statusCompletedStyle.Render(ui.SymbolSuccess+" completed"),
			ui.RenderResults(s.Results, labels),
			mutedStyle.Render("press enter to run again"))

	case bench.StatusFailed:
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			statusFailedStyle.Render(ui.SymbolFail+" failed"),
			s.Err,
			mutedStyle.Render("press enter to retry"))

	default:
		return mutedStyle.Render("unknown state")
	}
}
