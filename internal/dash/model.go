// Package dash implements the interactive dashboard: a menu of pages on the
// left, a content viewport on the right, and a polling loop that consumes
// the benchmark coordinators' dirty flags to re-render at a bounded rate.
package dash

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/config"
	"github.com/boxbench/boxbench/internal/logger"
	"github.com/boxbench/boxbench/internal/sysinfo"
)

// menuWidth is the fixed width of the left menu pane.
const menuWidth = 24

// sysinfoKind marks the menu item that is not backed by a coordinator.
const sysinfoKind = ""

// item is one selectable page.
type item struct {
	title string
	kind  string // coordinator kind, or sysinfoKind
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	cfg    *config.Config
	log    logger.Logger
	items  []item
	coords map[string]*bench.Coordinator

	selected int

	// cache holds rendered page content keyed by menu index. Entries are
	// invalidated when the backing coordinator reports a dirty state, so a
	// redraw recomputes from a fresh snapshot at most once per tick.
	cache map[int]string

	sys           *sysinfo.Snapshot
	sysErr        string
	collectingSys bool

	viewport      viewport.Model
	viewportReady bool
	width, height int
	quitting      bool
}

// stateTickMsg drives the dirty-flag poll.
type stateTickMsg time.Time

// animTickMsg drives spinner animation at a higher frequency.
type animTickMsg time.Time

// sysinfoMsg carries a completed system information collection.
type sysinfoMsg struct {
	snap *sysinfo.Snapshot
	err  error
}

// NewModel creates the dashboard model. Coordinators are shared by
// reference: this model polls and triggers them but never owns their state.
func NewModel(cfg *config.Config, coords map[string]*bench.Coordinator, log logger.Logger) Model {
	if log == nil {
		log = logger.Noop()
	}
	return Model{
		cfg: cfg,
		log: log,
		items: []item{
			{title: "System Info", kind: sysinfoKind},
			{title: "CPU Benchmark", kind: "cpu"},
			{title: "Disk Benchmark", kind: "disk"},
			{title: "Network Probe", kind: "net"},
		},
		coords: coords,
		cache:  make(map[int]string),
	}
}

// Init starts the polling timers and the initial system info collection.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.stateTickCmd(),
		m.animTickCmd(),
		m.collectSysinfoCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

	case stateTickMsg:
		m.consumeDirtyFlags()
		return m, m.stateTickCmd()

	case animTickMsg:
		// Only the visible page animates; a hidden running test still
		// mutates state but nobody needs its frames.
		if kind := m.items[m.selected].kind; kind != sysinfoKind {
			if c, ok := m.coords[kind]; ok {
				c.AdvanceAnimation()
			}
		}
		return m, m.animTickCmd()

	case sysinfoMsg:
		m.collectingSys = false
		if msg.err != nil {
			m.sysErr = msg.err.Error()
		} else {
			m.sys = msg.snap
			m.sysErr = ""
		}
		m.invalidateSysinfo()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
			m.syncViewport()
		}

	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
			m.syncViewport()
		}

	case "enter", "r":
		return m.activateSelected()

	case "pgup":
		m.viewport.HalfPageUp()

	case "pgdown":
		m.viewport.HalfPageDown()
	}
	return m, nil
}

// activateSelected triggers the selected page's action: re-collect system
// info, or start (or re-run) the page's benchmark. Start is idempotent, so
// hammering enter during a run is harmless.
func (m Model) activateSelected() (tea.Model, tea.Cmd) {
	it := m.items[m.selected]
	if it.kind == sysinfoKind {
		if m.collectingSys {
			return m, nil
		}
		m.collectingSys = true
		return m, m.collectSysinfoCmd()
	}

	if c, ok := m.coords[it.kind]; ok {
		if c.Start() {
			m.log.Debug("dashboard started %s run", it.kind)
		}
		delete(m.cache, m.selected)
		m.syncViewport()
	}
	return m, nil
}

// consumeDirtyFlags is the single consumer of every coordinator's dirty
// flag: a true swap invalidates that page's cached rendering.
func (m *Model) consumeDirtyFlags() {
	for i, it := range m.items {
		if it.kind == sysinfoKind {
			continue
		}
		c, ok := m.coords[it.kind]
		if !ok {
			continue
		}
		if c.TakeDirty() {
			delete(m.cache, i)
			if i == m.selected {
				m.syncViewport()
			}
		}
	}
}

// invalidateSysinfo drops the system info page's cache entry.
func (m *Model) invalidateSysinfo() {
	for i, it := range m.items {
		if it.kind == sysinfoKind {
			delete(m.cache, i)
			if i == m.selected {
				m.syncViewport()
			}
		}
	}
}

func (m Model) stateTickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Dashboard.TickInterval, func(t time.Time) tea.Msg {
		return stateTickMsg(t)
	})
}

func (m Model) animTickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Dashboard.AnimationInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// collectSysinfoCmd gathers a system snapshot off the UI loop.
func (m Model) collectSysinfoCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		snap, err := sysinfo.Collect(ctx)
		return sysinfoMsg{snap: snap, err: err}
	}
}
