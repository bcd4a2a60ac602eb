package dash

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/config"
	"github.com/boxbench/boxbench/internal/errors"
	"github.com/boxbench/boxbench/internal/logger"
)

// Run builds the dashboard around the given coordinators and blocks until
// the user quits. CPU and disk workers may run concurrently with each other;
// duplicate runs of the same kind are prevented by each coordinator's start
// guard, so the dashboard needs no scheduling logic of its own.
func Run(cfg *config.Config, coords map[string]*bench.Coordinator, log logger.Logger) error {
	m := NewModel(cfg, coords, log)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Dashboard terminated unexpectedly",
			"Check the terminal supports alternate screen mode")
	}
	return nil
}
