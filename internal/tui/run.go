package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keepitall/keepitall/internal/collection"
)

// Run starts the interactive home view for the given collection service and
// blocks until the user quits.
func Run(svc *collection.Service) error {
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
