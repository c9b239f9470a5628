package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csvimport/import-wizard/wizard"
)

// Run starts the interactive wizard and blocks until the user quits.
func Run(importWizard *wizard.Wizard) error {
	p := tea.NewProgram(NewModel(importWizard), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
