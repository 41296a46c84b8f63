package tui

import (
	"grammarfsa/internal/core/app"

	tea "github.com/charmbracelet/bubbletea"
)

// Run blocks until the user quits. Reloads performed by the app's watcher
// are reported in the status line.
func Run(a *app.App) error {
	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())

	a.SetReloadHandler(func(ev app.ReloadEvent) {
		p.Send(reloadMsg{event: ev})
	})
	defer a.SetReloadHandler(nil)

	_, err := p.Run()
	return err
}
