package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dumbarb/dumbarb/internal/match"
)

// App wraps the Bubbletea program, mirroring Iron-Ham-claudio's
// internal/tui.App: a thin struct around *tea.Program that the match
// runner drives from its own goroutine via Send, rather than the
// dashboard polling match state itself.
type App struct {
	program *tea.Program
}

// New constructs a dashboard for a match about to run numGames games
// between engineA and engineB.
func New(matchName, engineA, engineB string, numGames int) *App {
	model := NewModel(matchName, engineA, engineB, numGames)
	return &App{program: tea.NewProgram(model, tea.WithAltScreen())}
}

// Run blocks driving the dashboard until the user quits it or Quit is
// called; it does not stop the match itself.
func (a *App) Run() error {
	_, err := a.program.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Subscribe returns a match.Run-compatible callback that forwards each
// finished game to the dashboard.
func (a *App) Subscribe() func(match.Outcome) error {
	return func(o match.Outcome) error {
		a.program.Send(GameMsg{Outcome: o})
		return nil
	}
}

// Quit stops the dashboard program without affecting the match.
func (a *App) Quit() { a.program.Quit() }
