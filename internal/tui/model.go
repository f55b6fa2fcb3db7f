// Package tui implements the optional live match dashboard spec.md's
// CLI surface gates behind `dumbarb run --tui` (only meaningful on an
// interactive terminal; cmd/dumbarb checks mattn/go-isatty before
// constructing one).
//
// Grounded on Iron-Ham-claudio's internal/tui (the App-wraps-
// tea.Program shape, Model as a value type with Init/Update/View, and
// driving the program via external Send calls from a non-UI
// goroutine) and on charmbracelet/bubbles' progress component for the
// games-completed bar.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/dumbarb/dumbarb/internal/domain"
	"github.com/dumbarb/dumbarb/internal/match"
	"github.com/dumbarb/dumbarb/internal/result"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// GameMsg carries one finished game's outcome into the Bubbletea event
// loop; the callback returned by (*App).Subscribe sends these from the
// match runner's goroutine via tea.Program.Send.
type GameMsg struct{ Outcome match.Outcome }

// Model is the dashboard's Bubbletea model: a plain value, per the
// teacher's convention of returning a new Model from Update rather
// than mutating through a pointer receiver.
type Model struct {
	matchName        string
	engineA, engineB string
	numGames         int

	completed            int
	wins, losses, draws  int
	violations           int
	recent               []string

	progress tea.Model
	width    int
	quitting bool
}

// NewModel builds the initial dashboard state for a match about to
// run numGames games between engineA and engineB.
func NewModel(matchName, engineA, engineB string, numGames int) Model {
	p := progress.New(progress.WithDefaultGradient())
	return Model{
		matchName: matchName,
		engineA:   engineA,
		engineB:   engineB,
		numGames:  numGames,
		progress:  p,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case GameMsg:
		m.apply(msg.Outcome.Result)
		return m, nil
	}
	return m, nil
}

func (m *Model) apply(r domain.GameResult) {
	m.completed++
	if len(r.Violations) > 0 {
		m.violations += len(r.Violations)
	}

	winner, reason := winnerAndReason(r)
	switch winner {
	case r.EngineAName:
		m.wins++
	case r.EngineBName:
		m.losses++
	case "Jigo":
		m.draws++
	}

	line := fmt.Sprintf("#%-4d %s (%s)", r.Seq, winner, reason)
	m.recent = append(m.recent, line)
	if len(m.recent) > 10 {
		m.recent = m.recent[len(m.recent)-10:]
	}
}

// winnerAndReason re-derives the same two tokens FormatLogLine writes,
// by round-tripping through the formatted line rather than duplicating
// result's unexported reasonAndWinner.
func winnerAndReason(r domain.GameResult) (string, string) {
	ll, err := result.ParseLogLine(result.FormatLogLine(r))
	if err != nil {
		return "?", "?"
	}
	return ll.Winner, ll.Reason
}

func (m Model) View() string {
	if m.quitting {
		return "dumbarb: dashboard closed, stopping the match\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("%s: %s vs %s", m.matchName, m.engineA, m.engineB)))

	frac := 0.0
	if m.numGames > 0 {
		frac = float64(m.completed) / float64(m.numGames)
	}
	if p, ok := m.progress.(progress.Model); ok {
		b.WriteString(p.ViewAs(frac))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d / %d games\n", m.completed, m.numGames)

	fmt.Fprintf(&b, "%s %d  %s %d  draws %d  %s\n",
		winStyle.Render(m.engineA+" wins"), m.wins,
		lossStyle.Render(m.engineB+" wins"), m.losses,
		m.draws,
		dimStyle.Render(fmt.Sprintf("violations: %d", m.violations)),
	)

	b.WriteString(dimStyle.Render("recent games:") + "\n")
	for _, line := range m.recent {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString(dimStyle.Render("\n(press q to close the dashboard and stop the match)\n"))
	return b.String()
}
