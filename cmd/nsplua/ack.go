package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// ackModel waits for one key press so output stays on screen after the
// script ends.
type ackModel struct {
	failed bool
	done   bool
}

func (m ackModel) Init() tea.Cmd {
	return nil
}

func (m ackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ackModel) View() string {
	if m.done {
		return ""
	}
	if m.failed {
		return failedStyle.Render("Press any key to exit.") + "\n"
	}
	return promptStyle.Render("Press any key to exit.") + "\n"
}

// acknowledge keeps a finished script's output on screen until a key is
// pressed. It does nothing when in is not a terminal.
var acknowledge = func(in io.Reader, out io.Writer, failed bool) {
	if !isTerminal(in) {
		return
	}
	p := tea.NewProgram(ackModel{failed: failed}, tea.WithInput(in), tea.WithOutput(out))
	_, _ = p.Run()
}
