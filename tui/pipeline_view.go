package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) renderPipelineView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("PIPELINE"))
	s.WriteString("\n\n")

	if m.pipeline == "" {
		s.WriteString("Loading pipeline...\n")
	} else {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.pipeline))
	}

	s.WriteString("\n\n")

	help := []string{
		"r: Refresh",
		"Esc: Back",
		"q: Quit",
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) handlePipelineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, m.loadPipeline()
	case "esc":
		m.viewMode = ViewList
		m.pipeline = ""
		return m, m.loadContacts()
	}

	return m, nil
}
