// ABOUTME: TUI view for follow-up tracking
// ABOUTME: Lists open and overdue follow-ups by due date with quick completion
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dealflow/models"
)

func (m Model) renderFollowupsView() string {
	var s strings.Builder

	title := "FOLLOW-UPS"
	if m.overdueOnly {
		title += " (OVERDUE)"
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	if len(m.followups) == 0 {
		s.WriteString("No follow-ups due")
	} else {
		s.WriteString(m.renderFollowupsTable())
	}
	s.WriteString("\n")

	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}

	help := []string{
		"↑/↓: Navigate",
		"Enter: Open contact",
		"c: Complete",
		"o: Toggle overdue only",
		"Esc: Back",
		"q: Quit",
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return s.String()
}

func (m Model) renderFollowupsTable() string {
	columns := []table.Column{
		{Title: "Status", Width: 6},
		{Title: "Name", Width: 25},
		{Title: "Phone", Width: 15},
		{Title: "Due", Width: 16},
	}

	loc := m.store.Location()
	var rows []table.Row
	for _, f := range m.followups {
		indicator := "🟡"
		if f.Status == models.FollowUpOverdue {
			indicator = "🔴"
		}

		rows = append(rows, table.Row{
			indicator,
			f.ContactName,
			f.Phone,
			models.FromMillis(f.DueDate, loc).Format("Mon Jan 2, 2006"),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)

	if m.followRow < len(rows) {
		t.SetCursor(m.followRow)
	}

	return t.View()
}

func (m Model) handleFollowupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.followRow > 0 {
			m.followRow--
		}
	case "down", "j":
		if m.followRow < len(m.followups)-1 {
			m.followRow++
		}
	case "o":
		m.overdueOnly = !m.overdueOnly
		m.followRow = 0
		return m, m.loadFollowups()
	case "c":
		if m.followRow < len(m.followups) {
			f := m.followups[m.followRow]
			m.status = "Completed follow-up for " + f.ContactName
			return m, m.completeFromList(f.ContactID)
		}
	case "enter":
		if m.followRow < len(m.followups) {
			m.status = ""
			m.selected = models.Contact{}
			m.viewMode = ViewDetail
			return m, m.loadContact(m.followups[m.followRow].ContactID)
		}
	case "esc":
		m.viewMode = ViewList
		m.status = ""
		return m, m.loadContacts()
	}

	return m, nil
}
