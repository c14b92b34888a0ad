package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealflow/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("DEALFLOW CRM"))
	s.WriteString("\n\n")

	// Stage tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching {
		s.WriteString("Search: " + m.searchInput.View())
		s.WriteString("\n\n")
	} else if m.query.SearchTerm != "" {
		s.WriteString(fmt.Sprintf("Search: %q\n\n", m.query.SearchTerm))
	}

	// Table
	if len(m.result.Items) == 0 {
		s.WriteString("No contacts found")
	} else {
		s.WriteString(m.renderContactsTable())
	}
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Page %d of %d • %d contact(s) • sort: %s",
		m.query.Page, m.pageCount(), m.result.TotalCount, m.query.SortOrder))
	s.WriteString("\n")

	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	tabs := append([]string{"All"}, m.store.Settings(m.ctx).StageNames()...)
	var rendered []string

	for _, tab := range tabs {
		active := tab == m.query.DealStageFilter || (tab == "All" && m.query.DealStageFilter == "")
		if active {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderContactsTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Company", Width: 18},
		{Title: "Phone", Width: 15},
		{Title: "Lead", Width: 10},
		{Title: "Stage", Width: 10},
		{Title: "Active", Width: 10},
	}

	loc := m.store.Location()
	var rows []table.Row
	for _, contact := range m.result.Items {
		rows = append(rows, table.Row{
			contact.Name,
			contact.Company,
			contact.Phone,
			contact.LeadType,
			contact.DealStage,
			activityAge(contact.LastActivity, m.store.Now(), loc),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

// activityAge renders lastActivity as a short relative day count.
func activityAge(ms int64, now time.Time, loc *time.Location) string {
	if ms == 0 {
		return "-"
	}
	then := models.LocalMidnight(models.FromMillis(ms, loc))
	days := int(models.LocalMidnight(now.In(loc)).Sub(then).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	}
	return fmt.Sprintf("%dd ago", days)
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"←/→: Page",
		"Tab: Stage",
		"s: Sort",
		"Enter: View details",
		"/: Search",
		"n: New",
		"f: Follow-ups",
		"p: Pipeline",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) pageCount() int {
	if m.query.PageSize <= 0 || m.result.TotalCount == 0 {
		return 1
	}
	return (m.result.TotalCount + m.query.PageSize - 1) / m.query.PageSize
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.result.Items)-1 {
			m.selectedRow++
		}
	case "left", "h":
		if m.query.Page > 1 {
			m.query.Page--
			m.selectedRow = 0
			return m, m.loadContacts()
		}
	case "right", "l":
		if m.query.Page < m.pageCount() {
			m.query.Page++
			m.selectedRow = 0
			return m, m.loadContacts()
		}
	case "tab":
		m.query.DealStageFilter = nextLabel(m.store.Settings(m.ctx).StageNames(), m.query.DealStageFilter)
		m.query.Page = 1
		m.selectedRow = 0
		return m, m.loadContacts()
	case "s":
		m.query.SortOrder = nextSort(m.query.SortOrder)
		m.query.Page = 1
		return m, m.loadContacts()
	case "enter":
		if m.selectedRow < len(m.result.Items) {
			m.status = ""
			m.viewMode = ViewDetail
			return m, m.loadContact(m.result.Items[m.selectedRow].ID)
		}
	case "/":
		m.searching = true
		m.searchInput.SetValue(m.query.SearchTerm)
		return m, m.searchInput.Focus()
	case "n":
		m.status = ""
		m.viewMode = ViewEdit
		m.initContactForm(nil)
	case "f":
		m.viewMode = ViewFollowups
		m.followRow = 0
		return m, m.loadFollowups()
	case "p":
		m.viewMode = ViewPipeline
		return m, m.loadPipeline()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		m.query.SearchTerm = strings.TrimSpace(m.searchInput.Value())
		m.query.Page = 1
		m.selectedRow = 0
		return m, m.loadContacts()
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// nextLabel cycles "" -> labels[0] -> ... -> labels[n-1] -> "".
func nextLabel(labels []string, current string) string {
	if current == "" {
		if len(labels) == 0 {
			return ""
		}
		return labels[0]
	}
	for i, l := range labels {
		if l == current && i+1 < len(labels) {
			return labels[i+1]
		}
	}
	return ""
}

func nextSort(o models.SortOrder) models.SortOrder {
	switch o {
	case models.SortActivity:
		return models.SortFirstName
	case models.SortFirstName:
		return models.SortLastName
	}
	return models.SortActivity
}
