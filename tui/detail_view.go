package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealflow/models"
)

// detailNoteLimit caps how many notes the detail view shows.
const detailNoteLimit = 10

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	noteTypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("CONTACT"))
	s.WriteString("\n\n")

	if m.selected.ID == "" {
		if m.err != nil {
			s.WriteString(m.renderStatus())
		} else {
			s.WriteString("Loading...")
		}
		s.WriteString("\n\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	s.WriteString(m.renderContactDetail())
	s.WriteString("\n")

	if m.noting {
		s.WriteString("New note: " + m.noteInput.View())
		s.WriteString("\n")
	}
	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderContactDetail() string {
	contact := m.selected
	loc := m.store.Location()

	var s strings.Builder

	s.WriteString(m.renderField("Name", contact.Name))
	s.WriteString(m.renderField("Company", contact.Company))
	s.WriteString(m.renderField("Phone", contact.Phone))
	s.WriteString(m.renderField("Email", contact.Email))
	s.WriteString(m.renderField("Lead Type", contact.LeadType))
	s.WriteString(m.renderField("Deal Stage", contact.DealStage))
	s.WriteString(m.renderField("Property", contact.SubjectProperty))
	s.WriteString(m.renderField("Requirements", contact.Requirements))
	s.WriteString(m.renderField("Contact Note", contact.ContactNote))

	if contact.LastActivity > 0 {
		s.WriteString(m.renderField("Last Activity", models.FromMillis(contact.LastActivity, loc).Format("2006-01-02 15:04")))
	}
	if m.hasFollow {
		s.WriteString(m.renderField("Follow-up Due", models.FromMillis(m.followDue, loc).Format("Mon Jan 2, 2006")))
	}

	// Note history
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("NOTES (%d)", len(contact.Notes))))
	s.WriteString("\n")

	for i, note := range contact.Notes {
		if i == detailNoteLimit {
			s.WriteString(fmt.Sprintf("  … %d more\n", len(contact.Notes)-detailNoteLimit))
			break
		}
		s.WriteString(fmt.Sprintf("  • [%s] %s %s\n",
			models.FromMillis(note.Timestamp, loc).Format("2006-01-02"),
			noteTypeStyle.Render(string(note.Type)),
			note.Text))
	}

	// Outcome shortcuts
	outcomes := m.store.Settings(m.ctx).CallOutcomes
	if len(outcomes) > 0 {
		s.WriteString("\n")
		s.WriteString(lipgloss.NewStyle().Bold(true).Render("LOG OUTCOME"))
		s.WriteString("\n")
		for i, co := range outcomes {
			if i == 9 {
				break
			}
			s.WriteString(fmt.Sprintf("  %d: %s\n", i+1, co.Name))
		}
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"a: Add note",
		"1-9: Log outcome",
		"s: Next stage",
		"u: Follow up tomorrow",
		"c: Complete follow-up",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.noting {
		return m.handleNoteKeys(msg)
	}

	key := msg.String()
	if m.selected.ID == "" {
		if key == "esc" {
			m.viewMode = ViewList
			return m, m.loadContacts()
		}
		return m, nil
	}

	id := m.selected.ID
	switch key {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
		return m, m.loadContacts()
	case "e":
		m.viewMode = ViewEdit
		m.status = ""
		contact := m.selected
		m.initContactForm(&contact)
	case "a":
		m.noting = true
		m.noteInput.SetValue("")
		return m, m.noteInput.Focus()
	case "s":
		return m, m.setDealStage(id, nextLabel(m.store.Settings(m.ctx).StageNames(), m.selected.DealStage))
	case "u":
		return m, m.scheduleFollowUp(id, 1)
	case "c":
		if !m.hasFollow {
			m.status = "No open follow-up"
			return m, nil
		}
		return m, m.completeFollowUp(id)
	case "d":
		m.viewMode = ViewConfirmDelete
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 {
			outcomes := m.store.Settings(m.ctx).CallOutcomes
			if n <= len(outcomes) {
				return m, m.logOutcome(id, outcomes[n-1].Name)
			}
		}
	}

	return m, nil
}

func (m Model) handleNoteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.noting = false
		m.noteInput.Blur()
		text := strings.TrimSpace(m.noteInput.Value())
		if text == "" {
			return m, nil
		}
		return m, m.addNote(m.selected.ID, text)
	case "esc":
		m.noting = false
		m.noteInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}
