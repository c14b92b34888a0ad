package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dealflow/models"
)

// Form field positions.
const (
	fieldName = iota
	fieldCompany
	fieldPhone
	fieldEmail
	fieldLeadType
	fieldDealStage
	fieldProperty
	fieldRequirements
	fieldContactNote
	fieldCount
)

var formFields = [fieldCount]struct {
	placeholder string
	limit       int
}{
	fieldName:         {"Name", 100},
	fieldCompany:      {"Company", 100},
	fieldPhone:        {"Phone", 30},
	fieldEmail:        {"Email", 100},
	fieldLeadType:     {"Lead Type", 30},
	fieldDealStage:    {"Deal Stage", 30},
	fieldProperty:     {"Subject Property", 200},
	fieldRequirements: {"Requirements", 500},
	fieldContactNote:  {"Contact Note", 500},
}

func (m Model) renderEditView() string {
	var s strings.Builder

	// Title
	if m.creating {
		s.WriteString(titleStyle.Render("NEW CONTACT"))
	} else {
		s.WriteString(titleStyle.Render("EDIT CONTACT"))
	}
	s.WriteString("\n\n")

	// Form fields
	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		s.WriteString(status)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Shift+Tab: Previous field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		if m.creating {
			m.viewMode = ViewList
			return m, nil
		}
		m.viewMode = ViewDetail
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		return m, m.updateFormFocus()
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		return m, m.updateFormFocus()
	case "enter":
		return m.saveContact()
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

// initContactForm builds the form, pre-filled when editing an existing contact.
func (m *Model) initContactForm(contact *models.Contact) {
	inputs := make([]textinput.Model, fieldCount)
	for i, f := range formFields {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = f.placeholder
		inputs[i].CharLimit = f.limit
	}

	m.creating = contact == nil
	if contact != nil {
		inputs[fieldName].SetValue(contact.Name)
		inputs[fieldCompany].SetValue(contact.Company)
		inputs[fieldPhone].SetValue(contact.Phone)
		inputs[fieldEmail].SetValue(contact.Email)
		inputs[fieldLeadType].SetValue(contact.LeadType)
		inputs[fieldDealStage].SetValue(contact.DealStage)
		inputs[fieldProperty].SetValue(contact.SubjectProperty)
		inputs[fieldRequirements].SetValue(contact.Requirements)
		inputs[fieldContactNote].SetValue(contact.ContactNote)
	}

	m.formInputs = inputs
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == m.focusIndex {
			cmd = m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) formValue(i int) string {
	return strings.TrimSpace(m.formInputs[i].Value())
}

// saveContact validates labels against the settings and creates or patches the contact.
func (m Model) saveContact() (tea.Model, tea.Cmd) {
	name := m.formValue(fieldName)
	if name == "" {
		m.err = fmt.Errorf("name is required")
		return m, nil
	}

	settings := m.store.Settings(m.ctx)
	leadType, stage := m.formValue(fieldLeadType), m.formValue(fieldDealStage)
	if leadType != "" {
		if _, ok := settings.FindLeadType(leadType); !ok {
			m.err = fmt.Errorf("unknown lead type %q", leadType)
			return m, nil
		}
	}
	if stage != "" {
		if _, ok := settings.FindDealStage(stage); !ok {
			m.err = fmt.Errorf("unknown deal stage %q", stage)
			return m, nil
		}
	}

	m.err = nil
	m.viewMode = ViewDetail
	if m.creating {
		m.selected = models.Contact{}
		return m, m.createContact(models.ContactInput{
			Name:            name,
			Company:         m.formValue(fieldCompany),
			Phone:           m.formValue(fieldPhone),
			Email:           m.formValue(fieldEmail),
			LeadType:        leadType,
			DealStage:       stage,
			SubjectProperty: m.formValue(fieldProperty),
			Requirements:    m.formValue(fieldRequirements),
			ContactNote:     m.formValue(fieldContactNote),
		})
	}

	values := make([]string, fieldCount)
	for i := range values {
		values[i] = m.formValue(i)
	}
	values[fieldName], values[fieldLeadType], values[fieldDealStage] = name, leadType, stage
	return m, m.updateContact(m.selected.ID, models.ContactPatch{
		Name:            &values[fieldName],
		Company:         &values[fieldCompany],
		Phone:           &values[fieldPhone],
		Email:           &values[fieldEmail],
		LeadType:        &values[fieldLeadType],
		DealStage:       &values[fieldDealStage],
		SubjectProperty: &values[fieldProperty],
		Requirements:    &values[fieldRequirements],
		ContactNote:     &values[fieldContactNote],
	})
}
