// ABOUTME: Store calls wrapped as bubbletea commands
// ABOUTME: Every read or mutation runs off the update loop and reports back with a message
package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/viz"
)

type contactsLoadedMsg struct {
	result models.QueryResult
}

type contactLoadedMsg struct {
	contact   models.Contact
	hasFollow bool
	followDue int64
	status    string
}

type followupsLoadedMsg struct {
	views []models.FollowUpView
}

type pipelineLoadedMsg struct {
	text string
}

type contactDeletedMsg struct {
	name string
}

type errMsg struct {
	err error
}

func (m Model) loadContacts() tea.Cmd {
	ctx, s, spec := m.ctx, m.store, m.query
	return func() tea.Msg {
		return contactsLoadedMsg{result: s.Query(ctx, spec)}
	}
}

// contactResult turns a workflow result into a detail refresh.
func (m Model) contactResult(c models.Contact, err error, status string) tea.Msg {
	if errors.Is(err, models.ErrAlreadyDoneToday) {
		status = "Already done today for " + c.Name
	} else if err != nil {
		return errMsg{err: err}
	}
	f, open := m.store.OpenFollowUp(m.ctx, c.ID)
	return contactLoadedMsg{contact: c, hasFollow: open, followDue: f.DueDate, status: status}
}

func (m Model) loadContact(id string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.Contact(m.ctx, id)
		return m.contactResult(c, err, "")
	}
}

func (m Model) createContact(in models.ContactInput) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.CreateContact(m.ctx, in)
		return m.contactResult(c, err, "Contact created")
	}
}

func (m Model) updateContact(id string, patch models.ContactPatch) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.UpdateContact(m.ctx, id, patch)
		return m.contactResult(c, err, "Contact updated")
	}
}

func (m Model) deleteContact(c models.Contact) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.store.DeleteContact(m.ctx, c.ID); err != nil {
			return errMsg{err: err}
		}
		return contactDeletedMsg{name: c.Name}
	}
}

func (m Model) addNote(id, text string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.AddNote(m.ctx, id, text, models.NoteTypeNote)
		return m.contactResult(c, err, "Note added")
	}
}

func (m Model) logOutcome(id, outcome string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.LogOutcome(m.ctx, id, outcome)
		return m.contactResult(c, err, fmt.Sprintf("Logged %q", outcome))
	}
}

func (m Model) setDealStage(id, stage string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.SetDealStage(m.ctx, id, stage)
		status := "Deal stage cleared"
		if stage != "" {
			status = "Moved to " + stage
		}
		return m.contactResult(c, err, status)
	}
}

func (m Model) scheduleFollowUp(id string, days int) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.ScheduleFollowUpAction(m.ctx, id, &days, "")
		return m.contactResult(c, err, fmt.Sprintf("Follow-up scheduled in %d day(s)", days))
	}
}

func (m Model) completeFollowUp(id string) tea.Cmd {
	return func() tea.Msg {
		c, err := m.store.CompleteFollowUpAction(m.ctx, id)
		return m.contactResult(c, err, "Follow-up marked as done")
	}
}

func (m Model) loadFollowups() tea.Cmd {
	ctx, s, overdueOnly := m.ctx, m.store, m.overdueOnly
	return func() tea.Msg {
		var views []models.FollowUpView
		for _, v := range s.FollowUpViews(ctx) {
			if v.Status == models.FollowUpCompleted {
				continue
			}
			if overdueOnly && v.Status != models.FollowUpOverdue {
				continue
			}
			views = append(views, v)
		}
		return followupsLoadedMsg{views: views}
	}
}

// completeFromList completes a follow-up from the follow-up view and refreshes it.
func (m Model) completeFromList(id string) tea.Cmd {
	reload := m.loadFollowups()
	return func() tea.Msg {
		if _, err := m.store.CompleteFollowUpAction(m.ctx, id); err != nil {
			return errMsg{err: err}
		}
		return reload()
	}
}

func (m Model) loadPipeline() tea.Cmd {
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		stats := viz.GenerateDashboardStats(s.Snapshot(ctx), s.Now())
		return pipelineLoadedMsg{text: viz.RenderDashboard(stats)}
	}
}
