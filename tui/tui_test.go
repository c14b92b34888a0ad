// ABOUTME: Tests for the TUI model
// ABOUTME: Drives Update with key messages and runs the returned store commands
package tui

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setupTestStore(t *testing.T) (*store.Store, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := store.New(context.Background(), db.NewMemoryRepository(),
		store.WithClock(clock.Now),
		store.WithLocation(time.UTC),
		store.WithLogger(log.New(io.Discard)),
	)
	t.Cleanup(s.Drain)
	return s, clock
}

func addContact(t *testing.T, s *store.Store, in models.ContactInput) models.Contact {
	t.Helper()
	c, err := s.CreateContact(context.Background(), in)
	require.NoError(t, err)
	return c
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	return next.(Model), cmd
}

// run executes a store command and feeds its messages back until none remain.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	for i := 0; cmd != nil && i < 5; i++ {
		var next tea.Model
		next, cmd = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func pressRun(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := press(t, m, k)
	return run(t, m, cmd)
}

func startModel(t *testing.T, s *store.Store, pageSize int) Model {
	t.Helper()
	m := NewModel(context.Background(), s, pageSize)
	return run(t, m, m.Init())
}

func TestListPaging(t *testing.T) {
	s, _ := setupTestStore(t)
	addContact(t, s, models.ContactInput{Name: "Ann Apple", Phone: "1"})
	addContact(t, s, models.ContactInput{Name: "Bob Banana", Phone: "2"})
	addContact(t, s, models.ContactInput{Name: "Cat Cherry", Phone: "3"})

	m := startModel(t, s, 2)
	assert.Len(t, m.result.Items, 2)
	assert.Equal(t, 3, m.result.TotalCount)
	assert.Contains(t, m.View(), "Page 1 of 2")

	m = pressRun(t, m, "l")
	assert.Equal(t, 2, m.query.Page)
	assert.Len(t, m.result.Items, 1)

	// no page 3
	m, cmd := press(t, m, "l")
	assert.Nil(t, cmd)
	assert.Equal(t, 2, m.query.Page)

	m = pressRun(t, m, "h")
	assert.Equal(t, 1, m.query.Page)

	m = pressRun(t, m, "s")
	assert.Equal(t, models.SortFirstName, m.query.SortOrder)
	assert.Equal(t, "Ann Apple", m.result.Items[0].Name)
}

func TestSearchAndStageFilter(t *testing.T) {
	s, _ := setupTestStore(t)
	addContact(t, s, models.ContactInput{Name: "Ann Apple", Company: "Acme", Phone: "1", DealStage: "Research"})
	addContact(t, s, models.ContactInput{Name: "Bob Banana", Phone: "2"})

	m := startModel(t, s, 10)
	m, _ = press(t, m, "/")
	require.True(t, m.searching)

	// q is typed into the search box, not treated as quit
	m, _ = press(t, m, "q")
	assert.True(t, m.searching)
	m.searchInput.SetValue("acme")

	m = pressRun(t, m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, "acme", m.query.SearchTerm)
	require.Len(t, m.result.Items, 1)
	assert.Equal(t, "Ann Apple", m.result.Items[0].Name)

	m.query.SearchTerm = ""
	m = pressRun(t, m, "tab")
	assert.Equal(t, "Research", m.query.DealStageFilter)
	assert.Equal(t, 1, m.result.TotalCount)
	assert.Contains(t, m.View(), "Ann Apple")
}

func TestDetailWorkflows(t *testing.T) {
	s, _ := setupTestStore(t)
	c := addContact(t, s, models.ContactInput{Name: "Ann Apple", Phone: "555"})

	m := startModel(t, s, 10)
	m = pressRun(t, m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	assert.Equal(t, c.ID, m.selected.ID)
	assert.Contains(t, m.View(), "LOG OUTCOME")

	// 3 is "No Answer" in the default outcomes
	m = pressRun(t, m, "3")
	assert.Equal(t, "No Answer", m.selected.Notes[0].Text)
	m = pressRun(t, m, "3")
	assert.Contains(t, m.status, "Already done today")
	assert.Len(t, m.selected.Notes, 1)

	m = pressRun(t, m, "s")
	assert.Equal(t, "Research", m.selected.DealStage)

	m, cmd := press(t, m, "c")
	assert.Nil(t, cmd)
	assert.Equal(t, "No open follow-up", m.status)

	m = pressRun(t, m, "u")
	assert.True(t, m.hasFollow)
	assert.Contains(t, m.View(), "Follow-up Due")

	m = pressRun(t, m, "c")
	assert.False(t, m.hasFollow)
	assert.Equal(t, "Follow-up marked as done.", m.selected.Notes[0].Text)

	m, _ = press(t, m, "a")
	require.True(t, m.noting)
	m.noteInput.SetValue("wants a corner unit")
	m = pressRun(t, m, "enter")
	assert.False(t, m.noting)
	assert.Equal(t, "wants a corner unit", m.selected.Notes[0].Text)

	m = pressRun(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestCreateAndEditContact(t *testing.T) {
	s, _ := setupTestStore(t)
	m := startModel(t, s, 10)

	m, _ = press(t, m, "n")
	require.Equal(t, ViewEdit, m.viewMode)
	assert.True(t, m.creating)

	m, cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Error(t, m.err, "name is required")

	m.formInputs[fieldName].SetValue("Zed Zulu")
	m.formInputs[fieldLeadType].SetValue("Alien")
	m, cmd = press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.ErrorContains(t, m.err, "unknown lead type")

	m.formInputs[fieldLeadType].SetValue("Buyer")
	m = pressRun(t, m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	assert.Equal(t, "Zed Zulu", m.selected.Name)
	assert.Equal(t, "Buyer", m.selected.LeadType)
	assert.Equal(t, "Contact created", m.status)

	m, _ = press(t, m, "e")
	require.Equal(t, ViewEdit, m.viewMode)
	assert.Equal(t, "Zed Zulu", m.formInputs[fieldName].Value())

	// q goes into the form while editing
	m, _ = press(t, m, "q")
	assert.Equal(t, ViewEdit, m.viewMode)

	m.formInputs[fieldCompany].SetValue("Zeta LLC")
	m = pressRun(t, m, "enter")
	assert.Equal(t, "Zeta LLC", m.selected.Company)

	stored, err := s.Contact(context.Background(), m.selected.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zeta LLC", stored.Company)
	assert.Equal(t, "Buyer", stored.LeadType)
}

func TestDeleteConfirmation(t *testing.T) {
	s, _ := setupTestStore(t)
	addContact(t, s, models.ContactInput{Name: "Ann Apple", Phone: "555"})

	m := startModel(t, s, 10)
	m = pressRun(t, m, "enter")

	m, _ = press(t, m, "d")
	require.Equal(t, ViewConfirmDelete, m.viewMode)
	assert.Contains(t, m.View(), "DELETE CONFIRMATION")

	m, _ = press(t, m, "n")
	assert.Equal(t, ViewDetail, m.viewMode)

	m, _ = press(t, m, "d")
	m = pressRun(t, m, "y")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, "Deleted Ann Apple", m.status)
	assert.Empty(t, m.result.Items)
	assert.Empty(t, s.AllContacts(context.Background()))
}

func TestFollowupsView(t *testing.T) {
	s, clock := setupTestStore(t)
	ctx := context.Background()
	soon := addContact(t, s, models.ContactInput{Name: "Soon Sam", Phone: "1"})
	later := addContact(t, s, models.ContactInput{Name: "Later Liz", Phone: "2"})

	one, seven := 1, 7
	_, err := s.ScheduleFollowUp(ctx, soon.ID, &one)
	require.NoError(t, err)
	_, err = s.ScheduleFollowUp(ctx, later.ID, &seven)
	require.NoError(t, err)
	clock.Advance(3 * 24 * time.Hour)

	m := startModel(t, s, 10)
	m = pressRun(t, m, "f")
	require.Equal(t, ViewFollowups, m.viewMode)
	assert.Len(t, m.followups, 2)

	m = pressRun(t, m, "o")
	require.Len(t, m.followups, 1)
	assert.Equal(t, "Soon Sam", m.followups[0].ContactName)
	assert.Equal(t, models.FollowUpOverdue, m.followups[0].Status)
	assert.Contains(t, m.View(), "OVERDUE")

	m = pressRun(t, m, "c")
	assert.Empty(t, m.followups)
	_, open := s.OpenFollowUp(ctx, soon.ID)
	assert.False(t, open)

	m = pressRun(t, m, "o")
	require.Len(t, m.followups, 1)
	m = pressRun(t, m, "enter")
	assert.Equal(t, ViewDetail, m.viewMode)
	assert.Equal(t, later.ID, m.selected.ID)
	assert.True(t, m.hasFollow)
}

func TestPipelineViewAndQuit(t *testing.T) {
	s, _ := setupTestStore(t)
	addContact(t, s, models.ContactInput{Name: "Ann Apple", Phone: "1", DealStage: "LOI"})

	m := startModel(t, s, 10)
	m = pressRun(t, m, "p")
	require.Equal(t, ViewPipeline, m.viewMode)
	assert.Contains(t, m.View(), "DEALFLOW DASHBOARD")

	m = pressRun(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.width)

	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestLabelHelpers(t *testing.T) {
	labels := []string{"A", "B"}
	assert.Equal(t, "A", nextLabel(labels, ""))
	assert.Equal(t, "B", nextLabel(labels, "A"))
	assert.Equal(t, "", nextLabel(labels, "B"))
	assert.Equal(t, "", nextLabel(labels, "gone"))
	assert.Equal(t, "", nextLabel(nil, ""))

	assert.Equal(t, models.SortLastName, nextSort(models.SortFirstName))
	assert.Equal(t, models.SortActivity, nextSort(models.SortLastName))

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "-", activityAge(0, now, time.UTC))
	assert.Equal(t, "today", activityAge(now.Add(-time.Hour).UnixMilli(), now, time.UTC))
	assert.Equal(t, "yesterday", activityAge(now.Add(-24*time.Hour).UnixMilli(), now, time.UTC))
	assert.Equal(t, "5d ago", activityAge(now.Add(-5*24*time.Hour).UnixMilli(), now, time.UTC))
}
