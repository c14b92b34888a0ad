// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen browsing and editing of contacts and follow-ups
package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/harperreed/dealflow/models"
	"github.com/harperreed/dealflow/store"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewFollowups
	ViewPipeline
	ViewConfirmDelete
)

// DefaultPageSize is the list page size when none is configured.
const DefaultPageSize = 15

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	store    *store.Store
	viewMode ViewMode

	// List view state
	query       models.QuerySpec
	result      models.QueryResult
	selectedRow int
	searching   bool
	searchInput textinput.Model

	// Detail view state
	selected  models.Contact
	hasFollow bool
	followDue int64
	noting    bool
	noteInput textinput.Model

	// Edit view state
	formInputs []textinput.Model
	focusIndex int
	creating   bool

	// Follow-up view state
	followups   []models.FollowUpView
	followRow   int
	overdueOnly bool

	// Pipeline view state
	pipeline string

	// UI state
	status string
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, s *store.Store, pageSize int) Model {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	search := textinput.New()
	search.Placeholder = "Search name, company, phone, email"
	search.CharLimit = 100

	note := textinput.New()
	note.Placeholder = "Note"
	note.CharLimit = 1000

	return Model{
		ctx:         ctx,
		store:       s,
		viewMode:    ViewList,
		query:       models.QuerySpec{Page: 1, PageSize: pageSize, SortOrder: models.SortActivity},
		searchInput: search,
		noteInput:   note,
		width:       80,
		height:      24,
	}
}

// Run starts the full-screen program. It refuses to start without a terminal.
func Run(ctx context.Context, s *store.Store, pageSize int) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui needs an interactive terminal")
	}
	p := tea.NewProgram(NewModel(ctx, s, pageSize), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadContacts()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case contactsLoadedMsg:
		m.result = msg.result
		if m.selectedRow >= len(m.result.Items) {
			m.selectedRow = max(len(m.result.Items)-1, 0)
		}
		return m, nil
	case contactLoadedMsg:
		m.err = nil
		m.selected = msg.contact
		m.hasFollow, m.followDue = msg.hasFollow, msg.followDue
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil
	case followupsLoadedMsg:
		m.followups = msg.views
		if m.followRow >= len(m.followups) {
			m.followRow = max(len(m.followups)-1, 0)
		}
		return m, nil
	case pipelineLoadedMsg:
		m.pipeline = msg.text
		return m, nil
	case contactDeletedMsg:
		m.status = fmt.Sprintf("Deleted %s", msg.name)
		m.selected = models.Contact{}
		m.viewMode = ViewList
		return m, m.loadContacts()
	case errMsg:
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewFollowups:
		return m.renderFollowupsView()
	case ViewPipeline:
		return m.renderPipelineView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

// typing reports whether keystrokes belong to a text input.
func (m Model) typing() bool {
	return m.searching || m.noting || m.viewMode == ViewEdit
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !m.typing() {
			return m, tea.Quit
		}
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewFollowups:
		return m.handleFollowupKeys(msg)
	case ViewPipeline:
		return m.handlePipelineKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)
