// Package app is the terminal unread panel: a grouped list of sessions
// with actionable state, plan previews, and mark-as-read handling.
package app

import (
	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"cockpit/internal/livestate"
	"cockpit/internal/logging"
	"cockpit/internal/store"
	statesync "cockpit/internal/sync"
	"cockpit/internal/types"
	"cockpit/internal/unread"
)

const (
	minPanelWidth  = 40
	minPanelHeight = 10
)

// SaveFailure is pushed by the engine's notifier so the panel can surface
// a failed background save in the status line.
type SaveFailure struct {
	SessionID string
	Err       error
}

type Model struct {
	repo   store.Repository
	live   *livestate.Store
	engine *statesync.Engine
	logger logging.Logger

	selectedProjectID string
	failures          <-chan SaveFailure

	digest      unread.Digest
	nav         *unread.Navigator
	sessionRows []int
	list        list.Model
	delegate    *panelDelegate

	preview     viewport.Model
	previewOpen bool
	previewFor  string

	width  int
	height int
	status string
}

func NewModel(repo store.Repository, live *livestate.Store, engine *statesync.Engine, logger logging.Logger, selectedProjectID string, failures <-chan SaveFailure) *Model {
	delegate := &panelDelegate{}
	mlist := list.New([]list.Item{}, delegate, minPanelWidth, minPanelHeight)
	mlist.Title = "Unread"
	mlist.SetShowHelp(false)
	mlist.SetFilteringEnabled(false)
	mlist.SetShowPagination(false)
	mlist.SetShowStatusBar(false)
	mlist.Styles.Title = headerStyle

	if logger == nil {
		logger = logging.Nop()
	}
	return &Model{
		repo:              repo,
		live:              live,
		engine:            engine,
		logger:            logger,
		selectedProjectID: selectedProjectID,
		failures:          failures,
		nav:               unread.NewNavigator(unread.Digest{}),
		list:              mlist,
		delegate:          delegate,
		preview:           viewport.New(viewport.WithWidth(minPanelWidth), viewport.WithHeight(minPanelHeight)),
		width:             minPanelWidth,
		height:            minPanelHeight,
	}
}

func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchSessionsCmd(m.repo.Sessions())}
	if m.failures != nil {
		cmds = append(cmds, m.waitForSaveFailureCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForSaveFailureCmd() tea.Cmd {
	return func() tea.Msg {
		failure, ok := <-m.failures
		if !ok {
			return nil
		}
		return saveFailedMsg{sessionID: failure.SessionID, err: failure.Err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(minPanelWidth, msg.Width)
		m.height = max(minPanelHeight, msg.Height)
		m.list.SetSize(m.width, m.height-3)
		m.preview.SetWidth(max(1, m.width-4))
		m.preview.SetHeight(max(1, m.height-5))
		return m, nil
	case sessionsLoadedMsg:
		if msg.err != nil {
			m.status = "load error: " + msg.err.Error()
			return m, nil
		}
		m.applyBatch(msg.batch)
		return m, nil
	case sessionOpenedMsg:
		if msg.err != nil {
			m.status = "open error: " + msg.err.Error()
			return m, nil
		}
		m.status = "opened " + msg.sessionID
		return m, fetchSessionsCmd(m.repo.Sessions())
	case markedReadMsg:
		if msg.err != nil {
			m.status = "mark read error: " + msg.err.Error()
			return m, nil
		}
		m.status = "marked read"
		return m, fetchSessionsCmd(m.repo.Sessions())
	case planLoadedMsg:
		if msg.err != nil {
			m.status = "plan error: " + msg.err.Error()
			return m, nil
		}
		m.previewOpen = true
		m.previewFor = msg.sessionID
		m.preview.SetContent(renderMarkdown(msg.body, m.preview.Width()))
		m.preview.GotoTop()
		return m, nil
	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else if msg.method == clipboardMethodOSC52 {
			m.status = "copied (OSC52)"
		} else {
			m.status = "copied"
		}
		return m, nil
	case saveFailedMsg:
		m.status = "save failed for " + msg.sessionID + ": " + msg.err.Error()
		m.logger.Warn("panel showing save failure", logging.F("session_id", msg.sessionID))
		return m, m.waitForSaveFailureCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.previewOpen {
		switch msg.String() {
		case "q", "esc", "p":
			m.previewOpen = false
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		default:
			updated, cmd := m.preview.Update(msg)
			m.preview = updated
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "j", "down":
		m.nav.Next()
		m.syncSelection()
		return m, nil
	case "k", "up":
		m.nav.Prev()
		m.syncSelection()
		return m, nil
	case "enter":
		if current, ok := m.nav.Current(); ok {
			return m, openSessionCmd(m.repo.Sessions(), m.engine, current.Session.ID)
		}
		return m, nil
	case "r":
		if current, ok := m.nav.Current(); ok {
			return m, markOpenedCmd(m.repo.Sessions(), current.Session.ID)
		}
		return m, nil
	case "p":
		if current, ok := m.nav.Current(); ok {
			return m, loadPlanCmd(current.Session)
		}
		return m, nil
	case "y":
		if current, ok := m.nav.Current(); ok {
			return m, copySessionIDCmd(current.Session.ID)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) applyBatch(batch []*types.ProjectSessions) {
	m.digest = unread.BuildDigest(batch, m.selectedProjectID)
	m.nav.Reset(m.digest)
	items, sessionRows := buildPanelItems(m.digest)
	m.sessionRows = sessionRows
	m.list.SetItems(items)
	m.syncSelection()
	if m.previewOpen {
		if _, ok := m.nav.Current(); !ok {
			m.previewOpen = false
		}
	}
}

func (m *Model) syncSelection() {
	current, ok := m.nav.Current()
	if !ok {
		m.delegate.selectedSessionID = ""
		return
	}
	m.delegate.selectedSessionID = current.Session.ID
	index := m.nav.Index()
	if index >= 0 && index < len(m.sessionRows) {
		m.list.Select(m.sessionRows[index])
	}
}

func (m *Model) View() string {
	if m.previewOpen {
		title := previewTitleStyle.Render("Plan · " + m.previewFor)
		body := previewBorderStyle.Render(m.preview.View())
		help := helpStyle.Render("↑/↓ scroll · p/esc close · ctrl+c quit")
		return lipgloss.JoinVertical(lipgloss.Left, title, body, help)
	}

	var body string
	if m.digest.Empty() {
		body = statusStyle.Render("No unread sessions.")
	} else {
		body = m.list.View()
	}
	status := statusStyle.Render(m.status)
	help := helpStyle.Render("j/k move · enter open · r mark read · p plan · y yank id · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, status, help)
}
