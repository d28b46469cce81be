package app

import (
	"context"
	"errors"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"cockpit/internal/store"
	statesync "cockpit/internal/sync"
	"cockpit/internal/types"
)

type sessionsLoadedMsg struct {
	batch []*types.ProjectSessions
	err   error
}

type sessionOpenedMsg struct {
	sessionID string
	err       error
}

type markedReadMsg struct {
	sessionID string
	err       error
}

type planLoadedMsg struct {
	sessionID string
	body      string
	err       error
}

type copiedMsg struct {
	method clipboardMethod
	err    error
}

// saveFailedMsg surfaces a failed background save. The engine's notifier
// pushes onto the failures channel and waitForSaveFailureCmd converts each
// receive into one of these, re-arming itself on every delivery.
type saveFailedMsg struct {
	sessionID string
	err       error
}

func fetchSessionsCmd(sessions store.SessionStore) tea.Cmd {
	return func() tea.Msg {
		batch, err := sessions.ListAll(context.Background())
		return sessionsLoadedMsg{batch: batch, err: err}
	}
}

// openSessionCmd marks the session opened and hands it to the sync engine.
// Activation flushes any pending write for the previously active session
// before the new record is read.
func openSessionCmd(sessions store.SessionStore, engine *statesync.Engine, sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := sessions.MarkOpened(ctx, sessionID, types.NowTimestamp()); err != nil {
			return sessionOpenedMsg{sessionID: sessionID, err: err}
		}
		if engine != nil {
			if err := engine.Activate(ctx, sessionID); err != nil {
				return sessionOpenedMsg{sessionID: sessionID, err: err}
			}
		}
		return sessionOpenedMsg{sessionID: sessionID}
	}
}

func markOpenedCmd(sessions store.SessionStore, sessionID string) tea.Cmd {
	return func() tea.Msg {
		err := sessions.MarkOpened(context.Background(), sessionID, types.NowTimestamp())
		return markedReadMsg{sessionID: sessionID, err: err}
	}
}

func loadPlanCmd(session *types.Session) tea.Cmd {
	sessionID := session.ID
	path := ""
	if session.State.PlanFilePath != nil {
		path = strings.TrimSpace(*session.State.PlanFilePath)
	}
	return func() tea.Msg {
		if path == "" {
			return planLoadedMsg{sessionID: sessionID, err: errors.New("session has no plan file")}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return planLoadedMsg{sessionID: sessionID, err: err}
		}
		return planLoadedMsg{sessionID: sessionID, body: string(data)}
	}
}

func copySessionIDCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		method, err := copyTextToClipboard(sessionID)
		return copiedMsg{method: method, err: err}
	}
}
