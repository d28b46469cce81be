// Package livestate holds the in-memory session state the UI mutates
// directly. It is the source of truth while a session is open; the sync
// engine observes field changes and mirrors them into persistence.
package livestate

import (
	"sync"

	"cockpit/internal/types"
)

// Field names reported to change listeners. One per synchronized field.
const (
	FieldAnsweredQuestions        = "answered_questions"
	FieldSubmittedAnswers         = "submitted_answers"
	FieldFixedFindings            = "fixed_findings"
	FieldPendingPermissionDenials = "pending_permission_denials"
	FieldDeniedMessageContext     = "denied_message_context"
	FieldPlanFilePath             = "plan_file_path"
	FieldPendingPlanMessageID     = "pending_plan_message_id"
	FieldEnabledMCPServers        = "enabled_mcp_servers"
	FieldIsReviewing              = "is_reviewing"
	FieldWaitingForInput          = "waiting_for_input"
)

// Listener is invoked after a field changes. Listeners run outside the
// store lock and must not assume the state is unchanged since the event.
type Listener func(sessionID, field string)

// Store keeps one SessionState per session id. Setters replace whole
// containers rather than mutating shared ones, so snapshots taken earlier
// stay valid.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]types.SessionState
	listeners []Listener
}

func NewStore() *Store {
	return &Store{sessions: map[string]types.SessionState{}}
}

func (s *Store) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a deep copy of the session's current state. Unknown
// sessions yield the zero state.
func (s *Store) Snapshot(sessionID string) types.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.CloneSessionState(s.sessions[sessionID])
}

// Replace installs a full state for the session without notifying
// listeners. Used when loading a durable record into memory.
func (s *Store) Replace(sessionID string, state types.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = types.CloneSessionState(state)
}

// Drop forgets the session entirely.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *Store) SetAnsweredQuestions(sessionID string, questions []string) {
	s.set(sessionID, FieldAnsweredQuestions, func(state *types.SessionState) {
		state.AnsweredQuestions = append([]string(nil), questions...)
	})
}

func (s *Store) SetSubmittedAnswers(sessionID string, answers map[string][]string) {
	s.set(sessionID, FieldSubmittedAnswers, func(state *types.SessionState) {
		if answers == nil {
			state.SubmittedAnswers = nil
			return
		}
		next := make(map[string][]string, len(answers))
		for question, list := range answers {
			next[question] = append([]string(nil), list...)
		}
		state.SubmittedAnswers = next
	})
}

func (s *Store) SetFixedFindings(sessionID string, findings []string) {
	s.set(sessionID, FieldFixedFindings, func(state *types.SessionState) {
		state.FixedFindings = append([]string(nil), findings...)
	})
}

func (s *Store) SetPendingPermissionDenials(sessionID string, denials []types.PermissionDenial) {
	s.set(sessionID, FieldPendingPermissionDenials, func(state *types.SessionState) {
		state.PendingPermissionDenials = append([]types.PermissionDenial(nil), denials...)
	})
}

func (s *Store) SetDeniedMessageContext(sessionID string, denied *types.DeniedMessageContext) {
	s.set(sessionID, FieldDeniedMessageContext, func(state *types.SessionState) {
		if denied == nil {
			state.DeniedMessageContext = nil
			return
		}
		copied := *denied
		state.DeniedMessageContext = &copied
	})
}

func (s *Store) SetPlanFilePath(sessionID string, path *string) {
	s.set(sessionID, FieldPlanFilePath, func(state *types.SessionState) {
		state.PlanFilePath = clonePtr(path)
	})
}

func (s *Store) SetPendingPlanMessageID(sessionID string, messageID *string) {
	s.set(sessionID, FieldPendingPlanMessageID, func(state *types.SessionState) {
		state.PendingPlanMessageID = clonePtr(messageID)
	})
}

// SetEnabledMCPServers distinguishes nil (no per-session override) from an
// empty list (every server disabled).
func (s *Store) SetEnabledMCPServers(sessionID string, servers *[]string) {
	s.set(sessionID, FieldEnabledMCPServers, func(state *types.SessionState) {
		if servers == nil {
			state.EnabledMCPServers = nil
			return
		}
		copied := append([]string(nil), (*servers)...)
		state.EnabledMCPServers = &copied
	})
}

func (s *Store) SetIsReviewing(sessionID string, reviewing bool) {
	s.set(sessionID, FieldIsReviewing, func(state *types.SessionState) {
		state.IsReviewing = reviewing
	})
}

func (s *Store) SetWaitingForInput(sessionID string, waiting bool, waitType *string) {
	s.set(sessionID, FieldWaitingForInput, func(state *types.SessionState) {
		state.WaitingForInput = waiting
		if waiting {
			state.WaitingForInputType = clonePtr(waitType)
		} else {
			state.WaitingForInputType = nil
		}
	})
}

func (s *Store) set(sessionID, field string, apply func(*types.SessionState)) {
	s.mu.Lock()
	state := s.sessions[sessionID]
	apply(&state)
	s.sessions[sessionID] = state
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(sessionID, field)
	}
}

func clonePtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
