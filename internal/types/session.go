package types

import "encoding/json"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusCrashed   RunStatus = "crashed"
)

func (s RunStatus) Finished() bool {
	switch s {
	case RunStatusCompleted, RunStatusCancelled, RunStatusCrashed:
		return true
	default:
		return false
	}
}

const WaitTypePlan = "plan"

// PermissionDenial is a single tool invocation the agent was not allowed to
// run; it stays pending until the user approves or dismisses it.
type PermissionDenial struct {
	ToolName  string          `json:"tool_name"`
	ToolUseID string          `json:"tool_use_id"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
}

// DeniedMessageContext captures the message that triggered a denial so it can
// be resent once permissions change. Singular: at most one per session.
type DeniedMessageContext struct {
	Message       string `json:"message"`
	Model         string `json:"model,omitempty"`
	ThinkingLevel string `json:"thinking_level,omitempty"`
}

// SessionState is the complete set of session fields that round-trip through
// persistence. Any session field not listed here is transient UI state and is
// never written back.
type SessionState struct {
	AnsweredQuestions        []string              `json:"answered_questions,omitempty"`
	SubmittedAnswers         map[string][]string   `json:"submitted_answers,omitempty"`
	FixedFindings            []string              `json:"fixed_findings,omitempty"`
	PendingPermissionDenials []PermissionDenial    `json:"pending_permission_denials,omitempty"`
	DeniedMessageContext     *DeniedMessageContext `json:"denied_message_context,omitempty"`
	PlanFilePath             *string               `json:"plan_file_path,omitempty"`
	PendingPlanMessageID     *string               `json:"pending_plan_message_id,omitempty"`
	// EnabledMCPServers distinguishes nil from empty: nil defers to the
	// project default, a non-nil empty list disables every server.
	EnabledMCPServers   *[]string `json:"enabled_mcp_servers"`
	IsReviewing         bool      `json:"is_reviewing"`
	WaitingForInput     bool      `json:"waiting_for_input"`
	WaitingForInputType *string   `json:"waiting_for_input_type,omitempty"`
}

// Session is the durable record owned by the persistence layer. Timestamps
// are unix milliseconds; LastOpenedAt and ArchivedAt are nil until set.
type Session struct {
	ID            string       `json:"id"`
	WorktreeID    string       `json:"worktree_id"`
	ProjectID     string       `json:"project_id"`
	Title         string       `json:"title,omitempty"`
	CreatedAt     int64        `json:"created_at"`
	UpdatedAt     int64        `json:"updated_at"`
	LastOpenedAt  *int64       `json:"last_opened_at,omitempty"`
	ArchivedAt    *int64       `json:"archived_at,omitempty"`
	LastRunStatus RunStatus    `json:"last_run_status,omitempty"`
	State         SessionState `json:"state"`
}

func (s *Session) Archived() bool {
	return s != nil && s.ArchivedAt != nil
}

// CloneSessionState returns a deep copy so callers can hand out state without
// sharing containers with the store.
func CloneSessionState(state SessionState) SessionState {
	out := state
	if len(state.AnsweredQuestions) > 0 {
		out.AnsweredQuestions = append([]string(nil), state.AnsweredQuestions...)
	}
	if state.SubmittedAnswers != nil {
		answers := make(map[string][]string, len(state.SubmittedAnswers))
		for question, list := range state.SubmittedAnswers {
			answers[question] = append([]string(nil), list...)
		}
		out.SubmittedAnswers = answers
	}
	if len(state.FixedFindings) > 0 {
		out.FixedFindings = append([]string(nil), state.FixedFindings...)
	}
	if len(state.PendingPermissionDenials) > 0 {
		denials := make([]PermissionDenial, len(state.PendingPermissionDenials))
		copy(denials, state.PendingPermissionDenials)
		for i := range denials {
			if len(denials[i].ToolInput) > 0 {
				denials[i].ToolInput = append(json.RawMessage(nil), denials[i].ToolInput...)
			}
		}
		out.PendingPermissionDenials = denials
	}
	if state.DeniedMessageContext != nil {
		ctx := *state.DeniedMessageContext
		out.DeniedMessageContext = &ctx
	}
	out.PlanFilePath = cloneStringPtr(state.PlanFilePath)
	out.PendingPlanMessageID = cloneStringPtr(state.PendingPlanMessageID)
	out.WaitingForInputType = cloneStringPtr(state.WaitingForInputType)
	if state.EnabledMCPServers != nil {
		servers := append([]string(nil), (*state.EnabledMCPServers)...)
		out.EnabledMCPServers = &servers
	}
	return out
}

func CloneSession(session *Session) *Session {
	if session == nil {
		return nil
	}
	out := *session
	out.LastOpenedAt = cloneInt64Ptr(session.LastOpenedAt)
	out.ArchivedAt = cloneInt64Ptr(session.ArchivedAt)
	out.State = CloneSessionState(session.State)
	return &out
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneInt64Ptr(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
