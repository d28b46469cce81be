// Package unread decides which sessions deserve the user's attention and
// shapes them into the grouped digest the panel renders.
package unread

import "cockpit/internal/types"

type Kind string

const (
	KindNeedsApproval Kind = "needs_approval"
	KindNeedsInput    Kind = "needs_input"
	KindReviewing     Kind = "reviewing"
	KindCompleted     Kind = "completed"
	KindCancelled     Kind = "cancelled"
	KindCrashed       Kind = "crashed"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

// Status describes why an unread session is unread.
type Status struct {
	Kind     Kind
	Label    string
	Severity Severity
}

type Classification struct {
	Unread bool
	Status *Status
}

// Classify reports whether the session is unread and, if so, its status.
// Archived sessions are never unread. A session with no finished run, no
// pending input, and no review in progress has nothing actionable and is
// read by definition. Equal open and update timestamps count as read.
func Classify(session *types.Session) Classification {
	if session == nil || session.Archived() {
		return Classification{}
	}
	finished := session.LastRunStatus.Finished()
	waiting := session.State.WaitingForInput
	reviewing := session.State.IsReviewing
	if !finished && !waiting && !reviewing {
		return Classification{}
	}
	if session.LastOpenedAt != nil && *session.LastOpenedAt >= session.UpdatedAt {
		return Classification{}
	}
	return Classification{Unread: true, Status: statusFor(session)}
}

// statusFor picks the most actionable description. A stale run status can
// coexist with a live wait, so waiting wins over reviewing which wins over
// the finished-run table.
func statusFor(session *types.Session) *Status {
	if session.State.WaitingForInput {
		if waitType := session.State.WaitingForInputType; waitType != nil && *waitType == types.WaitTypePlan {
			return &Status{Kind: KindNeedsApproval, Label: "Needs approval", Severity: SeverityWarn}
		}
		return &Status{Kind: KindNeedsInput, Label: "Needs input", Severity: SeverityWarn}
	}
	if session.State.IsReviewing {
		return &Status{Kind: KindReviewing, Label: "Reviewing", Severity: SeverityInfo}
	}
	switch session.LastRunStatus {
	case types.RunStatusCancelled:
		return &Status{Kind: KindCancelled, Label: "Cancelled", Severity: SeverityWarn}
	case types.RunStatusCrashed:
		return &Status{Kind: KindCrashed, Label: "Crashed", Severity: SeverityError}
	default:
		return &Status{Kind: KindCompleted, Label: "Finished", Severity: SeverityInfo}
	}
}
