// Package sync mirrors live session state into the persistence layer. One
// engine tracks one active session at a time; edits to that session's live
// state are coalesced and written back as full snapshots.
package sync

import (
	"context"
	"sync"
	"time"

	"cockpit/internal/livestate"
	"cockpit/internal/logging"
	"cockpit/internal/store"
	"cockpit/internal/types"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSyncing
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSyncing:
		return "syncing"
	default:
		return "idle"
	}
}

// Notifier receives each failed snapshot write exactly once. Failed writes
// are not retried; the next edit schedules a fresh snapshot.
type Notifier func(sessionID string, err error)

type Options struct {
	SaveDebounce time.Duration
	LoadGrace    time.Duration
	Logger       logging.Logger
	Notifier     Notifier
}

type saveRequest struct {
	sessionID string
	state     types.SessionState
}

// Engine keeps the active session's live state and durable record in step.
// Activate flushes any pending write for the previous session before it
// reads the next one, so a quick switch never loses an edit or clobbers the
// new session with the old one's data.
type Engine struct {
	sessions store.SessionStore
	live     *livestate.Store
	logger   logging.Logger
	notifier Notifier
	grace    time.Duration
	saver    *Debouncer[saveRequest]

	mu       sync.Mutex
	phase    Phase
	active   string
	loadedAt time.Time
}

func NewEngine(sessions store.SessionStore, live *livestate.Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	e := &Engine{
		sessions: sessions,
		live:     live,
		logger:   logger,
		notifier: opts.Notifier,
		grace:    opts.LoadGrace,
		phase:    PhaseIdle,
	}
	e.saver = NewDebouncer(opts.SaveDebounce, e.save)
	live.Subscribe(e.onChange)
	return e
}

// Activate makes sessionID the synchronized session. Any write still
// pending for the previous session is flushed first. A session with no
// durable record starts from whatever live state already exists.
func (e *Engine) Activate(ctx context.Context, sessionID string) error {
	e.saver.Flush()

	e.mu.Lock()
	e.phase = PhaseLoading
	e.active = sessionID
	e.mu.Unlock()

	record, found, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		e.mu.Lock()
		e.phase = PhaseIdle
		e.active = ""
		e.mu.Unlock()
		return err
	}

	current := e.live.Snapshot(sessionID)
	if found {
		e.live.Replace(sessionID, mergeLoaded(current, record.State))
	}

	e.mu.Lock()
	e.phase = PhaseSyncing
	e.loadedAt = time.Now()
	e.mu.Unlock()

	e.logger.Debug("session activated",
		logging.F("session_id", sessionID),
		logging.F("durable_record", found))
	return nil
}

// Deactivate flushes any pending write and stops observing changes.
func (e *Engine) Deactivate() {
	e.saver.Flush()
	e.mu.Lock()
	e.phase = PhaseIdle
	e.active = ""
	e.mu.Unlock()
}

// Active returns the synchronized session id, if any.
func (e *Engine) Active() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active, e.phase == PhaseSyncing
}

// Close flushes any pending write. Safe to call more than once.
func (e *Engine) Close() {
	e.saver.Flush()
	e.mu.Lock()
	e.phase = PhaseIdle
	e.mu.Unlock()
}

func (e *Engine) onChange(sessionID, field string) {
	e.mu.Lock()
	if e.phase != PhaseSyncing || sessionID != e.active {
		e.mu.Unlock()
		return
	}
	if e.grace > 0 && time.Since(e.loadedAt) < e.grace {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	e.logger.Debug("state changed",
		logging.F("session_id", sessionID),
		logging.F("field", field))
	e.saver.Call(saveRequest{
		sessionID: sessionID,
		state:     e.live.Snapshot(sessionID),
	})
}

func (e *Engine) save(req saveRequest) {
	err := e.sessions.UpsertState(context.Background(), req.sessionID, req.state)
	if err == nil {
		e.logger.Debug("state saved", logging.F("session_id", req.sessionID))
		return
	}
	e.logger.Error("state save failed",
		logging.F("session_id", req.sessionID),
		logging.F("error", err))
	if e.notifier != nil {
		e.notifier(req.sessionID, err)
	}
}

// mergeLoaded applies a durable record onto the live state. Absent or empty
// durable fields leave the live value alone so loading never erases work in
// progress; the booleans and the mcp override are authoritative and applied
// verbatim.
func mergeLoaded(live, durable types.SessionState) types.SessionState {
	merged := types.CloneSessionState(live)
	if len(durable.AnsweredQuestions) > 0 {
		merged.AnsweredQuestions = append([]string(nil), durable.AnsweredQuestions...)
	}
	if len(durable.SubmittedAnswers) > 0 {
		answers := make(map[string][]string, len(durable.SubmittedAnswers))
		for question, list := range durable.SubmittedAnswers {
			answers[question] = append([]string(nil), list...)
		}
		merged.SubmittedAnswers = answers
	}
	if len(durable.FixedFindings) > 0 {
		merged.FixedFindings = append([]string(nil), durable.FixedFindings...)
	}
	if len(durable.PendingPermissionDenials) > 0 {
		merged.PendingPermissionDenials = append([]types.PermissionDenial(nil), durable.PendingPermissionDenials...)
	}
	if durable.DeniedMessageContext != nil {
		denied := *durable.DeniedMessageContext
		merged.DeniedMessageContext = &denied
	}
	if durable.PlanFilePath != nil {
		merged.PlanFilePath = durable.PlanFilePath
	}
	if durable.PendingPlanMessageID != nil {
		merged.PendingPlanMessageID = durable.PendingPlanMessageID
	}
	if durable.EnabledMCPServers != nil {
		servers := append([]string(nil), (*durable.EnabledMCPServers)...)
		merged.EnabledMCPServers = &servers
	}
	merged.IsReviewing = durable.IsReviewing
	merged.WaitingForInput = durable.WaitingForInput
	merged.WaitingForInputType = durable.WaitingForInputType
	return merged
}
