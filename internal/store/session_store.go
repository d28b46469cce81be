package store

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"

	"cockpit/internal/types"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionSchemaVersion = 1

// Sessions with no resolvable project are grouped under this synthetic id in
// list output.
const (
	UnassignedProjectID   = "__unassigned__"
	unassignedProjectName = "Unassigned"
)

// SessionStore is the persistence collaborator for session records. The sync
// engine only uses Get and UpsertState; UpsertState replaces the synchronized
// state fields wholesale (idempotent) and never touches UpdatedAt, which is
// owned by real session activity.
type SessionStore interface {
	ListAll(ctx context.Context) ([]*types.ProjectSessions, error)
	Get(ctx context.Context, sessionID string) (*types.Session, bool, error)
	Upsert(ctx context.Context, session *types.Session) (*types.Session, error)
	UpsertState(ctx context.Context, sessionID string, state types.SessionState) error
	MarkOpened(ctx context.Context, sessionID string, openedAt int64) error
	Archive(ctx context.Context, sessionID string, archivedAt int64) error
	Delete(ctx context.Context, sessionID string) error
}

type FileSessionStore struct {
	path     string
	projects ProjectStore
	mu       sync.Mutex
}

type sessionFile struct {
	Version  int              `json:"version"`
	Sessions []*types.Session `json:"sessions"`
}

func NewFileSessionStore(path string, projects ProjectStore) *FileSessionStore {
	return &FileSessionStore{path: path, projects: projects}
}

func (s *FileSessionStore) ListAll(ctx context.Context) ([]*types.ProjectSessions, error) {
	s.mu.Lock()
	file, err := s.load()
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file = newSessionFile()
		} else {
			return nil, err
		}
	}
	sessions := make([]*types.Session, 0, len(file.Sessions))
	for _, session := range file.Sessions {
		sessions = append(sessions, types.CloneSession(session))
	}
	return groupByProject(ctx, s.projects, sessions)
}

func (s *FileSessionStore) Get(ctx context.Context, sessionID string) (*types.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	for _, session := range file.Sessions {
		if session.ID == sessionID {
			return types.CloneSession(session), true, nil
		}
	}
	return nil, false, nil
}

func (s *FileSessionStore) Upsert(ctx context.Context, session *types.Session) (*types.Session, error) {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return nil, errors.New("session requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadOrEmpty()
	if err != nil {
		return nil, err
	}
	normalized := normalizeSession(session)
	updated := false
	for i, existing := range file.Sessions {
		if existing.ID == normalized.ID {
			normalized.CreatedAt = existing.CreatedAt
			file.Sessions[i] = normalized
			updated = true
			break
		}
	}
	if !updated {
		file.Sessions = append(file.Sessions, normalized)
	}
	if err := s.save(file); err != nil {
		return nil, err
	}
	return types.CloneSession(normalized), nil
}

func (s *FileSessionStore) UpsertState(ctx context.Context, sessionID string, state types.SessionState) error {
	return s.mutate(sessionID, func(session *types.Session) {
		session.State = types.CloneSessionState(state)
	})
}

func (s *FileSessionStore) MarkOpened(ctx context.Context, sessionID string, openedAt int64) error {
	return s.mutate(sessionID, func(session *types.Session) {
		session.LastOpenedAt = &openedAt
	})
}

func (s *FileSessionStore) Archive(ctx context.Context, sessionID string, archivedAt int64) error {
	return s.mutate(sessionID, func(session *types.Session) {
		session.ArchivedAt = &archivedAt
	})
}

func (s *FileSessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrSessionNotFound
		}
		return err
	}
	filtered := file.Sessions[:0]
	found := false
	for _, session := range file.Sessions {
		if session.ID == sessionID {
			found = true
			continue
		}
		filtered = append(filtered, session)
	}
	if !found {
		return ErrSessionNotFound
	}
	file.Sessions = filtered
	return s.save(file)
}

func (s *FileSessionStore) mutate(sessionID string, apply func(*types.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrSessionNotFound
		}
		return err
	}
	for _, session := range file.Sessions {
		if session.ID == sessionID {
			apply(session)
			return s.save(file)
		}
	}
	return ErrSessionNotFound
}

func (s *FileSessionStore) load() (*sessionFile, error) {
	file := newSessionFile()
	if err := decodeJSONFile(s.path, file); err != nil {
		return nil, err
	}
	if file.Version == 0 {
		file.Version = sessionSchemaVersion
	}
	return file, nil
}

func (s *FileSessionStore) loadOrEmpty() (*sessionFile, error) {
	file, err := s.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newSessionFile(), nil
		}
		return nil, err
	}
	return file, nil
}

func (s *FileSessionStore) save(file *sessionFile) error {
	file.Version = sessionSchemaVersion
	return replaceJSONFile(s.path, file)
}

func newSessionFile() *sessionFile {
	return &sessionFile{
		Version:  sessionSchemaVersion,
		Sessions: []*types.Session{},
	}
}

func normalizeSession(session *types.Session) *types.Session {
	normalized := types.CloneSession(session)
	normalized.ID = strings.TrimSpace(normalized.ID)
	if normalized.CreatedAt == 0 {
		normalized.CreatedAt = types.NowTimestamp()
	}
	if normalized.UpdatedAt == 0 {
		normalized.UpdatedAt = normalized.CreatedAt
	}
	return normalized
}

// groupByProject assembles the list-all batch: one entry per project carrying
// its worktrees and sessions. Sessions pointing at unknown projects land in a
// synthetic unassigned group so nothing silently disappears from the panel.
func groupByProject(ctx context.Context, projects ProjectStore, sessions []*types.Session) ([]*types.ProjectSessions, error) {
	known := []types.Project{}
	worktreesByProject := map[string][]types.Worktree{}
	if projects != nil {
		list, err := projects.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		known = list
		for _, project := range list {
			trees, err := projects.ListWorktrees(ctx, project.ID)
			if err != nil {
				return nil, err
			}
			worktreesByProject[project.ID] = trees
		}
	}
	byProject := map[string][]*types.Session{}
	for _, session := range sessions {
		byProject[session.ProjectID] = append(byProject[session.ProjectID], session)
	}
	out := make([]*types.ProjectSessions, 0, len(known)+1)
	seen := map[string]struct{}{}
	for _, project := range known {
		seen[project.ID] = struct{}{}
		out = append(out, &types.ProjectSessions{
			Project:   project,
			Worktrees: worktreesByProject[project.ID],
			Sessions:  byProject[project.ID],
		})
	}
	unassigned := []*types.Session{}
	for projectID, list := range byProject {
		if _, ok := seen[projectID]; ok {
			continue
		}
		unassigned = append(unassigned, list...)
	}
	if len(unassigned) > 0 {
		sort.Slice(unassigned, func(i, j int) bool {
			return unassigned[i].UpdatedAt > unassigned[j].UpdatedAt
		})
		out = append(out, &types.ProjectSessions{
			Project:  types.Project{ID: UnassignedProjectID, Name: unassignedProjectName},
			Sessions: unassigned,
		})
	}
	return out, nil
}
