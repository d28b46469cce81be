package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"cockpit/internal/types"
)

var (
	bucketAppState  = []byte("app_state")
	bucketProjects  = []byte("projects")
	bucketWorktrees = []byte("worktrees")
	bucketSessions  = []byte("sessions")
	keyAppState     = []byte("state")
)

type bboltRepository struct {
	db       *bolt.DB
	sessions SessionStore
	projects ProjectStore
	appState AppStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	projects := &bboltProjectStore{db: db}
	return &bboltRepository{
		db:       db,
		sessions: &bboltSessionStore{db: db, projects: projects},
		projects: projects,
		appState: &bboltAppStateStore{db: db},
	}, nil
}

func (r *bboltRepository) Sessions() SessionStore {
	return r.sessions
}

func (r *bboltRepository) Projects() ProjectStore {
	return r.projects
}

func (r *bboltRepository) AppState() AppStateStore {
	return r.appState
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketAppState, bucketProjects, bucketWorktrees, bucketSessions} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

type bboltSessionStore struct {
	db       *bolt.DB
	projects ProjectStore
	mu       sync.Mutex
}

func (s *bboltSessionStore) ListAll(ctx context.Context) ([]*types.ProjectSessions, error) {
	sessions := make([]*types.Session, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var session types.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return err
			}
			sessions = append(sessions, types.CloneSession(&session))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return groupByProject(ctx, s.projects, sessions)
}

func (s *bboltSessionStore) Get(ctx context.Context, sessionID string) (*types.Session, bool, error) {
	var (
		out *types.Session
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(sessionID))
		if len(raw) == 0 {
			return nil
		}
		var session types.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return err
		}
		out = types.CloneSession(&session)
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *bboltSessionStore) Upsert(ctx context.Context, session *types.Session) (*types.Session, error) {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return nil, errors.New("session requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := normalizeSession(session)
	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return errors.New("sessions bucket missing")
		}
		key := []byte(normalized.ID)
		if current := b.Get(key); len(current) > 0 {
			var existing types.Session
			if err := json.Unmarshal(current, &existing); err != nil {
				return err
			}
			normalized.CreatedAt = existing.CreatedAt
		}
		raw, err := json.Marshal(normalized)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	}); err != nil {
		return nil, err
	}
	return types.CloneSession(normalized), nil
}

func (s *bboltSessionStore) UpsertState(ctx context.Context, sessionID string, state types.SessionState) error {
	return s.mutate(sessionID, func(session *types.Session) {
		session.State = types.CloneSessionState(state)
	})
}

func (s *bboltSessionStore) MarkOpened(ctx context.Context, sessionID string, openedAt int64) error {
	return s.mutate(sessionID, func(session *types.Session) {
		session.LastOpenedAt = &openedAt
	})
}

func (s *bboltSessionStore) Archive(ctx context.Context, sessionID string, archivedAt int64) error {
	return s.mutate(sessionID, func(session *types.Session) {
		session.ArchivedAt = &archivedAt
	})
}

func (s *bboltSessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return errors.New("sessions bucket missing")
		}
		key := []byte(sessionID)
		if b.Get(key) == nil {
			return ErrSessionNotFound
		}
		return b.Delete(key)
	})
}

func (s *bboltSessionStore) mutate(sessionID string, apply func(*types.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b == nil {
			return errors.New("sessions bucket missing")
		}
		key := []byte(sessionID)
		raw := b.Get(key)
		if len(raw) == 0 {
			return ErrSessionNotFound
		}
		var session types.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return err
		}
		apply(&session)
		next, err := json.Marshal(&session)
		if err != nil {
			return err
		}
		return b.Put(key, next)
	})
}

type bboltProjectStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltProjectStore) ListProjects(ctx context.Context) ([]types.Project, error) {
	out := make([]types.Project, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var project types.Project
			if err := json.Unmarshal(v, &project); err != nil {
				return err
			}
			out = append(out, project)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *bboltProjectStore) UpsertProject(ctx context.Context, project types.Project) (types.Project, error) {
	if strings.TrimSpace(project.ID) == "" {
		return types.Project{}, errors.New("project requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(project)
	if err != nil {
		return types.Project{}, err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		if b == nil {
			return errors.New("projects bucket missing")
		}
		return b.Put([]byte(project.ID), raw)
	}); err != nil {
		return types.Project{}, err
	}
	return project, nil
}

func (s *bboltProjectStore) ListWorktrees(ctx context.Context, projectID string) ([]types.Worktree, error) {
	out := make([]types.Worktree, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorktrees)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var worktree types.Worktree
			if err := json.Unmarshal(v, &worktree); err != nil {
				return err
			}
			if worktree.ProjectID == projectID {
				out = append(out, worktree)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bboltProjectStore) UpsertWorktree(ctx context.Context, worktree types.Worktree) (types.Worktree, error) {
	if strings.TrimSpace(worktree.ID) == "" || strings.TrimSpace(worktree.ProjectID) == "" {
		return types.Worktree{}, errors.New("worktree requires id and project_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Update(func(tx *bolt.Tx) error {
		projects := tx.Bucket(bucketProjects)
		worktrees := tx.Bucket(bucketWorktrees)
		if projects == nil || worktrees == nil {
			return errors.New("project buckets missing")
		}
		if projects.Get([]byte(worktree.ProjectID)) == nil {
			return ErrProjectNotFound
		}
		raw, err := json.Marshal(worktree)
		if err != nil {
			return err
		}
		return worktrees.Put([]byte(worktree.ID), raw)
	}); err != nil {
		return types.Worktree{}, err
	}
	return worktree, nil
}

type bboltAppStateStore struct {
	db *bolt.DB
}

func (s *bboltAppStateStore) Load(ctx context.Context) (*types.AppState, error) {
	state := &types.AppState{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAppState)
		if b == nil {
			return nil
		}
		raw := b.Get(keyAppState)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *bboltAppStateStore) Save(ctx context.Context, state *types.AppState) error {
	if state == nil {
		return errors.New("state is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAppState)
		if b == nil {
			return errors.New("app state bucket missing")
		}
		return b.Put(keyAppState, raw)
	})
}
