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

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrWorktreeNotFound = errors.New("worktree not found")
)

const projectSchemaVersion = 1

type ProjectStore interface {
	ListProjects(ctx context.Context) ([]types.Project, error)
	UpsertProject(ctx context.Context, project types.Project) (types.Project, error)
	ListWorktrees(ctx context.Context, projectID string) ([]types.Worktree, error)
	UpsertWorktree(ctx context.Context, worktree types.Worktree) (types.Worktree, error)
}

type FileProjectStore struct {
	path string
	mu   sync.Mutex
}

type projectFile struct {
	Version   int              `json:"version"`
	Projects  []types.Project  `json:"projects"`
	Worktrees []types.Worktree `json:"worktrees"`
}

func NewFileProjectStore(path string) *FileProjectStore {
	return &FileProjectStore{path: path}
}

func (s *FileProjectStore) ListProjects(ctx context.Context) ([]types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadOrEmpty()
	if err != nil {
		return nil, err
	}
	out := append([]types.Project(nil), file.Projects...)
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *FileProjectStore) UpsertProject(ctx context.Context, project types.Project) (types.Project, error) {
	if strings.TrimSpace(project.ID) == "" {
		return types.Project{}, errors.New("project requires an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadOrEmpty()
	if err != nil {
		return types.Project{}, err
	}
	updated := false
	for i, existing := range file.Projects {
		if existing.ID == project.ID {
			file.Projects[i] = project
			updated = true
			break
		}
	}
	if !updated {
		file.Projects = append(file.Projects, project)
	}
	if err := s.save(file); err != nil {
		return types.Project{}, err
	}
	return project, nil
}

func (s *FileProjectStore) ListWorktrees(ctx context.Context, projectID string) ([]types.Worktree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadOrEmpty()
	if err != nil {
		return nil, err
	}
	out := make([]types.Worktree, 0)
	for _, worktree := range file.Worktrees {
		if worktree.ProjectID == projectID {
			out = append(out, worktree)
		}
	}
	return out, nil
}

func (s *FileProjectStore) UpsertWorktree(ctx context.Context, worktree types.Worktree) (types.Worktree, error) {
	if strings.TrimSpace(worktree.ID) == "" || strings.TrimSpace(worktree.ProjectID) == "" {
		return types.Worktree{}, errors.New("worktree requires id and project_id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadOrEmpty()
	if err != nil {
		return types.Worktree{}, err
	}
	found := false
	for _, project := range file.Projects {
		if project.ID == worktree.ProjectID {
			found = true
			break
		}
	}
	if !found {
		return types.Worktree{}, ErrProjectNotFound
	}
	updated := false
	for i, existing := range file.Worktrees {
		if existing.ID == worktree.ID {
			file.Worktrees[i] = worktree
			updated = true
			break
		}
	}
	if !updated {
		file.Worktrees = append(file.Worktrees, worktree)
	}
	if err := s.save(file); err != nil {
		return types.Worktree{}, err
	}
	return worktree, nil
}

func (s *FileProjectStore) loadOrEmpty() (*projectFile, error) {
	file := &projectFile{Version: projectSchemaVersion}
	if err := decodeJSONFile(s.path, file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &projectFile{Version: projectSchemaVersion}, nil
		}
		return nil, err
	}
	return file, nil
}

func (s *FileProjectStore) save(file *projectFile) error {
	file.Version = projectSchemaVersion
	return replaceJSONFile(s.path, file)
}
