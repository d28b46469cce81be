package store

import (
	"errors"
	"strings"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

type Repository interface {
	Sessions() SessionStore
	Projects() ProjectStore
	AppState() AppStateStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	ProjectsPath string
	SessionsPath string
	AppStatePath string
	DBPath       string
}

type fileRepository struct {
	sessions SessionStore
	projects ProjectStore
	appState AppStateStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	projects := NewFileProjectStore(paths.ProjectsPath)
	return &fileRepository{
		sessions: NewFileSessionStore(paths.SessionsPath, projects),
		projects: projects,
		appState: NewFileAppStateStore(paths.AppStatePath),
	}
}

func (r *fileRepository) Sessions() SessionStore {
	return r.sessions
}

func (r *fileRepository) Projects() ProjectStore {
	return r.projects
}

func (r *fileRepository) AppState() AppStateStore {
	return r.appState
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	case RepositoryBackendFile:
		return NewFileRepository(paths), nil
	default:
		return nil, errors.New("unknown repository backend: " + backend)
	}
}
