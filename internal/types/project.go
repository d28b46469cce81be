package types

// Project is the top-level grouping a worktree belongs to. Owned by the
// persistence layer; the core only reads it.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

type Worktree struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
}

// ProjectSessions is one entry of the list-all batch: a project, its
// worktrees, and every session under them.
type ProjectSessions struct {
	Project   Project    `json:"project"`
	Worktrees []Worktree `json:"worktrees,omitempty"`
	Sessions  []*Session `json:"sessions"`
}
