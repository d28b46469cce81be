package types

type AppState struct {
	ActiveProjectID  string `json:"active_project_id"`
	ActiveWorktreeID string `json:"active_worktree_id"`
	ActiveSessionID  string `json:"active_session_id"`
}
