package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cockpit/internal/types"
)

func openTestRepository(t *testing.T, backend string) Repository {
	t.Helper()
	dir := t.TempDir()
	repo, err := OpenRepository(RepositoryPaths{
		ProjectsPath: filepath.Join(dir, "projects.json"),
		SessionsPath: filepath.Join(dir, "sessions.json"),
		AppStatePath: filepath.Join(dir, "state.json"),
		DBPath:       filepath.Join(dir, "cockpit.db"),
	}, backend)
	if err != nil {
		t.Fatalf("open %s repository: %v", backend, err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func eachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Helper()
	for _, backend := range []string{RepositoryBackendFile, RepositoryBackendBbolt} {
		t.Run(backend, func(t *testing.T) {
			fn(t, openTestRepository(t, backend))
		})
	}
}

func TestSessionRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		sessions := repo.Sessions()

		servers := []string{"github"}
		saved, err := sessions.Upsert(ctx, &types.Session{
			ID:            "s1",
			ProjectID:     "p1",
			Title:         "fix flaky test",
			UpdatedAt:     2000,
			LastRunStatus: types.RunStatusCompleted,
			State: types.SessionState{
				AnsweredQuestions: []string{"q1"},
				EnabledMCPServers: &servers,
				IsReviewing:       true,
			},
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if saved.CreatedAt == 0 {
			t.Fatal("upsert should default created_at")
		}

		got, ok, err := sessions.Get(ctx, "s1")
		if err != nil || !ok {
			t.Fatalf("get: ok=%v err=%v", ok, err)
		}
		if got.Title != "fix flaky test" || !got.State.IsReviewing {
			t.Fatalf("unexpected record: %+v", got)
		}
		if got.State.EnabledMCPServers == nil || (*got.State.EnabledMCPServers)[0] != "github" {
			t.Fatalf("mcp servers lost: %v", got.State.EnabledMCPServers)
		}

		got.State.AnsweredQuestions[0] = "mutated"
		again, _, err := sessions.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("get again: %v", err)
		}
		if again.State.AnsweredQuestions[0] != "q1" {
			t.Fatal("Get returned shared state")
		}
	})
}

func TestUpsertStateDoesNotTouchUpdatedAt(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		sessions := repo.Sessions()
		if _, err := sessions.Upsert(ctx, &types.Session{ID: "s1", UpdatedAt: 2000}); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		if err := sessions.UpsertState(ctx, "s1", types.SessionState{WaitingForInput: true}); err != nil {
			t.Fatalf("upsert state: %v", err)
		}
		got, _, err := sessions.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.State.WaitingForInput {
			t.Fatal("state replacement lost")
		}
		if got.UpdatedAt != 2000 {
			t.Fatalf("state write changed updated_at to %d", got.UpdatedAt)
		}

		if err := sessions.UpsertState(ctx, "missing", types.SessionState{}); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestMarkOpenedAndArchive(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		sessions := repo.Sessions()
		if _, err := sessions.Upsert(ctx, &types.Session{ID: "s1"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		if err := sessions.MarkOpened(ctx, "s1", 3000); err != nil {
			t.Fatalf("mark opened: %v", err)
		}
		if err := sessions.Archive(ctx, "s1", 4000); err != nil {
			t.Fatalf("archive: %v", err)
		}

		got, _, err := sessions.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.LastOpenedAt == nil || *got.LastOpenedAt != 3000 {
			t.Fatalf("last_opened_at = %v", got.LastOpenedAt)
		}
		if !got.Archived() || *got.ArchivedAt != 4000 {
			t.Fatalf("archived_at = %v", got.ArchivedAt)
		}

		if err := sessions.MarkOpened(ctx, "missing", 1); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestDeleteSession(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		sessions := repo.Sessions()
		if _, err := sessions.Upsert(ctx, &types.Session{ID: "s1"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if err := sessions.Delete(ctx, "s1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, ok, err := sessions.Get(ctx, "s1"); err != nil || ok {
			t.Fatalf("session survived delete: ok=%v err=%v", ok, err)
		}
		if err := sessions.Delete(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestListAllGroupsByProject(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		if _, err := repo.Projects().UpsertProject(ctx, types.Project{ID: "p1", Name: "one", Path: "/tmp/one"}); err != nil {
			t.Fatalf("upsert project: %v", err)
		}
		if _, err := repo.Projects().UpsertWorktree(ctx, types.Worktree{ID: "w1", ProjectID: "p1", Name: "main"}); err != nil {
			t.Fatalf("upsert worktree: %v", err)
		}
		sessions := repo.Sessions()
		if _, err := sessions.Upsert(ctx, &types.Session{ID: "s1", ProjectID: "p1", WorktreeID: "w1"}); err != nil {
			t.Fatalf("upsert session: %v", err)
		}
		if _, err := sessions.Upsert(ctx, &types.Session{ID: "orphan-old", ProjectID: "gone", UpdatedAt: 100}); err != nil {
			t.Fatalf("upsert orphan: %v", err)
		}
		if _, err := sessions.Upsert(ctx, &types.Session{ID: "orphan-new", ProjectID: "gone", UpdatedAt: 200}); err != nil {
			t.Fatalf("upsert orphan: %v", err)
		}

		batch, err := sessions.ListAll(ctx)
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if len(batch) != 2 {
			t.Fatalf("got %d groups, want 2", len(batch))
		}
		if batch[0].Project.ID != "p1" || len(batch[0].Sessions) != 1 || len(batch[0].Worktrees) != 1 {
			t.Fatalf("unexpected first group: %+v", batch[0])
		}
		last := batch[1]
		if last.Project.ID != UnassignedProjectID || len(last.Sessions) != 2 {
			t.Fatalf("unexpected unassigned group: %+v", last)
		}
		if last.Sessions[0].ID != "orphan-new" {
			t.Fatalf("unassigned sessions not sorted by recency: %s first", last.Sessions[0].ID)
		}
	})
}

func TestWorktreeRequiresProject(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		_, err := repo.Projects().UpsertWorktree(ctx, types.Worktree{ID: "w1", ProjectID: "missing"})
		if !errors.Is(err, ErrProjectNotFound) {
			t.Fatalf("expected ErrProjectNotFound, got %v", err)
		}
	})
}

func TestAppStateRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		state, err := repo.AppState().Load(ctx)
		if err != nil {
			t.Fatalf("load empty: %v", err)
		}
		if state.ActiveSessionID != "" {
			t.Fatalf("fresh state not empty: %+v", state)
		}

		if err := repo.AppState().Save(ctx, &types.AppState{
			ActiveProjectID: "p1",
			ActiveSessionID: "s1",
		}); err != nil {
			t.Fatalf("save: %v", err)
		}
		state, err = repo.AppState().Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if state.ActiveProjectID != "p1" || state.ActiveSessionID != "s1" {
			t.Fatalf("unexpected state: %+v", state)
		}
	})
}
