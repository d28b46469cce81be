package app

import (
	"testing"

	runewidth "github.com/mattn/go-runewidth"

	"cockpit/internal/types"
	"cockpit/internal/unread"
)

func digestOf(t *testing.T, batch ...*types.ProjectSessions) unread.Digest {
	t.Helper()
	return unread.BuildDigest(batch, "")
}

func unreadSession(id, projectID string, updatedAt int64) *types.Session {
	return &types.Session{
		ID:            id,
		ProjectID:     projectID,
		UpdatedAt:     updatedAt,
		LastRunStatus: types.RunStatusCompleted,
	}
}

func TestBuildPanelItemsInterleavesHeaders(t *testing.T) {
	digest := digestOf(t,
		&types.ProjectSessions{
			Project: types.Project{ID: "p1", Name: "alpha"},
			Sessions: []*types.Session{
				unreadSession("a1", "p1", 300),
				unreadSession("a2", "p1", 200),
			},
		},
		&types.ProjectSessions{
			Project:  types.Project{ID: "p2", Name: "beta"},
			Sessions: []*types.Session{unreadSession("b1", "p2", 100)},
		},
	)

	items, sessionRows := buildPanelItems(digest)
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
	header, ok := items[0].(*panelItem)
	if !ok || header.kind != panelHeader || header.project.ID != "p1" || header.count != 2 {
		t.Fatalf("unexpected first header: %+v", header)
	}
	wantRows := []int{1, 2, 4}
	if len(sessionRows) != len(wantRows) {
		t.Fatalf("sessionRows = %v, want %v", sessionRows, wantRows)
	}
	for i := range wantRows {
		if sessionRows[i] != wantRows[i] {
			t.Fatalf("sessionRows = %v, want %v", sessionRows, wantRows)
		}
	}
	row := items[4].(*panelItem)
	if row.kind != panelSession || row.sessionID() != "b1" {
		t.Fatalf("unexpected last row: %+v", row)
	}
}

func TestStatusBadgesAlign(t *testing.T) {
	badges := []unread.Status{
		{Kind: unread.KindNeedsApproval, Label: "Needs approval"},
		{Kind: unread.KindCrashed, Label: "Crashed"},
		{Kind: unread.KindReviewing, Label: "Reviewing"},
	}
	width := runewidth.StringWidth(statusBadge(badges[0]))
	for _, status := range badges[1:] {
		if got := runewidth.StringWidth(statusBadge(status)); got != width {
			t.Fatalf("badge %q width %d, want %d", status.Label, got, width)
		}
	}
}

func TestSessionTitleFallsBackToID(t *testing.T) {
	session := &types.Session{ID: "sess-1", Title: "  "}
	if got := sessionTitle(session); got != "sess-1" {
		t.Fatalf("got %q", got)
	}
	session.Title = "fix\tthe   build\n"
	if got := sessionTitle(session); got != "fix the build" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateToWidth(t *testing.T) {
	if got := truncateToWidth("hello", 10); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if got := truncateToWidth("hello world", 6); got != "hello…" {
		t.Fatalf("got %q", got)
	}
	if got := truncateToWidth("hello", 1); got != "…" {
		t.Fatalf("got %q", got)
	}
}
