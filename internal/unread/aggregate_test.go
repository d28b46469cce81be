package unread

import (
	"testing"

	"cockpit/internal/types"
)

func unreadSession(id string, projectID string, updatedAt int64) *types.Session {
	return &types.Session{
		ID:            id,
		ProjectID:     projectID,
		UpdatedAt:     updatedAt,
		LastRunStatus: types.RunStatusCompleted,
	}
}

func batchFor(selected ...*types.ProjectSessions) []*types.ProjectSessions {
	return selected
}

func TestBuildDigestSelectedProjectFirst(t *testing.T) {
	batch := batchFor(
		&types.ProjectSessions{
			Project:  types.Project{ID: "p-alpha", Name: "alpha"},
			Sessions: []*types.Session{unreadSession("a1", "p-alpha", 100)},
		},
		&types.ProjectSessions{
			Project:  types.Project{ID: "p-mid", Name: "midway"},
			Sessions: []*types.Session{unreadSession("m1", "p-mid", 300)},
		},
		&types.ProjectSessions{
			Project:  types.Project{ID: "p-zeta", Name: "zeta"},
			Sessions: []*types.Session{unreadSession("z1", "p-zeta", 200)},
		},
	)

	digest := BuildDigest(batch, "p-zeta")
	if len(digest.Groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(digest.Groups))
	}
	wantOrder := []string{"p-zeta", "p-alpha", "p-mid"}
	for i, id := range wantOrder {
		if digest.Groups[i].Project.ID != id {
			t.Fatalf("group %d = %s, want %s", i, digest.Groups[i].Project.ID, id)
		}
	}
}

func TestBuildDigestFiltersReadAndSortsByRecency(t *testing.T) {
	read := unreadSession("read", "p1", 500)
	read.LastOpenedAt = ptr[int64](600)
	batch := batchFor(&types.ProjectSessions{
		Project: types.Project{ID: "p1", Name: "one"},
		Sessions: []*types.Session{
			unreadSession("old", "p1", 100),
			read,
			unreadSession("new", "p1", 900),
		},
	})

	digest := BuildDigest(batch, "")
	items := digest.Flatten()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Session.ID != "new" || items[1].Session.ID != "old" {
		t.Fatalf("wrong order: %s, %s", items[0].Session.ID, items[1].Session.ID)
	}
}

func TestBuildDigestEmptyWhenNothingUnread(t *testing.T) {
	batch := batchFor(&types.ProjectSessions{
		Project:  types.Project{ID: "p1", Name: "one"},
		Sessions: []*types.Session{{ID: "s1", ProjectID: "p1", UpdatedAt: 100}},
	})
	if digest := BuildDigest(batch, ""); !digest.Empty() {
		t.Fatalf("expected empty digest, got %d groups", len(digest.Groups))
	}
}

func TestNavigatorMovesAndClamps(t *testing.T) {
	batch := batchFor(&types.ProjectSessions{
		Project: types.Project{ID: "p1", Name: "one"},
		Sessions: []*types.Session{
			unreadSession("a", "p1", 300),
			unreadSession("b", "p1", 200),
			unreadSession("c", "p1", 100),
		},
	})
	nav := NewNavigator(BuildDigest(batch, ""))

	current, ok := nav.Current()
	if !ok || current.Session.ID != "a" {
		t.Fatalf("initial focus = %+v", current)
	}

	nav.Prev()
	if current, _ = nav.Current(); current.Session.ID != "a" {
		t.Fatal("Prev at start should stay put")
	}

	nav.Next()
	nav.Next()
	nav.Next()
	if current, _ = nav.Current(); current.Session.ID != "c" {
		t.Fatalf("Next past end should clamp, got %s", current.Session.ID)
	}
}

func TestNavigatorResetClampsFocusAfterRemoval(t *testing.T) {
	full := batchFor(&types.ProjectSessions{
		Project: types.Project{ID: "p1", Name: "one"},
		Sessions: []*types.Session{
			unreadSession("a", "p1", 300),
			unreadSession("b", "p1", 200),
			unreadSession("c", "p1", 100),
		},
	})
	nav := NewNavigator(BuildDigest(full, ""))
	nav.Next()
	nav.Next()

	shrunk := batchFor(&types.ProjectSessions{
		Project: types.Project{ID: "p1", Name: "one"},
		Sessions: []*types.Session{
			unreadSession("a", "p1", 300),
			unreadSession("b", "p1", 200),
		},
	})
	nav.Reset(BuildDigest(shrunk, ""))

	current, ok := nav.Current()
	if !ok || current.Session.ID != "b" {
		t.Fatalf("focus should clamp to last item, got %+v", current)
	}

	nav.Reset(BuildDigest(nil, ""))
	if _, ok := nav.Current(); ok {
		t.Fatal("empty digest should report no current item")
	}
}
