package unread

import (
	"sort"
	"strings"

	"cockpit/internal/types"
)

// Item is one unread session plus the context the panel needs to render it.
type Item struct {
	Session *types.Session
	Project types.Project
	Status  Status
}

type Group struct {
	Project types.Project
	Items   []Item
}

// Digest is the panel's view of the world: unread sessions grouped by
// project, the selected project's group first, the rest alphabetical.
// Within a group items stay in updated_at descending order.
type Digest struct {
	Groups []Group
}

func (d Digest) Empty() bool {
	return len(d.Groups) == 0
}

// Flatten returns items in group-major order, matching the on-screen order
// the keyboard walks through.
func (d Digest) Flatten() []Item {
	out := []Item{}
	for _, group := range d.Groups {
		out = append(out, group.Items...)
	}
	return out
}

// BuildDigest filters the batch down to unread sessions and arranges them
// for display.
func BuildDigest(batch []*types.ProjectSessions, selectedProjectID string) Digest {
	items := []Item{}
	for _, entry := range batch {
		if entry == nil {
			continue
		}
		for _, session := range entry.Sessions {
			classified := Classify(session)
			if !classified.Unread {
				continue
			}
			items = append(items, Item{
				Session: session,
				Project: entry.Project,
				Status:  *classified.Status,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Session.UpdatedAt > items[j].Session.UpdatedAt
	})

	groupIndex := map[string]int{}
	groups := []Group{}
	for _, item := range items {
		idx, ok := groupIndex[item.Project.ID]
		if !ok {
			idx = len(groups)
			groupIndex[item.Project.ID] = idx
			groups = append(groups, Group{Project: item.Project})
		}
		groups[idx].Items = append(groups[idx].Items, item)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		iSelected := groups[i].Project.ID == selectedProjectID
		jSelected := groups[j].Project.ID == selectedProjectID
		if iSelected != jSelected {
			return iSelected
		}
		return strings.ToLower(groups[i].Project.Name) < strings.ToLower(groups[j].Project.Name)
	})
	return Digest{Groups: groups}
}

// Navigator walks the digest's flat order with a single focus index. It is
// rebuilt from a fresh digest whenever the unread set changes; the focus
// stays at the same position when possible and otherwise clamps to the end.
type Navigator struct {
	items []Item
	focus int
}

func NewNavigator(digest Digest) *Navigator {
	return &Navigator{items: digest.Flatten()}
}

// Reset swaps in a new digest, clamping focus so it never lands out of
// bounds after items disappear.
func (n *Navigator) Reset(digest Digest) {
	n.items = digest.Flatten()
	if n.focus >= len(n.items) {
		n.focus = len(n.items) - 1
	}
	if n.focus < 0 {
		n.focus = 0
	}
}

func (n *Navigator) Len() int {
	return len(n.items)
}

func (n *Navigator) Next() {
	if n.focus < len(n.items)-1 {
		n.focus++
	}
}

func (n *Navigator) Prev() {
	if n.focus > 0 {
		n.focus--
	}
}

// Index returns the focus position in flat order.
func (n *Navigator) Index() int {
	return n.focus
}

// Current returns the focused item, or false when the digest is empty.
func (n *Navigator) Current() (Item, bool) {
	if len(n.items) == 0 {
		return Item{}, false
	}
	return n.items[n.focus], true
}
