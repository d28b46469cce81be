package app

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/v2/list"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	runewidth "github.com/mattn/go-runewidth"

	"cockpit/internal/types"
	"cockpit/internal/unread"
)

const (
	panelTitleMax = 48
	unreadDot     = "●"
)

type panelItemKind int

const (
	panelHeader panelItemKind = iota
	panelSession
)

type panelItem struct {
	kind    panelItemKind
	project types.Project
	entry   unread.Item
	count   int
}

func (p *panelItem) Title() string {
	switch p.kind {
	case panelHeader:
		return p.project.Name
	default:
		return sessionTitle(p.entry.Session)
	}
}

func (p *panelItem) Description() string {
	if p.kind != panelSession {
		return ""
	}
	return p.entry.Status.Label
}

func (p *panelItem) FilterValue() string {
	return p.Title()
}

func (p *panelItem) sessionID() string {
	if p.kind != panelSession || p.entry.Session == nil {
		return ""
	}
	return p.entry.Session.ID
}

// buildPanelItems flattens the digest into list rows: one header per group
// followed by its sessions. The returned index slice maps each session row
// (in digest flat order) to its list position.
func buildPanelItems(digest unread.Digest) ([]list.Item, []int) {
	items := []list.Item{}
	sessionRows := []int{}
	for _, group := range digest.Groups {
		items = append(items, &panelItem{
			kind:    panelHeader,
			project: group.Project,
			count:   len(group.Items),
		})
		for _, entry := range group.Items {
			sessionRows = append(sessionRows, len(items))
			items = append(items, &panelItem{kind: panelSession, entry: entry})
		}
	}
	return items, sessionRows
}

type panelDelegate struct {
	selectedSessionID string
	now               func() time.Time
}

func (d *panelDelegate) Height() int {
	return 1
}

func (d *panelDelegate) Spacing() int {
	return 0
}

func (d *panelDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d *panelDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(*panelItem)
	if !ok {
		return
	}
	maxWidth := m.Width()
	switch entry.kind {
	case panelHeader:
		label := fmt.Sprintf("%s (%d)", entry.project.Name, entry.count)
		fmt.Fprint(w, projectStyle.Render(truncateToWidth(label, maxWidth)))
	case panelSession:
		d.renderSession(w, entry, maxWidth)
	}
}

func (d *panelDelegate) renderSession(w io.Writer, entry *panelItem, maxWidth int) {
	selected := entry.sessionID() != "" && entry.sessionID() == d.selectedSessionID
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}

	prefix := " " + unreadDot + " "
	badge := statusBadge(entry.entry.Status)
	suffix := ""
	if age := types.RelativeAge(entry.entry.Session.UpdatedAt, now); age != "" {
		suffix = " • " + age
	}

	title := sessionTitle(entry.entry.Session)
	available := maxWidth - ansi.StringWidth(prefix) - runewidth.StringWidth(badge) - 1 - ansi.StringWidth(suffix)
	if available <= 0 {
		title = ""
	} else {
		title = truncateToWidth(title, available)
	}

	lineStyle := sessionStyle
	if selected {
		lineStyle = selectedStyle
	}
	badgeStyle := severityStyle(entry.entry.Status.Severity)
	if selected {
		badgeStyle = selectedStyle
	}
	ageRender := ageStyle
	if selected {
		ageRender = selectedStyle
	}

	rendered := badgeStyle.Render(prefix) +
		badgeStyle.Render(badge) +
		lineStyle.Render(" "+title) +
		ageRender.Render(suffix)
	fmt.Fprint(w, rendered)
}

// statusBadge pads labels to one width so titles line up down the column.
func statusBadge(status unread.Status) string {
	label := status.Label
	const badgeWidth = 14
	if pad := badgeWidth - runewidth.StringWidth(label); pad > 0 {
		label += strings.Repeat(" ", pad)
	}
	return "[" + label + "]"
}

func severityStyle(severity unread.Severity) lipgloss.Style {
	switch severity {
	case unread.SeverityError:
		return statusErrorStyle
	case unread.SeverityWarn:
		return statusWarnStyle
	default:
		return statusInfoStyle
	}
}

func sessionTitle(session *types.Session) string {
	if session == nil {
		return ""
	}
	if title := strings.TrimSpace(session.Title); title != "" {
		return truncateText(cleanTitle(title), panelTitleMax)
	}
	return session.ID
}

func cleanTitle(input string) string {
	if input == "" {
		return ""
	}
	var builder strings.Builder
	builder.Grow(len(input))
	lastSpace := false
	for _, r := range input {
		if unicode.IsSpace(r) {
			if builder.Len() == 0 || lastSpace {
				continue
			}
			builder.WriteByte(' ')
			lastSpace = true
			continue
		}
		if r < 32 || r == 127 {
			continue
		}
		builder.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(builder.String())
}

func truncateText(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}
	return strings.TrimSpace(text[:maxLen]) + "…"
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if ansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return ansi.Cut(text, 0, width-1) + "…"
}
