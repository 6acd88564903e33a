package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/timmfy/ai-radio/internal/core"
	"github.com/timmfy/ai-radio/internal/tui/styles"
)

// Backlog displays the station's recommended songs
type Backlog struct {
	offset int
}

// NewBacklog creates a new Backlog component
func NewBacklog() *Backlog {
	return &Backlog{}
}

// ScrollDown scrolls the backlog down
func (b *Backlog) ScrollDown() {
	b.offset++
}

// ScrollUp scrolls the backlog up
func (b *Backlog) ScrollUp() {
	if b.offset > 0 {
		b.offset--
	}
}

// Render renders the backlog panel. current is the descriptor playing now.
func (b *Backlog) Render(backlog core.Backlog, current core.Descriptor, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Up Next (%d)", len(backlog.Upcoming())), focused)

	var content string
	if backlog.IsEmpty() {
		content = styles.Muted.Render("Backlog is empty")
	} else {
		content = b.renderBacklog(backlog, current, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (b *Backlog) renderBacklog(backlog core.Backlog, current core.Descriptor, width, maxLines int) string {
	entries := backlog.Entries

	if b.offset >= len(entries) {
		b.offset = 0
	}

	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := b.offset
	end := start + visibleCount
	if end > len(entries) {
		end = len(entries)
	}

	lines := make([]string, 0, end-start+1)

	// "XX. " (4) + marker (2)
	const overhead = 6

	for i := start; i < end; i++ {
		d := entries[i]
		num := fmt.Sprintf("%2d.", i+1)
		text := truncate(d.String(), width-overhead)

		played := i < len(backlog.Played) && backlog.Played[i]
		var line string
		switch {
		case d == current:
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s", num, text))
		case played:
			line = styles.Dim.Render(fmt.Sprintf("%s ✓ %s", num, text))
		default:
			line = fmt.Sprintf("%s   %s", styles.Dim.Render(num), text)
		}

		lines = append(lines, line)
	}

	if end < len(entries) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(entries)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
