package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/timmfy/ai-radio/internal/core"
	"github.com/timmfy/ai-radio/internal/tui/styles"
)

// History displays tracks played this session, newest first
type History struct {
	offset int
	now    func() time.Time
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{now: time.Now}
}

// ScrollDown scrolls the history down
func (h *History) ScrollDown() {
	h.offset++
}

// ScrollUp scrolls the history up
func (h *History) ScrollUp() {
	if h.offset > 0 {
		h.offset--
	}
}

// Render renders the history panel. entries are in play order.
func (h *History) Render(entries []core.HistoryEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
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

func (h *History) renderHistory(entries []core.HistoryEntry, width, maxLines int) string {
	if h.offset >= len(entries) {
		h.offset = 0
	}

	lines := make([]string, 0, maxLines)
	now := h.now()

	for i := len(entries) - 1 - h.offset; i >= 0 && len(lines) < maxLines; i-- {
		entry := entries[i]
		track := entry.Track
		if track == nil {
			continue
		}

		ago := humanize.RelTime(entry.PlayedAt, now, "ago", "from now")
		if now.Sub(entry.PlayedAt) < time.Minute {
			ago = "now"
		}

		// icon + space (2), " — " (3), gap before time (1)
		available := width - 6 - len(ago)
		info := truncate(fmt.Sprintf("%s — %s", track.Title, track.Artist), available)
		padding := width - 2 - lipgloss.Width(info) - len(ago)
		if padding < 1 {
			padding = 1
		}

		line := fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render("✓"),
			info,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(ago))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
