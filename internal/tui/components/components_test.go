package components

import (
	"strings"
	"testing"
	"time"

	"github.com/timmfy/ai-radio/internal/core"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59 * time.Second, "0:59"},
		{61 * time.Second, "1:01"},
		{200 * time.Second, "3:20"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Hyperballad Björk", 10); got != "Hyperba..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Errorf("truncate = %q", got)
	}
}

func TestBacklogMarksPlayed(t *testing.T) {
	b := NewBacklog()
	backlog := core.Backlog{
		Entries: []core.Descriptor{"A x", "B y", "C z"},
		Played:  []bool{true, true, false},
	}
	out := b.Render(backlog, "B y", 60, 12, false)

	if !strings.Contains(out, "✓ A x") {
		t.Errorf("played entry not marked:\n%s", out)
	}
	if !strings.Contains(out, "▶ B y") {
		t.Errorf("current entry not marked:\n%s", out)
	}
	if !strings.Contains(out, "C z") {
		t.Errorf("upcoming entry missing:\n%s", out)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHistory()
	h.now = func() time.Time { return now }

	entries := []core.HistoryEntry{
		{Track: &core.Track{Title: "Older", Artist: "A"}, PlayedAt: now.Add(-10 * time.Minute)},
		{Track: &core.Track{Title: "Newer", Artist: "B"}, PlayedAt: now},
	}
	out := h.Render(entries, 60, 12, false)

	if strings.Index(out, "Newer") > strings.Index(out, "Older") {
		t.Errorf("newest entry should come first:\n%s", out)
	}
	if !strings.Contains(out, "10 minutes ago") {
		t.Errorf("relative time missing:\n%s", out)
	}
}
