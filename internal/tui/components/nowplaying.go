package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/timmfy/ai-radio/internal/radio"
	"github.com/timmfy/ai-radio/internal/tui/styles"
)

// NowPlaying displays the current track and station
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap radio.Snapshot, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !snap.State.HasTrack() {
		content = n.renderIdle(snap)
	} else {
		content = n.renderTrack(snap, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
		"",
		n.renderStation(snap),
	))
}

func (n *NowPlaying) renderIdle(snap radio.Snapshot) string {
	switch {
	case !snap.Pending.IsEmpty():
		return styles.Muted.Render("Waiting to play " + snap.Pending.String())
	case snap.Prompt == "":
		return styles.Muted.Render("Type a prompt to start a station")
	default:
		return styles.Muted.Render("No track playing")
	}
}

func (n *NowPlaying) renderTrack(snap radio.Snapshot, width int) string {
	state := snap.State
	track := state.Track

	icon := styles.StatusIcon(state.IsPlaying)
	title := styles.Title.Width(width - 4).Render(track.Title)
	artist := styles.Subtitle.Render(track.Artist)
	album := styles.Dim.Render(track.Album)

	progressWidth := width - 14 // Account for times on either side
	if progressWidth < 10 {
		progressWidth = 10
	}
	progress := fmt.Sprintf("%s %s %s",
		FormatDuration(state.Position),
		styles.ProgressBar(state.ProgressPercent(), progressWidth),
		FormatDuration(state.Duration))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
	)
}

func (n *NowPlaying) renderStation(snap radio.Snapshot) string {
	device := styles.Paused.Render("○ waiting for device")
	if snap.DeviceReady() {
		device = styles.Playing.Render("● " + snap.DeviceID)
	}

	station := ""
	if snap.Prompt != "" {
		station = styles.Muted.Render(fmt.Sprintf("📻 %q", snap.Prompt))
	}
	return lipgloss.JoinVertical(lipgloss.Left, station, styles.Dim.Render(device))
}

// FormatDuration formats d as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
