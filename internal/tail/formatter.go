package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if c := e.Current; c != nil {
		if c.State.Track != nil {
			data.Title = c.State.Track.Title
			data.Artist = c.State.Track.Artist
			data.Album = c.State.Track.Album
		}
		data.Prompt = c.Prompt
		data.Device = c.DeviceID
		data.Backlog = c.Backlog.Len()
		data.Notice = c.Notice
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Artist    string
	Album     string
	Prompt    string
	Device    string
	Backlog   int
	Notice    string
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	c := e.Current
	switch e.Type {
	case EventTrackChange:
		if c != nil && c.State.Track != nil {
			return fmt.Sprintf("Now playing: %s - %s",
				c.State.Track.Artist,
				c.State.Track.Title)
		}
		return "Track changed"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventSeek:
		if c != nil {
			return fmt.Sprintf("Seeked to %s", clock(c.State.Position))
		}
		return "Seeked"

	case EventDeviceReady:
		if c != nil {
			return fmt.Sprintf("Device ready: %s", c.DeviceID)
		}
		return "Device ready"

	case EventPrompt:
		if c != nil {
			return fmt.Sprintf("Station: %q (%d songs)", c.Prompt, c.Backlog.Len())
		}
		return "New station"

	case EventReplenish:
		if c != nil && e.Previous != nil {
			return fmt.Sprintf("Queued %d more songs", c.Backlog.Len()-e.Previous.Backlog.Len())
		}
		return "Queue replenished"

	case EventNotice:
		if c != nil {
			return c.Notice
		}
		return "Notice"

	default:
		return "Unknown event"
	}
}

func clock(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventSeek:
		return "⏩"
	case EventDeviceReady:
		return "📱"
	case EventPrompt:
		return "📻"
	case EventReplenish:
		return "➕"
	case EventNotice:
		return "⚠️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventSeek:
		return "seek"
	case EventDeviceReady:
		return "device_ready"
	case EventPrompt:
		return "prompt"
	case EventReplenish:
		return "replenish"
	case EventNotice:
		return "notice"
	default:
		return "unknown"
	}
}
