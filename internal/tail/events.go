// Package tail derives a human-readable event stream from radio snapshots.
package tail

import (
	"time"

	"github.com/timmfy/ai-radio/internal/radio"
)

// EventType represents the type of radio event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventPause
	EventResume
	EventSeek
	EventDeviceReady
	EventPrompt
	EventReplenish
	EventNotice
)

// seekThreshold is the jump that counts as a seek rather than drift.
const seekThreshold = 3 * time.Second

// Event represents a change between two snapshots.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *radio.Snapshot
	Current   *radio.Snapshot
}

// Diff compares two snapshots and returns the events between them.
func Diff(prev, curr *radio.Snapshot) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First snapshot - report what is already known
	if prev == nil {
		if curr.DeviceReady() {
			add(EventDeviceReady)
		}
		if curr.State.HasTrack() {
			add(EventTrackChange)
		}
		return events
	}

	if !prev.DeviceReady() && curr.DeviceReady() {
		add(EventDeviceReady)
	}

	if curr.Prompt != prev.Prompt {
		add(EventPrompt)
	} else if curr.Backlog.Len() > prev.Backlog.Len() {
		add(EventReplenish)
	}

	if trackChanged(prev, curr) || len(curr.History) > len(prev.History) {
		add(EventTrackChange)
	} else {
		if prev.State.IsPlaying && !curr.State.IsPlaying {
			add(EventPause)
		} else if !prev.State.IsPlaying && curr.State.IsPlaying {
			add(EventResume)
		}
		if seeked(prev, curr) {
			add(EventSeek)
		}
	}

	if curr.Notice != "" && curr.Notice != prev.Notice {
		add(EventNotice)
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *radio.Snapshot) bool {
	if prev.State.Track == nil && curr.State.Track == nil {
		return false
	}
	if prev.State.Track == nil || curr.State.Track == nil {
		return true
	}
	return prev.State.Track.URI != curr.State.Track.URI
}

// seeked returns true if the position jumped by more than normal playback.
func seeked(prev, curr *radio.Snapshot) bool {
	delta := curr.State.Position - prev.State.Position
	return delta > seekThreshold || delta < -seekThreshold
}

func (t EventType) String() string {
	return eventTypeName(t)
}
