package core

import "time"

// Origin records which writer last set the playback position.
type Origin string

const (
	OriginPlay   Origin = "play"
	OriginTick   Origin = "tick"
	OriginDevice Origin = "device"
	OriginSeek   Origin = "seek"
)

// PlaybackState is the session's view of what the device is doing.
type PlaybackState struct {
	Track     *Track        `json:"track"`
	IsPlaying bool          `json:"is_playing"`
	Position  time.Duration `json:"position"`
	Duration  time.Duration `json:"duration"`
	Origin    Origin        `json:"origin"`
}

// HasTrack returns true if there is an active track.
func (s PlaybackState) HasTrack() bool {
	return s.Track != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s PlaybackState) ProgressPercent() float64 {
	if s.Duration == 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration) * 100
}

// Remaining returns the time left in the current track.
func (s PlaybackState) Remaining() time.Duration {
	if s.Position >= s.Duration {
		return 0
	}
	return s.Duration - s.Position
}
