package core

import "time"

// DeviceType indicates the kind of playback device.
type DeviceType string

const (
	DeviceTypeSpeaker  DeviceType = "speaker"
	DeviceTypeComputer DeviceType = "computer"
	DeviceTypePhone    DeviceType = "phone"
	DeviceTypeTV       DeviceType = "tv"
)

// Device represents a Spotify Connect playback device.
type Device struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     DeviceType `json:"type"`
	IsActive bool       `json:"is_active"`
}

// DeviceState is a state report pushed by the playback device.
type DeviceState struct {
	Paused   bool
	Position time.Duration
	Duration time.Duration
	TrackURI string
}

// DeviceEvent is delivered asynchronously by the playback device.
type DeviceEvent interface {
	deviceEvent()
}

// DeviceReady announces that the device can accept commands.
type DeviceReady struct {
	DeviceID string
}

// StateChanged carries an authoritative state report. State is nil when the
// device has nothing to report.
type StateChanged struct {
	State *DeviceState
}

func (DeviceReady) deviceEvent()  {}
func (StateChanged) deviceEvent() {}
