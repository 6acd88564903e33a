// Package device turns Spotify Web API polling into the asynchronous
// ready and state-changed events the radio engine consumes.
package device

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
)

// driftTolerance is how far a reported position may stray from the
// predicted one before it is reported as a change.
const driftTolerance = 2 * time.Second

// Source is the subset of the Spotify player the watcher polls.
type Source interface {
	GetDevices(ctx context.Context) ([]core.Device, error)
	State(ctx context.Context) (*core.DeviceState, error)
}

// Watcher polls a Source and emits device events.
type Watcher struct {
	source     Source
	deviceName string
	interval   time.Duration
	events     chan core.DeviceEvent
	done       chan struct{}
	log        zerolog.Logger
}

// NewWatcher creates a watcher that waits for a device called deviceName.
// An empty name accepts the active device, or else the first one listed.
func NewWatcher(source Source, deviceName string, interval time.Duration, log zerolog.Logger) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:     source,
		deviceName: deviceName,
		interval:   interval,
		events:     make(chan core.DeviceEvent, 16),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "device").Logger(),
	}
}

// Events returns the channel of device events. It is closed when Start returns.
func (w *Watcher) Events() <-chan core.DeviceEvent {
	return w.events
}

// Start polls until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var (
		ready    bool
		prev     *core.DeviceState
		prevAt   time.Time
		reported bool
	)

	poll := func() bool {
		if !ready {
			id, err := w.findDevice(ctx)
			if err != nil {
				w.log.Debug().Err(err).Msg("device lookup failed")
				return true
			}
			if id == "" {
				return true
			}
			ready = true
			w.log.Info().Str("device_id", id).Msg("device found")
			select {
			case w.events <- core.DeviceReady{DeviceID: id}:
			case <-ctx.Done():
				return false
			}
		}

		curr, err := w.source.State(ctx)
		if err != nil {
			w.log.Debug().Err(err).Msg("state poll failed")
			return true
		}
		now := time.Now()
		if !reported || changed(prev, curr, now.Sub(prevAt)) {
			w.send(core.StateChanged{State: curr})
			reported = true
		}
		prev, prevAt = curr, now
		return true
	}

	if !poll() {
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			if !poll() {
				return ctx.Err()
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

func (w *Watcher) send(ev core.DeviceEvent) {
	select {
	case w.events <- ev:
	default:
		// Drop event if channel is full; the next poll reports again.
		w.log.Warn().Msg("device event dropped")
	}
}

func (w *Watcher) findDevice(ctx context.Context) (string, error) {
	devices, err := w.source.GetDevices(ctx)
	if err != nil {
		return "", err
	}
	return pickDevice(devices, w.deviceName), nil
}

// pickDevice chooses the device to play on.
func pickDevice(devices []core.Device, name string) string {
	if name != "" {
		for _, d := range devices {
			if strings.EqualFold(d.Name, name) {
				return d.ID
			}
		}
		return ""
	}
	for _, d := range devices {
		if d.IsActive {
			return d.ID
		}
	}
	if len(devices) > 0 {
		return devices[0].ID
	}
	return ""
}

// changed reports whether curr differs from what prev predicts after elapsed.
func changed(prev, curr *core.DeviceState, elapsed time.Duration) bool {
	if prev == nil || curr == nil {
		return prev != curr
	}
	if prev.Paused != curr.Paused || prev.TrackURI != curr.TrackURI || prev.Duration != curr.Duration {
		return true
	}
	expected := prev.Position
	if !prev.Paused {
		expected += elapsed
	}
	drift := curr.Position - expected
	if drift < 0 {
		drift = -drift
	}
	return drift > driftTolerance
}
