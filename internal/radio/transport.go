package radio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
)

// Transport is the only component that sends commands to the device and the
// only writer of the played set.
type Transport struct {
	session  *Session
	resolver *Resolver
	player   core.Player
	log      zerolog.Logger
}

// NewTransport creates a transport for session.
func NewTransport(session *Session, resolver *Resolver, player core.Player, log zerolog.Logger) *Transport {
	return &Transport{session: session, resolver: resolver, player: player, log: log}
}

// SetDevice records the device id announced by the ready event. Later ids
// are ignored.
func (t *Transport) SetDevice(id string) bool {
	return t.session.setDevice(id)
}

// Play resolves d and starts it on the device. Empty, already played and
// unresolvable descriptors are no-ops. Without a device it returns
// ErrDeviceNotReady and leaves state untouched.
func (t *Transport) Play(ctx context.Context, d core.Descriptor) error {
	return t.play(ctx, d, false)
}

// Replay is Play without the played-set check.
func (t *Transport) Replay(ctx context.Context, d core.Descriptor) error {
	return t.play(ctx, d, true)
}

func (t *Transport) play(ctx context.Context, d core.Descriptor, replay bool) error {
	if d.IsEmpty() {
		return nil
	}
	if !replay && t.session.HasPlayed(d) {
		return nil
	}

	track, err := t.resolver.Resolve(ctx, d)
	if errors.Is(err, apperr.ErrTrackNotFound) {
		t.log.Info().Str("descriptor", d.String()).Msg("no catalog match, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	// The played set may have changed while the catalog call was in flight.
	deviceID, ok := t.session.claim(d, replay)
	if !ok {
		t.log.Debug().Str("descriptor", d.String()).Msg("play suppressed")
		return nil
	}
	defer t.session.release(d)

	if deviceID == "" {
		return apperr.ErrDeviceNotReady
	}

	if err := t.player.PlayURI(ctx, deviceID, track.URI); err != nil {
		return fmt.Errorf("play %q: %w", d, err)
	}

	t.session.startTrack(d, track)
	t.log.Info().
		Str("descriptor", d.String()).
		Str("uri", track.URI).
		Dur("duration", track.Duration).
		Bool("replay", replay).
		Msg("playing")
	return nil
}

// PauseOrResume pauses when playing and resumes when paused. It does
// nothing until a device is connected and a track has been started.
func (t *Transport) PauseOrResume(ctx context.Context) error {
	deviceID, playing, hasTrack := t.session.toggleTarget()
	if deviceID == "" || !hasTrack {
		return nil
	}

	if playing {
		if err := t.player.Pause(ctx, deviceID); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
	} else {
		if err := t.player.Resume(ctx, deviceID); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
	}

	t.session.setPlaying(!playing)
	return nil
}

// Seek moves to target, clamped to the current track. The position is
// updated before the device confirms.
func (t *Transport) Seek(ctx context.Context, target time.Duration) error {
	deviceID, pos := t.session.seekTo(target)
	if deviceID == "" {
		return apperr.ErrDeviceNotReady
	}
	if err := t.player.Seek(ctx, deviceID, pos); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}
