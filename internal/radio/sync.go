package radio

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
)

// endSlack is how close to the end a track must be for a pause report to
// count as the track finishing.
const endSlack = 3 * time.Second

// SyncConfig configures a SyncLoop.
type SyncConfig struct {
	Watermark      int
	TickInterval   time.Duration
	CommandTimeout time.Duration
	AutoAdvance    bool
}

// SyncLoop reconciles predicted playback position with device reports and
// keeps the backlog above the low watermark.
type SyncLoop struct {
	session   *Session
	transport *Transport
	queue     *Queue
	cfg       SyncConfig
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewSyncLoop creates a sync loop.
func NewSyncLoop(session *Session, transport *Transport, queue *Queue, cfg SyncConfig, log zerolog.Logger) *SyncLoop {
	if cfg.Watermark <= 0 {
		cfg.Watermark = 3
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	return &SyncLoop{session: session, transport: transport, queue: queue, cfg: cfg, log: log}
}

// Run processes ticks, device events and backlog changes until ctx is done.
// It waits for background work it started before returning.
func (l *SyncLoop) Run(ctx context.Context, events <-chan core.DeviceEvent) error {
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()
	defer l.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.session.tick()
		case ev, ok := <-events:
			if !ok {
				l.log.Debug().Msg("device event stream closed")
				events = nil
				continue
			}
			l.HandleEvent(ctx, ev)
		case <-l.session.BacklogChanges():
			l.checkWatermark(ctx)
		}
	}
}

// HandleEvent applies a single device event.
func (l *SyncLoop) HandleEvent(ctx context.Context, ev core.DeviceEvent) {
	switch e := ev.(type) {
	case core.DeviceReady:
		if !l.transport.SetDevice(e.DeviceID) {
			return
		}
		l.log.Info().Str("device_id", e.DeviceID).Msg("device ready")
		l.spawn(ctx, "retry pending play", l.queue.RetryPending)

	case core.StateChanged:
		if e.State == nil {
			return
		}
		prev := l.session.applyDeviceState(e.State)
		if l.cfg.AutoAdvance && trackFinished(prev, e.State) {
			l.log.Info().Msg("track finished, advancing")
			l.spawn(ctx, "advance", l.queue.Skip)
		}
	}
}

func (l *SyncLoop) checkWatermark(ctx context.Context) {
	if !l.session.needsReplenish(l.cfg.Watermark) {
		return
	}
	l.spawn(ctx, "replenish", l.queue.Replenish)
}

// spawn runs fn in the background with the command timeout. Failures become
// a notice on the session.
func (l *SyncLoop) spawn(ctx context.Context, what string, fn func(context.Context) error) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		cctx, cancel := context.WithTimeout(ctx, l.cfg.CommandTimeout)
		defer cancel()
		if err := fn(cctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			l.log.Warn().Err(err).Str("task", what).Msg("background task failed")
			l.session.setNotice(noticeFor(err))
		}
	}()
}

// trackFinished reports whether a pause report marks the natural end of the
// track that was playing.
func trackFinished(prev core.PlaybackState, st *core.DeviceState) bool {
	if !prev.IsPlaying || prev.Track == nil || !st.Paused {
		return false
	}
	if st.TrackURI != "" && st.TrackURI != prev.Track.URI {
		return false
	}
	atEnd := st.Position == 0 || st.Position >= st.Duration-endSlack
	return atEnd && prev.Remaining() <= endSlack
}

func noticeFor(err error) string {
	if s := apperr.GetSuggestion(err); s != "" {
		return s
	}
	return err.Error()
}
