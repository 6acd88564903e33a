// Package radio implements the queue and playback synchronization engine:
// a deduplicated backlog of recommended songs, played one at a time on a
// Spotify Connect device, with local position prediction reconciled against
// device reports and automatic backlog replenishment.
package radio

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
)

// Options configures a Radio.
type Options struct {
	// Watermark is the backlog length below which more songs are fetched.
	Watermark int
	// TickInterval is the period of local position prediction.
	TickInterval time.Duration
	// CommandTimeout bounds every collaborator call made by the engine.
	CommandTimeout time.Duration
	// AutoAdvance plays the next backlog entry when a track ends.
	AutoAdvance bool
	Logger      zerolog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// DefaultOptions returns the standard engine settings.
func DefaultOptions() Options {
	return Options{
		Watermark:      3,
		TickInterval:   time.Second,
		CommandTimeout: 10 * time.Second,
		AutoAdvance:    true,
		Logger:         zerolog.Nop(),
	}
}

// Radio wires the engine components around one session.
type Radio struct {
	session   *Session
	resolver  *Resolver
	transport *Transport
	queue     *Queue
	sync      *SyncLoop
	broadcast *Broadcaster
	timeout   time.Duration
	log       zerolog.Logger
}

// New creates a radio that plays on player, resolves through catalog and
// asks recommender for songs.
func New(player core.Player, catalog core.Catalog, recommender core.Recommender, opts Options) *Radio {
	session := NewSession(opts.Now)
	log := opts.Logger.With().Str("session_id", session.ID().String()).Logger()

	resolver := NewResolver(catalog, log.With().Str("component", "resolver").Logger())
	transport := NewTransport(session, resolver, player, log.With().Str("component", "transport").Logger())
	queue := NewQueue(session, transport, recommender, log.With().Str("component", "queue").Logger())
	loop := NewSyncLoop(session, transport, queue, SyncConfig{
		Watermark:      opts.Watermark,
		TickInterval:   opts.TickInterval,
		CommandTimeout: opts.CommandTimeout,
		AutoAdvance:    opts.AutoAdvance,
	}, log.With().Str("component", "sync").Logger())

	return &Radio{
		session:   session,
		resolver:  resolver,
		transport: transport,
		queue:     queue,
		sync:      loop,
		broadcast: NewBroadcaster(),
		timeout:   loop.cfg.CommandTimeout,
		log:       log,
	}
}

// Session returns the underlying session.
func (r *Radio) Session() *Session {
	return r.session
}

// Queue returns the queue manager.
func (r *Radio) Queue() *Queue {
	return r.queue
}

// Transport returns the transport controller.
func (r *Radio) Transport() *Transport {
	return r.transport
}

// Run drives the sync loop and snapshot publishing until ctx is done.
func (r *Radio) Run(ctx context.Context, events <-chan core.DeviceEvent) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.publishLoop(ctx)
	}()

	err := r.sync.Run(ctx, events)
	<-done
	r.broadcast.Close()
	return err
}

func (r *Radio) publishLoop(ctx context.Context) {
	r.broadcast.Publish(r.session.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.session.Changes():
			r.broadcast.Publish(r.session.Snapshot())
		}
	}
}

// Subscribe returns a stream of session snapshots.
func (r *Radio) Subscribe() (<-chan Snapshot, func()) {
	return r.broadcast.Subscribe()
}

// Snapshot returns the current session state.
func (r *Radio) Snapshot() Snapshot {
	return r.session.Snapshot()
}

// SubmitPrompt starts a new station for prompt.
func (r *Radio) SubmitPrompt(ctx context.Context, prompt string) error {
	return r.do(ctx, "submit", func(ctx context.Context) error {
		return r.queue.SubmitPrompt(ctx, prompt)
	})
}

// Skip plays the next unplayed song.
func (r *Radio) Skip(ctx context.Context) error {
	return r.do(ctx, "skip", r.queue.Skip)
}

// Previous replays the first song of the backlog.
func (r *Radio) Previous(ctx context.Context) error {
	return r.do(ctx, "previous", r.queue.Previous)
}

// PauseOrResume toggles playback.
func (r *Radio) PauseOrResume(ctx context.Context) error {
	return r.do(ctx, "toggle", r.transport.PauseOrResume)
}

// Seek jumps to position in the current track.
func (r *Radio) Seek(ctx context.Context, position time.Duration) error {
	return r.do(ctx, "seek", func(ctx context.Context) error {
		return r.transport.Seek(ctx, position)
	})
}

// SeekBy moves the position by delta relative to the current prediction.
func (r *Radio) SeekBy(ctx context.Context, delta time.Duration) error {
	return r.Seek(ctx, r.session.State().Position+delta)
}

// HandleEvent applies a device event outside of Run.
func (r *Radio) HandleEvent(ctx context.Context, ev core.DeviceEvent) {
	r.sync.HandleEvent(ctx, ev)
}

// Wait blocks until background work started by HandleEvent has finished.
func (r *Radio) Wait() {
	r.sync.wg.Wait()
}

// do runs a user command with the command timeout. Failures are recorded
// as a notice and returned.
func (r *Radio) do(ctx context.Context, what string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		r.log.Warn().Err(err).Str("command", what).Msg("command failed")
		r.session.setNotice(noticeFor(err))
		return err
	}
	return nil
}
