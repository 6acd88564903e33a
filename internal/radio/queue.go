package radio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
)

// ErrEmptyPrompt is returned when a prompt has no text.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Queue owns the backlog and talks to the recommendation service.
type Queue struct {
	session     *Session
	transport   *Transport
	recommender core.Recommender
	log         zerolog.Logger
}

// NewQueue creates a queue manager for session.
func NewQueue(session *Session, transport *Transport, recommender core.Recommender, log zerolog.Logger) *Queue {
	return &Queue{session: session, transport: transport, recommender: recommender, log: log}
}

// FilterNew drops descriptors already played in this session.
func (q *Queue) FilterNew(ds []core.Descriptor) []core.Descriptor {
	return q.session.filterNew(ds)
}

func (q *Queue) fetch(ctx context.Context, prompt string) ([]core.Descriptor, error) {
	songs, err := q.recommender.Recommend(ctx, prompt)
	if err != nil {
		if errors.Is(err, apperr.ErrRecommendation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", apperr.ErrRecommendation, err)
	}
	return core.Descriptors(songs), nil
}

// SubmitPrompt replaces the backlog with fresh recommendations for prompt
// and starts the first one.
func (q *Queue) SubmitPrompt(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}

	ds, err := q.fetch(ctx, prompt)
	if err != nil {
		return err
	}

	head := q.session.replaceBacklog(prompt, ds)
	q.log.Info().Str("prompt", prompt).Int("received", len(ds)).Msg("prompt submitted")
	if head.IsEmpty() {
		return nil
	}
	return q.play(ctx, head, false)
}

// Skip removes the first unplayed backlog entry and plays it. If the play
// fails the entry goes back where it was.
func (q *Queue) Skip(ctx context.Context) error {
	d, i, ok := q.session.takeNextUnplayed()
	if !ok {
		q.log.Debug().Msg("skip: nothing left to play")
		return nil
	}
	if err := q.play(ctx, d, false); err != nil {
		q.session.restoreBacklog(i, d)
		return err
	}
	return nil
}

// Previous plays the backlog head again, even if it was already played.
func (q *Queue) Previous(ctx context.Context) error {
	d := q.session.head()
	if d.IsEmpty() {
		return nil
	}
	return q.play(ctx, d, true)
}

// Replenish appends new recommendations for the last prompt. It is safe to
// call concurrently; entries already queued or played are never added twice.
func (q *Queue) Replenish(ctx context.Context) error {
	prompt := q.session.LastPrompt()
	if prompt == "" {
		return nil
	}

	ds, err := q.fetch(ctx, prompt)
	if err != nil {
		return err
	}

	added := q.session.appendBacklog(prompt, ds)
	q.log.Info().Str("prompt", prompt).Int("received", len(ds)).Int("added", added).Msg("backlog replenished")
	return nil
}

// RetryPending replays the play intent buffered while no device was ready.
func (q *Queue) RetryPending(ctx context.Context) error {
	in := q.session.takePending()
	if in == nil {
		return nil
	}
	q.log.Info().Str("descriptor", in.desc.String()).Msg("retrying buffered play")
	return q.play(ctx, in.desc, in.replay)
}

// play forwards to the transport and buffers the intent if the device is
// not ready yet.
func (q *Queue) play(ctx context.Context, d core.Descriptor, replay bool) error {
	var err error
	if replay {
		err = q.transport.Replay(ctx, d)
	} else {
		err = q.transport.Play(ctx, d)
	}
	if errors.Is(err, apperr.ErrDeviceNotReady) {
		if q.session.setPending(d, replay) {
			return q.play(ctx, d, replay)
		}
		q.log.Info().Str("descriptor", d.String()).Msg("device not ready, play deferred")
		return nil
	}
	return err
}
