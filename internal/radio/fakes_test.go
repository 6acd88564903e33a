package radio

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/timmfy/ai-radio/internal/core"
)

type fakePlayer struct {
	mu      sync.Mutex
	plays   []string
	pauses  int
	resumes int
	seeks   []time.Duration
	err     error
}

func (p *fakePlayer) PlayURI(ctx context.Context, deviceID, uri string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.plays = append(p.plays, uri)
	return nil
}

func (p *fakePlayer) Pause(ctx context.Context, deviceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	return p.err
}

func (p *fakePlayer) Resume(ctx context.Context, deviceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes++
	return p.err
}

func (p *fakePlayer) Seek(ctx context.Context, deviceID string, position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, position)
	return p.err
}

func (p *fakePlayer) Plays() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.plays...)
}

// fakeCatalog resolves every descriptor except those listed in missing.
type fakeCatalog struct {
	mu       sync.Mutex
	missing  map[string]bool
	duration time.Duration
	err      error
	gate     chan struct{}
	calls    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{missing: make(map[string]bool), duration: 200 * time.Second}
}

func (c *fakeCatalog) SearchTrack(ctx context.Context, query string) (*core.Track, error) {
	c.mu.Lock()
	c.calls++
	gate := c.gate
	err := c.err
	missing := c.missing[query]
	dur := c.duration
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, nil
	}
	return &core.Track{
		ID:       slug(query),
		URI:      uriFor(query),
		Title:    query,
		Duration: dur,
	}, nil
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

func uriFor(d string) string {
	return "spotify:track:" + slug(d)
}

type fakeRecommender struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	respond func(call int, prompt string) ([]core.Song, error)
}

func (r *fakeRecommender) Recommend(ctx context.Context, prompt string) ([]core.Song, error) {
	r.mu.Lock()
	call := r.calls
	r.calls++
	r.prompts = append(r.prompts, prompt)
	respond := r.respond
	r.mu.Unlock()

	if respond == nil {
		return nil, nil
	}
	return respond(call, prompt)
}

func (r *fakeRecommender) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func songs(pairs ...string) []core.Song {
	out := make([]core.Song, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, core.Song{Title: pairs[i], Artist: pairs[i+1]})
	}
	return out
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	radio   *Radio
	player  *fakePlayer
	catalog *fakeCatalog
	rec     *fakeRecommender
	clock   *fakeClock
}

func newHarness() *harness {
	h := &harness{
		player:  &fakePlayer{},
		catalog: newFakeCatalog(),
		rec:     &fakeRecommender{},
		clock:   newFakeClock(),
	}
	opts := DefaultOptions()
	opts.Now = h.clock.Now
	opts.TickInterval = 10 * time.Millisecond
	h.radio = New(h.player, h.catalog, h.rec, opts)
	return h
}

func (h *harness) withDevice() *harness {
	h.radio.Transport().SetDevice("dev-1")
	return h
}

// seed installs a backlog without going through the recommender.
func (h *harness) seed(prompt string, ds ...core.Descriptor) {
	h.radio.Session().replaceBacklog(prompt, ds)
}
