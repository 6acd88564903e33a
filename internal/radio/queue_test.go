package radio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
)

func TestSubmitPrompt(t *testing.T) {
	h := newHarness().withDevice()
	h.rec.respond = func(call int, prompt string) ([]core.Song, error) {
		return songs("Song A", "Artist1", "Song B", "Artist2"), nil
	}

	require.NoError(t, h.radio.Queue().SubmitPrompt(context.Background(), "chill vibes"))

	s := h.radio.Session()
	assert.Equal(t, []core.Descriptor{"Song A Artist1", "Song B Artist2"}, s.Backlog())
	assert.Equal(t, "chill vibes", s.LastPrompt())
	assert.Equal(t, []core.Descriptor{"Song A Artist1"}, s.Played())
	assert.Equal(t, []string{uriFor("Song A Artist1")}, h.player.Plays())
}

func TestSubmitPromptReplacesBacklog(t *testing.T) {
	h := newHarness().withDevice()
	h.rec.respond = func(call int, prompt string) ([]core.Song, error) {
		if prompt == "first" {
			return songs("A", "1", "B", "2", "C", "3"), nil
		}
		return songs("A", "1", "D", "4"), nil
	}
	ctx := context.Background()

	require.NoError(t, h.radio.Queue().SubmitPrompt(ctx, "first"))
	require.NoError(t, h.radio.Queue().SubmitPrompt(ctx, "second"))

	// "A 1" was played under the first prompt and is filtered out.
	assert.Equal(t, []core.Descriptor{"D 4"}, h.radio.Session().Backlog())
	assert.Equal(t, []string{uriFor("A 1"), uriFor("D 4")}, h.player.Plays())
}

func TestSubmitPromptEmpty(t *testing.T) {
	h := newHarness()
	err := h.radio.Queue().SubmitPrompt(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Zero(t, h.rec.Calls())
}

func TestSubmitPromptRecommendationFailure(t *testing.T) {
	h := newHarness().withDevice()
	h.seed("old", "X", "Y")
	h.rec.respond = func(int, string) ([]core.Song, error) {
		return nil, apperr.ErrNetworkError
	}

	err := h.radio.Queue().SubmitPrompt(context.Background(), "new")

	require.ErrorIs(t, err, apperr.ErrRecommendation)
	require.ErrorIs(t, err, apperr.ErrNetworkError)
	assert.Equal(t, []core.Descriptor{"X", "Y"}, h.radio.Session().Backlog())
	assert.Equal(t, "old", h.radio.Session().LastPrompt())
}

func TestSubmitPromptWithoutDeviceBuffersIntent(t *testing.T) {
	h := newHarness()
	h.rec.respond = func(int, string) ([]core.Song, error) {
		return songs("Song A", "Artist1"), nil
	}
	ctx := context.Background()

	require.NoError(t, h.radio.Queue().SubmitPrompt(ctx, "chill vibes"))
	assert.Empty(t, h.player.Plays())
	assert.Equal(t, core.Descriptor("Song A Artist1"), h.radio.Snapshot().Pending)

	h.radio.HandleEvent(ctx, core.DeviceReady{DeviceID: "dev-1"})
	h.radio.Wait()

	assert.Equal(t, []string{uriFor("Song A Artist1")}, h.player.Plays())
	assert.Empty(t, h.radio.Snapshot().Pending)
}

func TestSkip(t *testing.T) {
	h := newHarness().withDevice()
	h.seed("p", "X", "Y")

	require.NoError(t, h.radio.Queue().Skip(context.Background()))

	s := h.radio.Session()
	assert.Equal(t, []core.Descriptor{"Y"}, s.Backlog())
	assert.Equal(t, []core.Descriptor{"X"}, s.Played())
	assert.Equal(t, []string{uriFor("X")}, h.player.Plays())
}

func TestSkipPassesOverPlayedHead(t *testing.T) {
	h := newHarness().withDevice()
	ctx := context.Background()
	h.seed("p", "X", "Y", "Z")
	require.NoError(t, h.radio.Transport().Play(ctx, "X"))

	require.NoError(t, h.radio.Queue().Skip(ctx))

	assert.Equal(t, []core.Descriptor{"X", "Z"}, h.radio.Session().Backlog())
	assert.Equal(t, []string{uriFor("X"), uriFor("Y")}, h.player.Plays())
}

func TestSkipEmpty(t *testing.T) {
	h := newHarness().withDevice()
	require.NoError(t, h.radio.Queue().Skip(context.Background()))
	assert.Empty(t, h.player.Plays())
}

func TestSkipNotFoundDropsEntry(t *testing.T) {
	h := newHarness().withDevice()
	h.catalog.missing["X"] = true
	h.seed("p", "X", "Y")

	require.NoError(t, h.radio.Queue().Skip(context.Background()))

	assert.Equal(t, []core.Descriptor{"Y"}, h.radio.Session().Backlog())
	assert.False(t, h.radio.Session().HasPlayed("X"))
	assert.Empty(t, h.player.Plays())
}

func TestSkipFailureKeepsEntry(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		want  error
	}{
		{
			name:  "network",
			setup: func(h *harness) { h.catalog.err = fmt.Errorf("search: %w", apperr.ErrNetworkError) },
			want:  apperr.ErrNetworkError,
		},
		{
			name:  "auth",
			setup: func(h *harness) { h.catalog.err = fmt.Errorf("search: %w", apperr.ErrNotAuthenticated) },
			want:  apperr.ErrNotAuthenticated,
		},
		{
			name:  "device",
			setup: func(h *harness) { h.player.err = apperr.ErrNoActiveDevice },
			want:  apperr.ErrNoActiveDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness().withDevice()
			h.seed("p", "X", "Y")
			tt.setup(h)

			err := h.radio.Queue().Skip(context.Background())

			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, []core.Descriptor{"X", "Y"}, h.radio.Session().Backlog())
			assert.Empty(t, h.radio.Session().Played())
		})
	}
}

func TestSkipFailureRestoresPosition(t *testing.T) {
	h := newHarness().withDevice()
	ctx := context.Background()
	h.seed("p", "X", "Y", "Z")
	require.NoError(t, h.radio.Transport().Play(ctx, "X"))
	h.catalog.err = apperr.ErrNetworkError

	require.ErrorIs(t, h.radio.Queue().Skip(ctx), apperr.ErrNetworkError)

	assert.Equal(t, []core.Descriptor{"X", "Y", "Z"}, h.radio.Session().Backlog())
}

func TestPrevious(t *testing.T) {
	h := newHarness().withDevice()
	ctx := context.Background()
	h.seed("p", "X", "Y")
	require.NoError(t, h.radio.Transport().Play(ctx, "X"))

	require.NoError(t, h.radio.Queue().Previous(ctx))

	assert.Equal(t, []string{uriFor("X"), uriFor("X")}, h.player.Plays())
	assert.Equal(t, []core.Descriptor{"X", "Y"}, h.radio.Session().Backlog())
}

func TestPreviousEmpty(t *testing.T) {
	h := newHarness().withDevice()
	require.NoError(t, h.radio.Queue().Previous(context.Background()))
	assert.Empty(t, h.player.Plays())
}

func TestReplenishWithoutPrompt(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.radio.Queue().Replenish(context.Background()))
	assert.Zero(t, h.rec.Calls())
}

func TestReplenishAppends(t *testing.T) {
	h := newHarness().withDevice()
	ctx := context.Background()
	h.seed("p", "A 1", "B 2")
	require.NoError(t, h.radio.Transport().Play(ctx, "A 1"))
	h.rec.respond = func(int, string) ([]core.Song, error) {
		return songs("A", "1", "B", "2", "C", "3"), nil
	}

	require.NoError(t, h.radio.Queue().Replenish(ctx))

	assert.Equal(t, []core.Descriptor{"A 1", "B 2", "C 3"}, h.radio.Session().Backlog())
	assert.Equal(t, []string{"p"}, h.rec.prompts)
}

func TestReplenishConcurrent(t *testing.T) {
	h := newHarness().withDevice()
	ctx := context.Background()
	h.seed("p", "A 1")
	require.NoError(t, h.radio.Transport().Play(ctx, "A 1"))
	h.rec.respond = func(call int, _ string) ([]core.Song, error) {
		if call%2 == 0 {
			return songs("A", "1", "B", "2", "C", "3"), nil
		}
		return songs("C", "3", "D", "4", "B", "2"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.radio.Queue().Replenish(ctx))
		}()
	}
	wg.Wait()

	backlog := h.radio.Session().Backlog()
	assert.ElementsMatch(t, []core.Descriptor{"A 1", "B 2", "C 3", "D 4"}, backlog)
	seen := make(map[core.Descriptor]bool)
	for _, d := range backlog[1:] {
		assert.False(t, seen[d], "duplicate %q", d)
		assert.False(t, h.radio.Session().HasPlayed(d), "%q already played", d)
		seen[d] = true
	}
}

func TestReplenishDiscardsStalePrompt(t *testing.T) {
	h := newHarness()
	h.seed("old", "X")

	added := h.radio.Session().appendBacklog("older", []core.Descriptor{"Y"})

	assert.Zero(t, added)
	assert.Equal(t, []core.Descriptor{"X"}, h.radio.Session().Backlog())
}

func TestReplenishFailureKeepsBacklog(t *testing.T) {
	h := newHarness()
	h.seed("p", "X")
	h.rec.respond = func(int, string) ([]core.Song, error) {
		return nil, errors.New("upstream 502")
	}

	err := h.radio.Queue().Replenish(context.Background())

	require.ErrorIs(t, err, apperr.ErrRecommendation)
	assert.Equal(t, []core.Descriptor{"X"}, h.radio.Session().Backlog())
}

// No descriptor reaches the device twice except through Previous.
func TestDedupAcrossOperations(t *testing.T) {
	h := newHarness().withDevice()
	ctx := context.Background()
	h.rec.respond = func(int, string) ([]core.Song, error) {
		return songs("A", "1", "B", "2", "C", "3"), nil
	}

	require.NoError(t, h.radio.Queue().SubmitPrompt(ctx, "p"))
	for i := 0; i < 5; i++ {
		require.NoError(t, h.radio.Queue().Skip(ctx))
		require.NoError(t, h.radio.Queue().Replenish(ctx))
	}
	require.NoError(t, h.radio.Queue().SubmitPrompt(ctx, "p"))

	seen := make(map[string]int)
	for _, uri := range h.player.Plays() {
		seen[uri]++
	}
	for uri, n := range seen {
		assert.Equal(t, 1, n, "%s played %d times", uri, n)
	}
	assert.Len(t, seen, 3)
}
