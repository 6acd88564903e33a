package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/timmfy/ai-radio/internal/core"
	"github.com/timmfy/ai-radio/internal/device"
	apperr "github.com/timmfy/ai-radio/internal/errors"
	"github.com/timmfy/ai-radio/internal/radio"
	"github.com/timmfy/ai-radio/internal/recommend"
	"github.com/timmfy/ai-radio/internal/spotify/auth"
	"github.com/timmfy/ai-radio/internal/spotify/client"
	"github.com/timmfy/ai-radio/internal/spotify/player"
)

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func tokenStorage() (*auth.TokenStorage, error) {
	return auth.NewTokenStorage(expandHome(cfg.Spotify.TokenFile))
}

// explicitToken returns a token given on the command line or in the
// environment, which takes precedence over the token file.
func explicitToken() string {
	if tokenArg != "" {
		return tokenArg
	}
	return os.Getenv("AIRADIO_SPOTIFY_TOKEN")
}

// newSpotifyClient returns an authenticated Spotify client.
func newSpotifyClient() (*client.Client, error) {
	storage, err := tokenStorage()
	if err != nil {
		return nil, err
	}

	c := client.New(cfg.Spotify.ClientID, storage, client.WithLogger(logger))
	if tok := explicitToken(); tok != "" {
		c.UseAccessToken(tok)
		return c, nil
	}

	if err := c.LoadToken(); err != nil {
		return nil, err
	}
	if !c.HasToken() {
		return nil, apperr.ErrNotAuthenticated
	}
	return c, nil
}

func newPlayer() (*player.Player, error) {
	c, err := newSpotifyClient()
	if err != nil {
		return nil, err
	}
	p := player.New(c)
	p.SetMarket(cfg.Spotify.Market)
	return p, nil
}

// newRecommender uses the remote generate-tracks service when one is
// configured and calls OpenAI directly otherwise.
func newRecommender() core.Recommender {
	if cfg.Recommend.URL != "" {
		return recommend.NewClient(cfg.Recommend.URL, cfg.Recommend.TimeoutDuration(), logger)
	}
	return recommend.NewGenerator(recommend.GeneratorConfig{
		APIKey:  cfg.Recommend.OpenAIAPIKey,
		Model:   cfg.Recommend.OpenAIModel,
		URL:     cfg.Recommend.OpenAIURL,
		Timeout: cfg.Recommend.TimeoutDuration(),
	}, logger)
}

// station bundles a running radio with the watcher that feeds it.
type station struct {
	radio   *radio.Radio
	watcher *device.Watcher
}

func newStation() (*station, error) {
	p, err := newPlayer()
	if err != nil {
		return nil, err
	}

	opts := radio.DefaultOptions()
	opts.Watermark = cfg.Radio.Watermark
	opts.TickInterval = cfg.Radio.TickEvery()
	opts.CommandTimeout = cfg.Radio.CommandDeadline()
	opts.AutoAdvance = cfg.Radio.AutoAdvanceEnabled()
	opts.Logger = logger

	return &station{
		radio:   radio.New(p, p, newRecommender(), opts),
		watcher: device.NewWatcher(p, cfg.Spotify.Device, cfg.Radio.PollEvery(), logger),
	}, nil
}

// run drives the watcher and the engine until ctx is done.
func (s *station) run(ctx context.Context) error {
	go func() {
		if err := s.watcher.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("device watcher stopped")
		}
	}()
	return s.radio.Run(ctx, s.watcher.Events())
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func defaultLogFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "airadio.log"
	}
	return filepath.Join(dir, "airadio", "airadio.log")
}
