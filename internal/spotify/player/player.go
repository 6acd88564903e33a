package player

import (
	"context"
	"time"

	"github.com/timmfy/ai-radio/internal/core"
	"github.com/timmfy/ai-radio/internal/spotify/client"
)

// Player implements core.Player and core.Catalog for Spotify.
type Player struct {
	client *client.Client
	market string
}

// New creates a new Spotify player.
func New(c *client.Client) *Player {
	return &Player{client: c}
}

// SetMarket restricts catalog searches to a market (ISO 3166-1 alpha-2).
func (p *Player) SetMarket(market string) {
	p.market = market
}

// PlayURI starts playback of a single track on the device.
func (p *Player) PlayURI(ctx context.Context, deviceID, uri string) error {
	return p.client.Play(ctx, deviceID, &client.PlayOptions{
		URIs: []string{uri},
	})
}

// Pause pauses playback.
func (p *Player) Pause(ctx context.Context, deviceID string) error {
	return p.client.Pause(ctx, deviceID)
}

// Resume continues the current track.
func (p *Player) Resume(ctx context.Context, deviceID string) error {
	return p.client.Play(ctx, deviceID, nil)
}

// Seek seeks to a position in the current track.
func (p *Player) Seek(ctx context.Context, deviceID string, position time.Duration) error {
	return p.client.Seek(ctx, int(position/time.Millisecond), deviceID)
}

// SearchTrack returns the top catalog match for query, or nil if there is none.
func (p *Player) SearchTrack(ctx context.Context, query string) (*core.Track, error) {
	resp, err := p.client.Search(ctx, client.SearchOptions{
		Query:  query,
		Types:  []client.SearchType{client.SearchTypeTrack},
		Limit:  1,
		Market: p.market,
	})
	if err != nil {
		return nil, err
	}
	if resp.Tracks == nil || len(resp.Tracks.Items) == 0 {
		return nil, nil
	}
	return convertTrack(&resp.Tracks.Items[0]), nil
}

// State returns the device's view of playback, or nil if nothing is playing.
func (p *Player) State(ctx context.Context) (*core.DeviceState, error) {
	state, err := p.client.GetPlaybackState(ctx)
	if err != nil {
		return nil, err
	}
	return convertState(state), nil
}

// GetDevices returns the user's available playback devices.
func (p *Player) GetDevices(ctx context.Context) ([]core.Device, error) {
	devices, err := p.client.GetDevices(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]core.Device, len(devices))
	for i, d := range devices {
		result[i] = *convertDevice(&d)
	}
	return result, nil
}

// convertState converts a Spotify playback state to a device report.
func convertState(s *client.PlaybackState) *core.DeviceState {
	if s == nil || s.Item == nil {
		return nil
	}
	return &core.DeviceState{
		Paused:   !s.IsPlaying,
		Position: time.Duration(s.ProgressMS) * time.Millisecond,
		Duration: time.Duration(s.Item.DurationMS) * time.Millisecond,
		TrackURI: s.Item.URI,
	}
}

// convertTrack converts a Spotify track to a core track.
func convertTrack(t *client.Track) *core.Track {
	if t == nil {
		return nil
	}

	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	artist := ""
	if len(artists) > 0 {
		artist = artists[0]
	}

	return &core.Track{
		ID:       t.ID,
		URI:      t.URI,
		Title:    t.Name,
		Artist:   artist,
		Artists:  artists,
		Album:    t.Album.Name,
		Duration: time.Duration(t.DurationMS) * time.Millisecond,
	}
}

// convertDevice converts a Spotify device to a core device.
func convertDevice(d *client.Device) *core.Device {
	if d == nil {
		return nil
	}

	deviceType := core.DeviceType(d.Type)
	switch d.Type {
	case "Computer":
		deviceType = core.DeviceTypeComputer
	case "Smartphone":
		deviceType = core.DeviceTypePhone
	case "Speaker":
		deviceType = core.DeviceTypeSpeaker
	case "TV":
		deviceType = core.DeviceTypeTV
	}

	return &core.Device{
		ID:       d.ID,
		Name:     d.Name,
		Type:     deviceType,
		IsActive: d.IsActive,
	}
}

var (
	_ core.Player  = (*Player)(nil)
	_ core.Catalog = (*Player)(nil)
)
