package player

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/timmfy/ai-radio/internal/core"
	"github.com/timmfy/ai-radio/internal/spotify/client"
)

func TestConvertTrack(t *testing.T) {
	spotifyTrack := &client.Track{
		ID:         "track123",
		URI:        "spotify:track:track123",
		Name:       "Test Song",
		DurationMS: 180000,
		Artists: []client.Artist{
			{Name: "Artist One"},
			{Name: "Artist Two"},
		},
		Album: client.Album{
			Name: "Test Album",
		},
	}

	coreTrack := convertTrack(spotifyTrack)

	if coreTrack.ID != "track123" {
		t.Errorf("ID = %q, want %q", coreTrack.ID, "track123")
	}
	if coreTrack.Title != "Test Song" {
		t.Errorf("Title = %q, want %q", coreTrack.Title, "Test Song")
	}
	if coreTrack.Artist != "Artist One" {
		t.Errorf("Artist = %q, want %q", coreTrack.Artist, "Artist One")
	}
	if len(coreTrack.Artists) != 2 {
		t.Errorf("Artists count = %d, want 2", len(coreTrack.Artists))
	}
	if coreTrack.Album != "Test Album" {
		t.Errorf("Album = %q, want %q", coreTrack.Album, "Test Album")
	}
	if coreTrack.Duration != 180*time.Second {
		t.Errorf("Duration = %v, want %v", coreTrack.Duration, 180*time.Second)
	}
}

func TestConvertDevice(t *testing.T) {
	spotifyDevice := &client.Device{
		ID:       "device123",
		Name:     "My Speaker",
		Type:     "Speaker",
		IsActive: true,
	}

	coreDevice := convertDevice(spotifyDevice)

	if coreDevice.ID != "device123" {
		t.Errorf("ID = %q, want %q", coreDevice.ID, "device123")
	}
	if coreDevice.Name != "My Speaker" {
		t.Errorf("Name = %q, want %q", coreDevice.Name, "My Speaker")
	}
	if coreDevice.Type != core.DeviceTypeSpeaker {
		t.Errorf("Type = %q, want %q", coreDevice.Type, core.DeviceTypeSpeaker)
	}
	if !coreDevice.IsActive {
		t.Error("IsActive = false, want true")
	}
}

func TestConvertState(t *testing.T) {
	if got := convertState(nil); got != nil {
		t.Errorf("convertState(nil) = %+v, want nil", got)
	}
	if got := convertState(&client.PlaybackState{IsPlaying: true}); got != nil {
		t.Errorf("convertState(no item) = %+v, want nil", got)
	}

	got := convertState(&client.PlaybackState{
		IsPlaying:  false,
		ProgressMS: 42000,
		Item:       &client.Track{URI: "spotify:track:1", DurationMS: 200000},
	})
	if !got.Paused {
		t.Error("Paused = false, want true")
	}
	if got.Position != 42*time.Second {
		t.Errorf("Position = %v, want 42s", got.Position)
	}
	if got.Duration != 200*time.Second {
		t.Errorf("Duration = %v, want 200s", got.Duration)
	}
}

func TestConvertNilTrack(t *testing.T) {
	result := convertTrack(nil)
	if result != nil {
		t.Error("Expected nil for nil input")
	}
}

func TestConvertNilDevice(t *testing.T) {
	result := convertDevice(nil)
	if result != nil {
		t.Error("Expected nil for nil input")
	}
}

func TestSearchTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", q.Get("limit"))
		}
		if q.Get("type") != "track" {
			t.Errorf("type = %q, want track", q.Get("type"))
		}

		resp := client.SearchResponse{Tracks: &client.SearchTracks{}}
		if q.Get("q") == "Weightless Marconi Union" {
			resp.Tracks.Items = []client.Track{{
				ID:         "w1",
				URI:        "spotify:track:w1",
				Name:       "Weightless",
				DurationMS: 480000,
				Artists:    []client.Artist{{Name: "Marconi Union"}},
			}}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := client.New("client", nil, client.WithBaseURL(server.URL))
	c.UseAccessToken("token")
	p := New(c)

	track, err := p.SearchTrack(context.Background(), "Weightless Marconi Union")
	if err != nil {
		t.Fatalf("SearchTrack() error = %v", err)
	}
	if track == nil || track.URI != "spotify:track:w1" {
		t.Fatalf("SearchTrack() = %+v, want spotify:track:w1", track)
	}

	missing, err := p.SearchTrack(context.Background(), "Nonexistent Song Nobody")
	if err != nil {
		t.Fatalf("SearchTrack() error = %v", err)
	}
	if missing != nil {
		t.Errorf("SearchTrack() = %+v, want nil", missing)
	}
}
