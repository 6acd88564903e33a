package core

import (
	"context"
	"time"
)

// Player issues transport commands to a playback device.
type Player interface {
	PlayURI(ctx context.Context, deviceID, uri string) error
	Pause(ctx context.Context, deviceID string) error
	Resume(ctx context.Context, deviceID string) error
	Seek(ctx context.Context, deviceID string, position time.Duration) error
}

// Catalog looks up tracks. SearchTrack returns the best match for the query,
// or nil when the catalog has no match.
type Catalog interface {
	SearchTrack(ctx context.Context, query string) (*Track, error)
}

// Recommender turns a free-text prompt into song recommendations.
type Recommender interface {
	Recommend(ctx context.Context, prompt string) ([]Song, error)
}

// HistoryEntry represents a track played during the session.
type HistoryEntry struct {
	Track    *Track     `json:"track"`
	PlayedAt time.Time  `json:"played_at"`
	Desc     Descriptor `json:"descriptor"`
}
