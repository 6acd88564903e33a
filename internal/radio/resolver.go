package radio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/timmfy/ai-radio/internal/core"
	apperr "github.com/timmfy/ai-radio/internal/errors"
)

// Resolver maps descriptors to playable tracks through the catalog.
type Resolver struct {
	catalog core.Catalog
	log     zerolog.Logger
}

// NewResolver creates a resolver backed by catalog.
func NewResolver(catalog core.Catalog, log zerolog.Logger) *Resolver {
	return &Resolver{catalog: catalog, log: log}
}

// Resolve looks d up with a single catalog query. It returns an error
// matching ErrTrackNotFound when the catalog has no match. Authentication
// and network failures are passed through; the catalog client owns retries.
func (r *Resolver) Resolve(ctx context.Context, d core.Descriptor) (*core.Track, error) {
	track, err := r.catalog.SearchTrack(ctx, d.String())
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", d, err)
	}
	if track == nil || track.URI == "" {
		return nil, fmt.Errorf("resolve %q: %w", d, apperr.ErrTrackNotFound)
	}
	r.log.Debug().Str("descriptor", d.String()).Str("uri", track.URI).Msg("resolved")
	return track, nil
}
