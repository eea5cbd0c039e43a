// Package radar runs the release radar pipeline: discover recent releases
// from followed artists, then gather them into a new playlist.
package radar

import (
	"context"
	"log/slog"
	"time"

	"github.com/justestif/spotify-release-radar/internal/logging"
	"github.com/justestif/spotify-release-radar/internal/playlist"
	"github.com/justestif/spotify-release-radar/internal/release"
)

// Spotify is the remote surface the pipeline needs.
type Spotify interface {
	release.Catalog
	playlist.Service
}

// Options configures a run.
type Options struct {
	Days        int
	Public      bool
	ArtistDelay time.Duration
	Logger      *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Outcome is the result of a run. Playlist is nil when nothing qualified.
type Outcome struct {
	Playlist *playlist.Playlist
	Records  []release.Record
	Duration time.Duration
}

// TrackCount returns the number of tracks added to the playlist.
func (o *Outcome) TrackCount() int {
	if o == nil || o.Playlist == nil {
		return 0
	}
	return len(o.Records)
}

// Run discovers tracks released within opts.Days and creates a playlist
// holding them. Discovery failures abort before any playlist is created.
func Run(ctx context.Context, api Spotify, opts Options) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	days := opts.Days
	if days <= 0 {
		days = release.DefaultDays
	}

	began := time.Now()
	start := now()

	discoverer := release.NewDiscoverer(api,
		release.WithLogger(logger),
		release.WithArtistDelay(opts.ArtistDelay),
		release.WithClock(func() time.Time { return start }),
	)
	result, err := discoverer.Discover(ctx, days)
	if err != nil {
		return nil, err
	}

	pl, err := playlist.NewMaterializer(api, logger).Materialize(ctx, playlist.Request{
		TrackIDs: result.TrackIDs,
		Days:     days,
		Public:   opts.Public,
		Now:      start,
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Playlist: pl,
		Records:  result.Records,
		Duration: time.Since(began),
	}
	if pl != nil {
		logger.Info("Created playlist",
			"playlist_id", pl.ID,
			"name", pl.Name,
			"tracks", len(result.TrackIDs),
			"public", opts.Public,
		)
	}
	return outcome, nil
}
