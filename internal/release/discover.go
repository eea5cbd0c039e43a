package release

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/justestif/spotify-release-radar/internal/logging"
)

// DefaultArtistDelay is the pause between artists that keeps the run under
// Spotify's rate limits.
const DefaultArtistDelay = 100 * time.Millisecond

// Catalog abstracts the Spotify API calls the discoverer needs.
// Each method returns the complete, paginated collection.
type Catalog interface {
	FollowedArtists(ctx context.Context) ([]Artist, error)
	ArtistAlbums(ctx context.Context, artistID string) ([]Album, error)
	AlbumTracks(ctx context.Context, albumID string) ([]Track, error)
}

// Discoverer walks followed artists and collects tracks from recent albums.
type Discoverer struct {
	catalog Catalog
	logger  *slog.Logger
	delay   time.Duration
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithLogger sets the logger used for progress output. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithArtistDelay sets the pause between artists. Zero disables it.
func WithArtistDelay(delay time.Duration) Option {
	return func(d *Discoverer) {
		d.delay = delay
	}
}

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(d *Discoverer) {
		d.now = now
	}
}

// NewDiscoverer creates a Discoverer backed by the given catalog.
func NewDiscoverer(catalog Catalog, opts ...Option) *Discoverer {
	d := &Discoverer{
		catalog: catalog,
		logger:  logging.NewNop(),
		delay:   DefaultArtistDelay,
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover returns every track on albums released within the last days days,
// in followed-artist order. Tracks appearing on several qualifying albums are
// returned once per album.
func (d *Discoverer) Discover(ctx context.Context, days int) (*Result, error) {
	filter := NewFilter(d.now(), days)

	artists, err := d.catalog.FollowedArtists(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching followed artists: %w", err)
	}

	d.logger.Info("Checking releases for followed artists",
		"artists", len(artists),
		"since", filter.Cutoff().Format(releaseDateLayout),
	)
	d.logger.Info(strings.Repeat("=", 50))

	result := &Result{}
	for i, artist := range artists {
		if i > 0 && d.delay > 0 {
			if err := d.sleep(ctx, d.delay); err != nil {
				return nil, err
			}
		}

		d.logger.Info(fmt.Sprintf("Checking artist %d/%d: %s", i+1, len(artists), artist.Name))

		found, err := d.discoverArtist(ctx, filter, artist, result)
		if err != nil {
			return nil, err
		}
		if !found {
			d.logger.Info("   No new releases found")
		}
	}

	return result, nil
}

// discoverArtist appends the artist's new tracks to result and reports
// whether any qualifying album was found.
func (d *Discoverer) discoverArtist(ctx context.Context, filter Filter, artist Artist, result *Result) (bool, error) {
	albums, err := d.catalog.ArtistAlbums(ctx, artist.ID)
	if err != nil {
		return false, fmt.Errorf("fetching albums for %s: %w", artist.Name, err)
	}

	found := false
	for _, album := range albums {
		ok, err := filter.Qualifies(album.ReleaseDate)
		if err != nil {
			d.logger.Debug("Skipping album with imprecise release date",
				"artist", artist.Name,
				"album", album.Name,
				"release_date", album.ReleaseDate,
				"precision", album.Precision,
			)
			continue
		}
		if !ok {
			continue
		}

		if !found {
			d.logger.Info(fmt.Sprintf("🎵 New release(s) found for %s!", artist.Name))
			found = true
		}

		tracks, err := d.catalog.AlbumTracks(ctx, album.ID)
		if err != nil {
			return found, fmt.Errorf("fetching tracks for %s - %s: %w", artist.Name, album.Name, err)
		}

		for _, track := range tracks {
			result.TrackIDs = append(result.TrackIDs, track.ID)
			result.Records = append(result.Records, Record{
				Artist:      artist.Name,
				Track:       track.Name,
				Album:       album.Name,
				ReleaseDate: album.ReleaseDate,
				TrackURL:    track.URL,
			})
			d.logger.Info(fmt.Sprintf("   → Found: %s (%s)", track.Name, album.Name))
		}
	}

	return found, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
