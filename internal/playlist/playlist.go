// Package playlist creates a playlist from discovered tracks.
package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/justestif/spotify-release-radar/internal/logging"
)

// MaxTracksPerRequest is Spotify's limit on track ids per add call.
const MaxTracksPerRequest = 100

const dateLayout = "2006-01-02"

// Playlist identifies a created playlist.
type Playlist struct {
	ID   string
	Name string
	URL  string
}

// Service abstracts the Spotify calls needed to create a playlist.
// AddTracks is called with at most MaxTracksPerRequest ids.
type Service interface {
	CurrentUserID(ctx context.Context) (string, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error)
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// Request describes the playlist to create.
type Request struct {
	TrackIDs []string
	Days     int
	Public   bool
	Now      time.Time
}

// Materializer creates and populates playlists.
type Materializer struct {
	service Service
	logger  *slog.Logger
}

// NewMaterializer creates a Materializer. A nil logger discards output.
func NewMaterializer(service Service, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Materializer{service: service, logger: logger}
}

// Materialize creates a playlist for the current user and adds the tracks in
// order. It returns (nil, nil) without calling Spotify when there are no
// tracks. A failure while adding tracks leaves the partially filled playlist
// in place.
func (m *Materializer) Materialize(ctx context.Context, req Request) (*Playlist, error) {
	if len(req.TrackIDs) == 0 {
		m.logger.Info("No new releases found.")
		return nil, nil
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	m.logger.Info(strings.Repeat("=", 50))
	m.logger.Info(fmt.Sprintf("Found %d new tracks! Creating playlist...", len(req.TrackIDs)))

	userID, err := m.service.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	name, description := Describe(req.Days, now)
	pl, err := m.service.CreatePlaylist(ctx, userID, name, description, req.Public)
	if err != nil {
		return nil, err
	}

	for _, batch := range Batches(req.TrackIDs, MaxTracksPerRequest) {
		if err := m.service.AddTracks(ctx, pl.ID, batch); err != nil {
			return nil, fmt.Errorf("populating playlist %s: %w", pl.ID, err)
		}
	}

	m.logger.Debug("Playlist populated", "playlist_id", pl.ID, "tracks", len(req.TrackIDs))
	return pl, nil
}

// Describe returns the playlist name and description for a run at now.
func Describe(days int, now time.Time) (name, description string) {
	date := now.Format(dateLayout)
	name = "New Releases " + date
	description = fmt.Sprintf("New releases from followed artists in the past %d days. Generated on %s", days, date)
	return name, description
}

// Batches splits ids into consecutive chunks of at most size elements.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = MaxTracksPerRequest
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for i := 0; i < len(ids); i += size {
		end := min(i+size, len(ids))
		batches = append(batches, ids[i:end])
	}
	return batches
}
