package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/spotify-release-radar/internal/playlist"
)

const playlistURLPrefix = "https://open.spotify.com/playlist/"

// CreatePlaylist creates a new playlist owned by userID.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*playlist.Playlist, error) {
	created, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, wrapRemote("creating playlist", err)
	}
	if created.ID == "" {
		return nil, malformed("playlist", "missing id")
	}

	url := created.ExternalURLs["spotify"]
	if url == "" {
		url = playlistURLPrefix + created.ID.String()
	}

	return &playlist.Playlist{
		ID:   created.ID.String(),
		Name: created.Name,
		URL:  url,
	}, nil
}

// AddTracks adds one batch of tracks to a playlist.
// Spotify allows max 100 tracks per request; larger batches are rejected.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > playlist.MaxTracksPerRequest {
		return fmt.Errorf("adding %d tracks: at most %d per request", len(trackIDs), playlist.MaxTracksPerRequest)
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
		return wrapRemote(fmt.Sprintf("adding %d tracks", len(ids)), err)
	}
	return nil
}
