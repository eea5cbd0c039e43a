// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"log/slog"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/spotify-release-radar/internal/logging"
	"github.com/justestif/spotify-release-radar/internal/playlist"
	"github.com/justestif/spotify-release-radar/internal/release"
)

// pageLimit is the largest page size Spotify accepts for the list endpoints used here.
const pageLimit = 50

var (
	_ release.Catalog  = (*Client)(nil)
	_ playlist.Service = (*Client)(nil)
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api    *spotify.Client
	logger *slog.Logger
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{api: api, logger: logger}
}

// CurrentUserID returns the current user's Spotify ID.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", wrapRemote("getting current user", err)
	}
	if user.ID == "" {
		return "", malformed("current user", "missing id")
	}
	return user.ID, nil
}
