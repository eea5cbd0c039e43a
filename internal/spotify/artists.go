package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/spotify-release-radar/internal/pager"
	"github.com/justestif/spotify-release-radar/internal/release"
)

// FollowedArtists retrieves every artist the current user follows.
// A failure on any page after the first is logged and the artists collected
// so far are returned.
func (c *Client) FollowedArtists(ctx context.Context) ([]release.Artist, error) {
	c.logger.Info("Fetching followed artists...")

	first, err := c.followedArtistsPage(ctx, "")
	if err != nil {
		return nil, err
	}

	artists, err := pager.Collect(ctx, first,
		pager.WithPartialResults(c.logger),
		pager.WithProgress(func(total int) {
			c.logger.Info(fmt.Sprintf("Found %d artists...", total))
		}),
	)
	if err != nil {
		return nil, err
	}

	c.logger.Info(fmt.Sprintf("Total artists followed: %d", len(artists)))
	return artists, nil
}

// followedArtistsPage fetches one page of followed artists. The endpoint is
// cursor based, so the next page is requested with the "after" cursor rather
// than the next URL.
func (c *Client) followedArtistsPage(ctx context.Context, after string) (*pager.Page[release.Artist], error) {
	opts := []spotify.RequestOption{spotify.Limit(pageLimit)}
	if after != "" {
		opts = append(opts, spotify.After(after))
	}

	page, err := c.api.CurrentUsersFollowedArtists(ctx, opts...)
	if err != nil {
		return nil, wrapRemote("fetching followed artists", err)
	}

	items := make([]release.Artist, 0, len(page.Artists))
	for _, a := range page.Artists {
		artist, err := convertArtist(a)
		if err != nil {
			return nil, err
		}
		items = append(items, artist)
	}

	result := &pager.Page[release.Artist]{Items: items}
	if page.Next != "" && page.Cursor.After != "" {
		cursor := page.Cursor.After
		result.Next = func(ctx context.Context) (*pager.Page[release.Artist], error) {
			return c.followedArtistsPage(ctx, cursor)
		}
	}
	return result, nil
}

func convertArtist(a spotify.FullArtist) (release.Artist, error) {
	if a.ID == "" {
		return release.Artist{}, malformed("artist", fmt.Sprintf("missing id for %q", a.Name))
	}
	if a.Name == "" {
		return release.Artist{}, malformed("artist", fmt.Sprintf("missing name for %s", a.ID))
	}
	return release.Artist{ID: a.ID.String(), Name: a.Name}, nil
}
