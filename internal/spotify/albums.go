package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/spotify-release-radar/internal/pager"
	"github.com/justestif/spotify-release-radar/internal/release"
)

const trackURLPrefix = "https://open.spotify.com/track/"

// releaseTypes limits artist albums to the artist's own albums and singles.
var releaseTypes = []spotify.AlbumType{spotify.AlbumTypeAlbum, spotify.AlbumTypeSingle}

// ArtistAlbums retrieves all albums and singles for an artist.
// Any page failure is returned.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string) ([]release.Album, error) {
	page, err := c.api.GetArtistAlbums(ctx, spotify.ID(artistID), releaseTypes, spotify.Limit(pageLimit))
	if err != nil {
		return nil, wrapRemote("fetching artist albums", err)
	}

	first, err := c.albumPage(page, artistID)
	if err != nil {
		return nil, err
	}
	return pager.Collect(ctx, first)
}

func (c *Client) albumPage(page *spotify.SimpleAlbumPage, artistID string) (*pager.Page[release.Album], error) {
	items := make([]release.Album, 0, len(page.Albums))
	for _, a := range page.Albums {
		if a.ID == "" {
			return nil, malformed("album", fmt.Sprintf("missing id for %q", a.Name))
		}
		items = append(items, release.Album{
			ID:          a.ID.String(),
			Name:        a.Name,
			ReleaseDate: a.ReleaseDate,
			Precision:   a.ReleaseDatePrecision,
			ArtistID:    artistID,
		})
	}

	result := &pager.Page[release.Album]{Items: items}
	if page.Next != "" {
		result.Next = func(ctx context.Context) (*pager.Page[release.Album], error) {
			err := c.api.NextPage(ctx, page)
			if errors.Is(err, spotify.ErrNoMorePages) {
				return nil, nil
			}
			if err != nil {
				return nil, wrapRemote("fetching next page of artist albums", err)
			}
			return c.albumPage(page, artistID)
		}
	}
	return result, nil
}

// AlbumTracks retrieves all tracks on an album.
// Any page failure is returned.
func (c *Client) AlbumTracks(ctx context.Context, albumID string) ([]release.Track, error) {
	page, err := c.api.GetAlbumTracks(ctx, spotify.ID(albumID), spotify.Limit(pageLimit))
	if err != nil {
		return nil, wrapRemote("fetching album tracks", err)
	}

	first, err := c.trackPage(page, albumID)
	if err != nil {
		return nil, err
	}
	return pager.Collect(ctx, first)
}

func (c *Client) trackPage(page *spotify.SimpleTrackPage, albumID string) (*pager.Page[release.Track], error) {
	items := make([]release.Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		track, err := convertTrack(t, albumID)
		if err != nil {
			return nil, err
		}
		items = append(items, track)
	}

	result := &pager.Page[release.Track]{Items: items}
	if page.Next != "" {
		result.Next = func(ctx context.Context) (*pager.Page[release.Track], error) {
			err := c.api.NextPage(ctx, page)
			if errors.Is(err, spotify.ErrNoMorePages) {
				return nil, nil
			}
			if err != nil {
				return nil, wrapRemote("fetching next page of album tracks", err)
			}
			return c.trackPage(page, albumID)
		}
	}
	return result, nil
}

// convertTrack converts a Spotify SimpleTrack to release.Track.
// Tracks without an external URL get the canonical open.spotify.com link.
func convertTrack(t spotify.SimpleTrack, albumID string) (release.Track, error) {
	if t.ID == "" {
		return release.Track{}, malformed("track", fmt.Sprintf("missing id for %q", t.Name))
	}

	url := t.ExternalURLs["spotify"]
	if url == "" {
		url = trackURLPrefix + t.ID.String()
	}

	return release.Track{
		ID:      t.ID.String(),
		Name:    t.Name,
		URL:     url,
		AlbumID: albumID,
	}, nil
}
