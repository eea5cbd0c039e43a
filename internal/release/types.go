// Package release discovers recent releases from a user's followed artists.
package release

// Artist is a followed artist.
type Artist struct {
	ID   string
	Name string
}

// Album is an album or single released by an artist.
type Album struct {
	ID          string
	Name        string
	ReleaseDate string // "2006-01-02", "2006-01" or "2006" depending on precision
	Precision   string // "day", "month" or "year" as reported by Spotify
	ArtistID    string
}

// Track is a track on an album.
type Track struct {
	ID      string
	Name    string
	URL     string
	AlbumID string
}

// Record describes one discovered track for reporting.
type Record struct {
	Artist      string
	Track       string
	Album       string
	ReleaseDate string
	TrackURL    string
}

// Result holds the tracks found by Discover. TrackIDs and Records have the
// same length and order.
type Result struct {
	TrackIDs []string
	Records  []Record
}
