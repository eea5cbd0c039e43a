package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/justestif/spotify-release-radar/internal/playlist"
	"github.com/justestif/spotify-release-radar/internal/release"
)

var sampleRecords = []release.Record{
	{Artist: "A", Track: "Song One", Album: "Debut", ReleaseDate: "2024-06-12", TrackURL: "https://open.spotify.com/track/t1"},
	{Artist: "A", Track: "Song Two", Album: "Debut", ReleaseDate: "2024-06-12", TrackURL: "https://open.spotify.com/track/t2"},
}

func TestTracksTable(t *testing.T) {
	out := Tracks(sampleRecords)

	for _, want := range []string{"Artist", "Track", "Album", "Released", "URL", "Song One", "Song Two", "Debut", "2024-06-12", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ARTIST") || strings.Contains(out, "TOTAL") {
		t.Errorf("header and footer labels should keep their case:\n%s", out)
	}
	if !strings.Contains(out, "╭") {
		t.Error("expected rounded table style")
	}
	if strings.Index(out, "Song One") > strings.Index(out, "Song Two") {
		t.Error("rows are not in record order")
	}
}

func TestTracksEmpty(t *testing.T) {
	if out := Tracks(nil); out != "" {
		t.Errorf("Tracks(nil) = %q, want empty", out)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	pl := &playlist.Playlist{ID: "pl1", Name: "New Releases 2024-06-15", URL: "https://open.spotify.com/playlist/pl1"}

	if err := Summary(&buf, pl, sampleRecords); err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"✨ Success! ✨",
		`Created playlist "New Releases 2024-06-15" with 2 tracks!`,
		"Playlist URL: https://open.spotify.com/playlist/pl1",
		"Song Two",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryNoPlaylist(t *testing.T) {
	var buf bytes.Buffer
	if err := Summary(&buf, nil, nil); err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Summary() wrote %q, want nothing", buf.String())
	}
}
