// Package report renders the tracks collected by a radar run.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/justestif/spotify-release-radar/internal/playlist"
	"github.com/justestif/spotify-release-radar/internal/release"
)

// maxTextWidth keeps long titles from pushing the URL column off screen.
const maxTextWidth = 40

var headers = table.Row{"#", "Artist", "Track", "Album", "Released", "URL"}

// Tracks renders records as a table. It returns an empty string when there
// is nothing to show.
func Tracks(records []release.Record) string {
	if len(records) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(headers)

	for i, r := range records {
		tw.AppendRow(table.Row{strconv.Itoa(i + 1), r.Artist, r.Track, r.Album, r.ReleaseDate, r.TrackURL})
	}

	tw.AppendFooter(table.Row{"", "", "", "", "Total", strconv.Itoa(len(records))})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 2, WidthMax: maxTextWidth, WidthMaxEnforcer: text.WrapSoft},
		{Number: 3, WidthMax: maxTextWidth, WidthMaxEnforcer: text.WrapSoft},
		{Number: 4, WidthMax: maxTextWidth, WidthMaxEnforcer: text.WrapSoft},
		{Number: 5, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

// Summary writes the success banner for a created playlist followed by the
// track table. Nothing is written when no playlist was created.
func Summary(w io.Writer, pl *playlist.Playlist, records []release.Record) error {
	if pl == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n✨ Success! ✨\n")
	fmt.Fprintf(&b, "Created playlist %q with %d tracks!\n", pl.Name, len(records))
	if pl.URL != "" {
		fmt.Fprintf(&b, "Playlist URL: %s\n", pl.URL)
	}
	if rendered := Tracks(records); rendered != "" {
		b.WriteString("\n")
		b.WriteString(rendered)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
