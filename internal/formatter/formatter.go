// package formatter provides functions to export playlist listings to various formats (CSV, Markdown, M3U, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// TrackURLFunc maps a playlist member to a playable location. A nil func or
// an empty result falls back to the track's catalog identifier.
type TrackURLFunc func(track *models.Track) string

// ExportToCSV converts a playlist listing to CSV format with columns: ID, Title, Artists, Album, Duration
func ExportToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artists", "Album", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range playlist.Tracks {
		record := []string{
			track.ID,
			track.Name,
			strings.Join(track.Artists, "; "),
			track.AlbumTitle,
			strconv.Itoa(track.DurationMS),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist listing to Markdown format
func ExportToMarkdown(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(playlist.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		duration := shared.FormatDuration(track.DurationMS)
		albumPart := ""
		if track.AlbumTitle != "" {
			albumPart = fmt.Sprintf(" (%s)", track.AlbumTitle)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, artistLine(track), track.Name, albumPart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist listing to plain text format
func ExportToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(playlist.Tracks)))

	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, artistLine(track), track.Name))
	}

	return buf.Bytes(), nil
}

// ExportToM3U converts a playlist listing to an extended M3U media playlist.
func ExportToM3U(playlist *models.Playlist, urlFor TrackURLFunc) ([]byte, error) {
	size := len(playlist.Tracks)
	if size == 0 {
		size = 1
	}

	manifest, err := m3u8.NewMediaPlaylist(uint(size), uint(size))
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest: %w", err)
	}

	for _, track := range playlist.Tracks {
		location := ""
		if urlFor != nil {
			location = urlFor(&track)
		}
		if location == "" {
			location = models.Describe(string(models.KindTrack), track.ID)
		}

		title := fmt.Sprintf("%s - %s", artistLine(track), track.Name)
		duration := float64(track.DurationMS) / 1000
		if err := manifest.Append(location, duration, title); err != nil {
			return nil, fmt.Errorf("failed to append track: %w", err)
		}
	}
	manifest.Close()

	return manifest.Encode().Bytes(), nil
}

// Export dispatches on a format name; supported formats are csv, md, m3u and txt.
func Export(playlist *models.Playlist, format string, urlFor TrackURLFunc) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(playlist)
	case "md", "markdown":
		return ExportToMarkdown(playlist)
	case "m3u", "m3u8":
		return ExportToM3U(playlist, urlFor)
	case "txt", "text":
		return ExportToText(playlist)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, format)
	}
}

// WriteExport renders the playlist in the given format and writes it to path.
func WriteExport(playlist *models.Playlist, format, path string, urlFor TrackURLFunc) error {
	data, err := Export(playlist, format, urlFor)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	return nil
}

func artistLine(track models.Track) string {
	if len(track.Artists) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(track.Artists, ", ")
}
