package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

func samplePlaylist() *models.Playlist {
	return &models.Playlist{
		UID:        "42",
		PlaylistID: "17",
		Name:       "Test Playlist",
		TrackCount: 2,
		Tracks: []models.Track{
			{ID: "1", Name: "First Song", Artists: []string{"Artist A"}, AlbumTitle: "Album X", DurationMS: 185000},
			{ID: "2", Name: "Second Song", Artists: []string{"Artist B", "Artist C"}, DurationMS: 62000},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(samplePlaylist())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header plus 2 records, got %d lines", len(lines))
		}
		if lines[0] != "ID,Title,Artists,Album,Duration" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.Contains(lines[2], "Artist B; Artist C") {
			t.Errorf("expected joined artists, got %q", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(samplePlaylist())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		text := string(data)
		if !strings.HasPrefix(text, "# Test Playlist") {
			t.Errorf("expected title heading, got %q", text)
		}
		if !strings.Contains(text, "**Tracks**: 2") {
			t.Error("expected track count line")
		}
		if !strings.Contains(text, "1. Artist A - First Song (Album X) [3:05]") {
			t.Errorf("unexpected track line in %q", text)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(samplePlaylist())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		text := string(data)
		if !strings.Contains(text, "Playlist: Test Playlist") {
			t.Error("expected playlist header")
		}
		if !strings.Contains(text, "2. Artist B, Artist C - Second Song") {
			t.Errorf("unexpected track line in %q", text)
		}
	})

	t.Run("ExportToM3U", func(t *testing.T) {
		t.Run("with URL resolution", func(t *testing.T) {
			urlFor := func(track *models.Track) string {
				return "http://music.lan/stream/" + track.ID
			}

			data, err := ExportToM3U(samplePlaylist(), urlFor)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			text := string(data)
			if !strings.HasPrefix(text, "#EXTM3U") {
				t.Errorf("expected M3U header, got %q", text)
			}
			if !strings.Contains(text, "http://music.lan/stream/1") {
				t.Error("expected resolved member URL")
			}
			if !strings.Contains(text, "Artist A - First Song") {
				t.Error("expected member title")
			}
		})

		t.Run("falls back to catalog references", func(t *testing.T) {
			data, err := ExportToM3U(samplePlaylist(), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(string(data), "track/1") {
				t.Errorf("expected catalog reference fallback, got %q", string(data))
			}
		})

		t.Run("empty playlist", func(t *testing.T) {
			empty := &models.Playlist{PlaylistID: "3", Name: "Empty"}
			data, err := ExportToM3U(empty, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(string(data), "#EXTM3U") {
				t.Errorf("expected a valid empty manifest, got %q", string(data))
			}
		})
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Export(samplePlaylist(), "xml", nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "playlist.csv")

	if err := WriteExport(samplePlaylist(), "csv", path, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "First Song") {
		t.Error("expected exported track data")
	}
}
