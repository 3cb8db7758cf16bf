package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/formatter"
	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/resolver"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// Export fetches a playlist listing and writes it in the requested format.
//
// M3U exports point members at the delivery endpoint when an external URL is
// configured; otherwise entries carry bare catalog references.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	playlistID := cmd.String("id")
	if playlistID == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}

	media, registry, err := b.Delivery(ctx, string(models.KindPlaylist), playlistID)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	cached, ok := media.(*models.Playlist)
	if !ok {
		return fmt.Errorf("%w: %s is not a playlist", shared.ErrInvalidInput, playlistID)
	}

	// Detach from the cached entity before filling in members.
	local := *cached
	playlist := &local

	if len(playlist.Tracks) == 0 {
		members, err := resolver.ExpandPlaylist(ctx, registry.Deps(), playlist)
		if err != nil {
			return fmt.Errorf("failed to expand playlist: %w", err)
		}
		for _, member := range members {
			if track, ok := member.(*models.Track); ok {
				playlist.Tracks = append(playlist.Tracks, *track)
			}
		}
	}

	var urlFor formatter.TrackURLFunc
	if deps := registry.Deps(); deps.ExternalURL != "" {
		urlFor = func(track *models.Track) string {
			return resolver.DeliveryURL(deps.ExternalURL, deps.Token(),
				string(models.KindTrack), track.ID, "track")
		}
	}

	format := cmd.String("format")
	output := cmd.String("output")
	if output == "" {
		data, err := formatter.Export(playlist, format, urlFor)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if err := formatter.WriteExport(playlist, format, output, urlFor); err != nil {
		return err
	}

	r.logger.Info("playlist exported", "playlist", playlist.Name, "format", format, "path", output)
	r.writePlain("✓ Exported %s (%d tracks) to %s\n", playlist.Name, len(playlist.Tracks), output)
	return nil
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a playlist listing to CSV, Markdown, M3U or text",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Playlist identifier (uid:kind or bare kind)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, md, m3u or txt",
				Value:   "m3u",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (stdout when omitted)",
			},
		},
		Action: r.Export,
	}
}
