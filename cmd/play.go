package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/shared"
)

// Play resolves a media reference into a playback instruction and prints it.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	contentType := cmd.String("type")
	contentID := cmd.String("id")
	if contentType == "" || contentID == "" {
		return fmt.Errorf("%w: --type and --id are required", shared.ErrMissingArgument)
	}

	mode, err := viewMode(cmd)
	if err != nil {
		return err
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}

	instruction, err := b.Play(ctx, contentType, contentID, mode, cmd.Bool("local"), nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(instruction, cmd.Bool("pretty"))
	}

	switch {
	case instruction.URL != "":
		r.writePlain("%s\n", instruction.URL)
	case instruction.Command != "":
		r.writePlain("%s\n", instruction.Command)
	case instruction.Payload != nil:
		for k, v := range instruction.Payload {
			r.writePlain("%s: %s\n", k, v)
		}
	}
	return nil
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Resolve a track or container into a playback instruction",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Usage:    "Content type of the media",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Content identifier",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "View mode: cloud or pull",
				Value: "cloud",
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Target a local device (cloud mode)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Play,
	}
}
