package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/browser"
	"github.com/alryaz/go-music-browser/internal/models"
)

// Browse expands one node of the browse tree and prints it.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	contentType := cmd.String("type")
	contentID := cmd.String("id")
	if contentType == "" {
		contentType = models.TypeLibrary
	}
	if contentID == "" {
		contentID = contentType
	}

	mode, err := viewMode(cmd)
	if err != nil {
		return err
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}

	node, err := b.Browse(ctx, contentType, contentID, !cmd.Bool("no-children"), mode, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(node, cmd.Bool("pretty"))
	}

	r.printNode(node, 0)
	return nil
}

func (r *Runner) printNode(node *browser.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	marker := " "
	if node.CanPlay {
		marker = "♪"
	}

	r.writePlain("%s%s %s", indent, marker, node.Title)
	if node.CanExpand {
		r.writePlain("  [%s]", models.Describe(node.ContentType, node.ContentID))
	}
	r.writePlain("\n")

	for _, child := range node.Children {
		r.printNode(child, depth+1)
	}
}

func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"ls"},
		Usage:   "Expand and print one node of the browse tree",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Content type (library, menu, track, album, artist, playlist, ...)",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Content identifier",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "View mode: cloud or pull",
				Value: "cloud",
			},
			&cli.BoolFlag{
				Name:  "no-children",
				Usage: "Skip child expansion",
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
		Action: r.Browse,
	}
}
