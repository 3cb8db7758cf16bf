package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/shared"
	"github.com/alryaz/go-music-browser/internal/ui"
)

// TUI launches the interactive terminal catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	mode, err := viewMode(cmd)
	if err != nil {
		return err
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}

	// Silence logs so they do not interfere with TUI rendering
	shared.SetLogLevel(r.logger, log.FatalLevel)

	model := ui.NewModel(ctx, b, mode)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse the catalog interactively",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "mode",
				Usage: "View mode: cloud or pull",
				Value: "cloud",
			},
		},
		Action: r.TUI,
	}
}
