package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/server"
)

// Serve runs the HTTP delivery and browse API server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		r.config.Server.Port = int(port)
	}
	if externalURL := cmd.String("external-url"); externalURL != "" {
		r.config.Server.ExternalURL = externalURL
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}
	defer b.Teardown()

	srv := server.New(r.config, b, r.logger)
	return srv.ListenAndServe(ctx)
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP browse API and media delivery server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind address override",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port override",
			},
			&cli.StringFlag{
				Name:  "external-url",
				Usage: "Base URL reachable by playback clients",
			},
		},
		Action: r.Serve,
	}
}
