package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CacheStats prints the current in-memory cache size.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Entries: %d\n", b.Cache().Len())
	r.writePlain("TTL: %s\n", r.config.CacheTTLDuration())
	return nil
}

// CacheClear drops every cached browse node.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}

	b.Cache().Clear()
	r.writePlain("✓ Cache cleared\n")
	return nil
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the browse node cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count and TTL",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Drop all cached nodes",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
		},
	}
}
