package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/shared"
)

// AuthLogin forces a full authentication cascade and reports the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if _, err := r.Browser(ctx); err != nil {
		return err
	}

	session, err := r.coordinator.Session(ctx, nil)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	r.writePlain("✓ Authenticated\n")
	r.writePlain("User ID: %s\n", session.UserID)
	return nil
}

// AuthStatus reports the live session and what the store holds.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	if _, err := r.Browser(ctx); err != nil {
		return err
	}

	if session := r.coordinator.Active(); session != nil {
		r.writePlain("Session: active (user %s)\n", session.UserID)
	} else {
		r.writePlain("Session: none\n")
	}

	if r.store == nil {
		r.writePlain("Store: disabled\n")
		return nil
	}

	accessToken, refreshToken, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session store: %w", err)
	}

	r.writePlain("Store: access token %s, refresh token %s\n",
		presence(accessToken), presence(refreshToken))
	return nil
}

// AuthLogout clears the stored session and tears down live browser state.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd); err != nil {
		return err
	}

	b, err := r.Browser(ctx)
	if err != nil {
		return err
	}

	if r.store == nil {
		return fmt.Errorf("%w: no session store configured", shared.ErrMissingConfig)
	}

	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session store: %w", err)
	}
	b.Teardown()

	r.writePlain("✓ Logged out\n")
	return nil
}

func presence(token string) string {
	if token == "" {
		return "absent"
	}
	return "present"
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the catalog session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate against the catalog now",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show session and store state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session and invalidate live state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
		},
	}
}
