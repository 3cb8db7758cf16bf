package auth

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/alryaz/go-music-browser/internal/shared"
)

// callerProvider adapts a triggering caller's paired session into the
// cascade. Tried first because it costs nothing.
type callerProvider struct {
	caller Caller
}

func (p *callerProvider) Name() string { return "caller" }

func (p *callerProvider) Authenticate(ctx context.Context) (string, error) {
	token, err := p.caller.SessionToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("%w: caller holds no session", shared.ErrNotAuthenticated)
	}
	return token, nil
}

// StoreProvider reuses a previously persisted session token; if only a
// refresh token survives, it performs one token exchange.
type StoreProvider struct {
	Store TokenStore
}

func (p *StoreProvider) Name() string { return "store" }

func (p *StoreProvider) Authenticate(ctx context.Context) (string, error) {
	accessToken, refreshToken, err := p.Store.Load(ctx)
	if err != nil {
		return "", err
	}

	if accessToken != "" {
		return accessToken, nil
	}

	if refreshToken != "" {
		token, err := exchangeRefreshToken(ctx, refreshToken)
		if err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
		}
		return token, nil
	}

	return "", fmt.Errorf("%w: store holds no session", shared.ErrNotAuthenticated)
}

// CredentialsProvider walks the statically configured credential list in
// order; each entry failure is logged and the next entry attempted.
type CredentialsProvider struct {
	Credentials []shared.CredentialConfig
	Logger      *log.Logger
}

func (p *CredentialsProvider) Name() string { return "credentials" }

func (p *CredentialsProvider) Authenticate(ctx context.Context) (string, error) {
	if len(p.Credentials) == 0 {
		return "", shared.ErrNoCredentials
	}

	logger := p.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	for i, credential := range p.Credentials {
		var token string
		var err error

		if credential.RefreshToken != "" {
			token, err = exchangeRefreshToken(ctx, credential.RefreshToken)
		} else if oauthToken, exchangeErr := oauthConfig().PasswordCredentialsToken(ctx, credential.Username, credential.Password); exchangeErr != nil {
			err = exchangeErr
		} else {
			token = oauthToken.AccessToken
		}

		if err != nil {
			logger.Warn("credential entry failed", "entry", i, "error", err)
			continue
		}

		return token, nil
	}

	return "", fmt.Errorf("%w: no credential entry succeeded", shared.ErrAuthFailed)
}
