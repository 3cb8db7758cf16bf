// Package auth establishes the catalog session shared by all browse and
// play operations.
//
// A prioritized provider cascade is tried strictly in order; the first
// success wins. The [Coordinator] guarantees at most one in-flight
// authentication attempt process-wide: concurrent first callers await the
// same outcome instead of starting duplicate attempts.
package auth

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuth client identity used for token exchanges against the catalog's
// authorization server.
const (
	oauthTokenURL     = "https://oauth.music.example.net/token"
	oauthClientID     = "23cabbbdc6cd418abb4b39c32c41195d"
	oauthClientSecret = "53bc75238f0c4d08a118e51fe9203300"
)

// Session is the single live authentication result: the catalog session
// token plus the catalog user's identifier.
type Session struct {
	Token  string
	UserID string
}

// Provider is one step of the authentication cascade.
type Provider interface {
	Name() string
	// Authenticate attempts to produce a catalog session token.
	Authenticate(ctx context.Context) (string, error)
}

// Caller optionally supplies a zero-cost session shortcut: a component that
// already holds a paired device session exposes it here.
type Caller interface {
	SessionToken(ctx context.Context) (string, error)
}

// TokenStore persists session tokens between processes. Implemented by the
// store package.
type TokenStore interface {
	Load(ctx context.Context) (accessToken, refreshToken string, err error)
	Save(ctx context.Context, accessToken string) error
}

// oauthConfig builds the token-exchange configuration shared by providers.
func oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     oauthClientID,
		ClientSecret: oauthClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: oauthTokenURL},
	}
}

// exchangeRefreshToken performs a single refresh-token exchange.
func exchangeRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	source := oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
