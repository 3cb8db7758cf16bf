package resolver

import (
	"crypto/subtle"
	"sync"

	"github.com/alryaz/go-music-browser/internal/shared"
)

// TokenGuard holds the process-wide capability token gating the delivery
// endpoint. The token is generated lazily on first need and regenerated on
// unload, invalidating previously handed-out delivery URLs.
type TokenGuard struct {
	mu    sync.Mutex
	token string
}

// Current returns the capability token, generating it on first call.
func (g *TokenGuard) Current() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == "" {
		g.token = shared.GenerateID()
	}
	return g.token
}

// Matches reports whether candidate equals the live token. A guard that has
// never handed out a token matches nothing.
func (g *TokenGuard) Matches(candidate string) bool {
	g.mu.Lock()
	token := g.token
	g.mu.Unlock()

	if token == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1
}

// Rotate discards the live token; the next Current call generates a fresh
// one.
func (g *TokenGuard) Rotate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
}
