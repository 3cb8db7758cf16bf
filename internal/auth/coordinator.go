package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/alryaz/go-music-browser/internal/metrics"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// UserIDFunc resolves the catalog user id for a freshly obtained token.
// Injected so the coordinator does not depend on the catalog client directly.
type UserIDFunc func(ctx context.Context, token string) (string, error)

// attempt is the shared future observed by every caller that arrives while
// authentication is in flight.
type attempt struct {
	done    chan struct{}
	session *Session
	err     error
}

// Coordinator owns the process-wide authentication state machine:
// Absent -> Pending -> {Active, Absent}.
type Coordinator struct {
	providers []Provider
	userID    UserIDFunc
	store     TokenStore
	logger    *log.Logger

	mu      sync.Mutex
	session *Session
	pending *attempt
}

// NewCoordinator creates a Coordinator with a static provider cascade,
// resolved once at startup. store may be nil; successful tokens are then not
// persisted.
func NewCoordinator(providers []Provider, userID UserIDFunc, store TokenStore, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Coordinator{
		providers: providers,
		userID:    userID,
		store:     store,
		logger:    shared.WithLogger(logger, "component", "auth"),
	}
}

// Session returns the live catalog session, authenticating on first call.
//
// caller may be nil; when non-nil its paired session is tried before any
// configured provider. Safe for concurrent use: callers arriving during an
// in-flight attempt all observe that attempt's single outcome. A failed
// attempt resets state so a later call retries from scratch.
func (c *Coordinator) Session(ctx context.Context, caller Caller) (*Session, error) {
	c.mu.Lock()

	if c.session != nil {
		session := c.session
		c.mu.Unlock()
		return session, nil
	}

	if pending := c.pending; pending != nil {
		c.mu.Unlock()
		select {
		case <-pending.done:
			return pending.session, pending.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	current := &attempt{done: make(chan struct{})}
	c.pending = current
	c.mu.Unlock()

	session, err := c.authenticate(ctx, caller)

	c.mu.Lock()
	if err == nil {
		c.session = session
	}
	c.pending = nil
	c.mu.Unlock()

	current.session = session
	current.err = err
	close(current.done)

	return session, err
}

// authenticate runs the provider cascade outside any lock.
func (c *Coordinator) authenticate(ctx context.Context, caller Caller) (*Session, error) {
	providers := c.providers
	if caller != nil {
		providers = append([]Provider{&callerProvider{caller: caller}}, providers...)
	}

	for _, provider := range providers {
		token, err := provider.Authenticate(ctx)
		if err != nil {
			c.logger.Warn("provider failed", "provider", provider.Name(), "error", err)
			continue
		}

		userID, err := c.userID(ctx, token)
		if err != nil {
			c.logger.Warn("session unusable", "provider", provider.Name(), "error", err)
			continue
		}

		c.logger.Info("authenticated", "provider", provider.Name(), "user_id", userID)
		metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()

		if c.store != nil && provider.Name() != "store" {
			if err := c.store.Save(ctx, token); err != nil {
				c.logger.Warn("failed to persist session token", "error", err)
			}
		}

		return &Session{Token: token, UserID: userID}, nil
	}

	metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
	return nil, fmt.Errorf("%w: all providers exhausted", shared.ErrAuthFailed)
}

// Active returns the current session without triggering authentication.
func (c *Coordinator) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Reset discards the live session so the next call authenticates again.
// Used on unload and on terminal session errors.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}
