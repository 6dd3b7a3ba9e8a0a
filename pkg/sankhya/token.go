package sankhya

import (
	"context"
	"sync"
)

// Authenticator obtains a fresh bearer token.
type Authenticator interface {
	Login(ctx context.Context) (string, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context) (string, error)

// Login calls f.
func (f AuthenticatorFunc) Login(ctx context.Context) (string, error) { return f(ctx) }

// TokenCache holds the process-wide Sankhya bearer token. Build one per
// process and share it by reference.
//
// Login runs outside the lock, so concurrent misses may each log in; the last
// successful login wins.
type TokenCache struct {
	auth Authenticator

	mu    sync.RWMutex
	token string
}

// NewTokenCache returns an empty cache backed by auth.
func NewTokenCache(auth Authenticator) *TokenCache {
	return &TokenCache{auth: auth}
}

// Get returns the cached token, logging in when the cache is empty.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	if tok := c.Cached(); tok != "" {
		return tok, nil
	}
	return c.Refresh(ctx)
}

// Refresh logs in unconditionally and stores the new token. On failure the
// cache is left empty.
func (c *TokenCache) Refresh(ctx context.Context) (string, error) {
	tok, err := c.auth.Login(ctx)
	if err != nil {
		c.Invalidate()
		return "", err
	}

	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return tok, nil
}

// Invalidate clears the cached token.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Cached returns the current token without logging in. Empty means absent.
func (c *TokenCache) Cached() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}
