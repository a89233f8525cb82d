package whatsapp

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultTokenTTL = 86400 * time.Second
	tokenSkew       = 60 * time.Second
	minTokenTTL     = 60 * time.Second
)

// SigninFunc obtains a fresh token and its lifetime from the gateway
type SigninFunc func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// TokenCache holds the gateway access token. Concurrent callers that find it
// expired share a single signin.
type TokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group  singleflight.Group
	signin SigninFunc
	now    func() time.Time
}

// NewTokenCache creates a cache that refreshes through signin
func NewTokenCache(signin SigninFunc, now func() time.Time) *TokenCache {
	if now == nil {
		now = time.Now
	}
	return &TokenCache{signin: signin, now: now}
}

// Get returns a cached token or signs in again
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do("signin", func() (any, error) {
		tok, ttl, err := c.signin(ctx)
		if err != nil {
			return "", err
		}
		c.store(tok, ttl)
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next Get signs in
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *TokenCache) store(token string, expiresIn time.Duration) {
	if expiresIn <= 0 {
		expiresIn = defaultTokenTTL
	}
	ttl := expiresIn - tokenSkew
	if ttl < minTokenTTL {
		ttl = minTokenTTL
	}
	c.mu.Lock()
	c.token = token
	c.expiresAt = c.now().Add(ttl)
	c.mu.Unlock()
}
