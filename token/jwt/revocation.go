package jwt

import (
	"sync"
	"time"
)

// RevokedTokenCache remembers revoked token IDs for as long as the tokens
// themselves would still verify.
type RevokedTokenCache interface {
	RevokedChecker
	Add(jti string, exp time.Time)
	Cleanup()
}

// InMemoryRevokedTokenCache keys expiry times by jti. Lookups drop entries
// whose token has expired, so Cleanup is only needed for IDs never looked up
// again.
type InMemoryRevokedTokenCache struct {
	lock    sync.Mutex
	expires map[string]time.Time
}

func NewInMemoryRevokedTokenCache() RevokedTokenCache {
	return &InMemoryRevokedTokenCache{expires: map[string]time.Time{}}
}

// Add revokes jti until exp. Tokens without an ID cannot be revoked.
func (c *InMemoryRevokedTokenCache) Add(jti string, exp time.Time) {
	if jti == "" || !exp.After(NowTimeFunc()) {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if current, ok := c.expires[jti]; !ok || exp.After(current) {
		c.expires[jti] = exp
	}
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	exp, ok := c.expires[jti]
	if !ok {
		return false
	}
	if !exp.After(NowTimeFunc()) {
		delete(c.expires, jti)
		return false
	}
	return true
}

// Cleanup drops every entry whose token has expired
func (c *InMemoryRevokedTokenCache) Cleanup() {
	now := NowTimeFunc()
	c.lock.Lock()
	defer c.lock.Unlock()
	for jti, exp := range c.expires {
		if !exp.After(now) {
			delete(c.expires, jti)
		}
	}
}

// Len is the number of IDs currently held
func (c *InMemoryRevokedTokenCache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.expires)
}
