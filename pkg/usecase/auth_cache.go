package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedPrincipal struct {
	principal *auth.Principal
	expiresAt time.Time
}

// authCache remembers verified tokens by digest so the raw token is never
// held as a map key
type authCache struct {
	cache sync.Map
	now   func() time.Time
}

func newAuthCache() *authCache {
	return &authCache{now: time.Now}
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (c *authCache) get(token string) (*auth.Principal, bool) {
	key := tokenDigest(token)
	val, ok := c.cache.Load(key)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedPrincipal)
	if !c.now().Before(cached.expiresAt) {
		c.cache.Delete(key)
		return nil, false
	}

	return cached.principal, true
}

// set caches p until tokenExpiry or for authCacheTTL, whichever is earlier.
// A zero tokenExpiry means the token does not expire.
func (c *authCache) set(token string, p *auth.Principal, tokenExpiry time.Time) {
	expiresAt := c.now().Add(authCacheTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}
	c.cache.Store(tokenDigest(token), &cachedPrincipal{
		principal: p,
		expiresAt: expiresAt,
	})
}
