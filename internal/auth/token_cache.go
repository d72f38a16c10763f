package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"techcrew/internal/logger"
)

// ExpiryBuffer is how long before expiry a cached token stops being
// trusted.
const ExpiryBuffer = 30 * time.Second

// CachedClaims is a verified token's claims with the time the cache entry
// stops being valid.
type CachedClaims struct {
	Claims    Claims    `json:"claims"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *CachedClaims) IsValid(now time.Time) bool {
	if c == nil || c.Claims.Subject == "" {
		return false
	}
	return now.Add(ExpiryBuffer).Before(c.ExpiresAt)
}

// ClaimsCache stores verified claims by token digest. Get returns nil on
// a miss.
type ClaimsCache interface {
	Get(ctx context.Context, key string) (*CachedClaims, error)
	Set(ctx context.Context, key string, c CachedClaims, ttl time.Duration) error
}

// CachingVerifier skips signature checks for tokens verified recently.
type CachingVerifier struct {
	Next   Verifier
	Cache  ClaimsCache
	MaxTTL time.Duration
	Log    *logger.Logger
	Now    func() time.Time
}

func (v *CachingVerifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func (v *CachingVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	key := tokenDigest(raw)
	now := v.now()

	cached, err := v.Cache.Get(ctx, key)
	if err != nil {
		v.Log.Warn("AUTH", "Claims cache read failed: "+err.Error())
	} else if cached.IsValid(now) {
		return cached.Claims, nil
	}

	c, err := v.Next.Verify(ctx, raw)
	if err != nil {
		return Claims{}, err
	}

	expires := c.ExpiresAt
	if v.MaxTTL > 0 && (expires.IsZero() || expires.Sub(now) > v.MaxTTL) {
		expires = now.Add(v.MaxTTL)
	}
	if ttl := expires.Sub(now); ttl > ExpiryBuffer {
		if err := v.Cache.Set(ctx, key, CachedClaims{Claims: c, ExpiresAt: expires}, ttl); err != nil {
			v.Log.Warn("AUTH", "Claims cache write failed: "+err.Error())
		}
	}
	return c, nil
}

func tokenDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
