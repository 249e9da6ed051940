package cache

import (
	"time"
)

// ExpirySkew is subtracted from a token's expiry so a cached token is never
// handed out moments before the portal rejects it.
const ExpirySkew = time.Minute

// Entry represents a cached portal token.
type Entry struct {
	// Token is the value sent as the token query parameter
	Token string `json:"token"`

	// Expires is when the portal stops accepting the token
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this token
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the token is expired or about to expire.
func (e *Entry) IsExpired() bool {
	return e.TTL() == 0
}

// TTL returns how long the token may still be used.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires) - ExpirySkew
	if ttl < 0 {
		return 0
	}
	return ttl
}
