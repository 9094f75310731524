package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims carries the token payload: subject and uid hold the user id,
// issued-at drives password-change invalidation.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// UserID returns the user id encoded in the token
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// IssuedAtTime returns the issued-at instant, zero when absent
func (c *JWTClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiresAtTime returns the expiry instant, zero when absent
func (c *JWTClaims) ExpiresAtTime() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
