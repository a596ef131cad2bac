package auth

import (
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	IsPremium bool   `json:"is_premium"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Principal converts the claims into the identity the rest of the server works with.
func (c *AccessClaims) Principal() *domain.Principal {
	return &domain.Principal{
		ID:        c.UserID,
		Role:      domain.Role(c.Role),
		IsPremium: c.IsPremium,
	}
}
