package shared

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can learn from a bearer token without the signing key.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
	IssuedAt  time.Time
}

// Expired reports whether the token has an expiry at or before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// InspectToken decodes the claims of a JWT access token without verifying its signature.
//
// The service issues opaque tokens as far as this client is concerned; an error only means
// the token is not a JWT, which callers treat as "expiry unknown".
func InspectToken(raw string) (TokenClaims, error) {
	if raw == "" {
		return TokenClaims{}, fmt.Errorf("%w: empty token", ErrNotAuthenticated)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: token is not a JWT: %v", ErrInvalidInput, err)
	}

	var out TokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, nil
}
