// Package jwt provides client-side inspection of bearer tokens.
//
// The client does not hold the signing secret; signature verification is the
// server's job. Claims read here are used only for diagnostics, such as
// warning about an expired token before dialing.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspect parses a token without verifying its signature and returns its
// claims.
func Inspect(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	_, _, err := parser.ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// IsExpired reports whether the claims carry an expiry in the past.
// Tokens without an exp claim are treated as unexpired.
func (c *Claims) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Before(now)
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}
