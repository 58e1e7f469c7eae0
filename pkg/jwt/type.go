package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims represents the token claims read by the client.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
