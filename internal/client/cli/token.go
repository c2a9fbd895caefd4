package cli

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims matches the claims the server reads from a bearer token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Principal string `json:"principal"`
}

// mintToken signs an HS256 development token for principal.
func mintToken(principal string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Principal: principal,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
