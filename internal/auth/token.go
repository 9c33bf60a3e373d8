package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired does a local expiry check on a provider-issued JWT before
// spending a provider round trip on it. The signature is NOT verified here;
// the provider's GetUser call is the authority on validity.
func TokenExpired(tokenString string, now time.Time) (bool, error) {
	parser := jwt.NewParser()

	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return false, fmt.Errorf("failed to decode session token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, fmt.Errorf("session token has no expiration claim")
	}

	return now.After(exp.Time), nil
}
