// Package token reads the expiry of the session token without verifying it.
// The signing key lives on the server; the console only needs to know when
// to stop replaying an expired cookie.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt returns the exp claim of a JWT. ok is false when the value is
// not a JWT or carries no expiry.
func ExpiresAt(raw string) (exp time.Time, ok bool) {
	if raw == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// Expired reports whether raw is a JWT whose expiry is at or before now.
// Opaque tokens are never considered expired.
func Expired(raw string, now time.Time) bool {
	exp, ok := ExpiresAt(raw)
	if !ok {
		return false
	}
	return !now.Before(exp)
}
