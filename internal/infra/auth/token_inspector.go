// Package auth provides concrete implementations for authentication-related
// domain services.
package auth

import (
	"time"

	"studybuddy/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// jwtInspector reads claims out of access tokens without verifying them.
// The client never holds the signing secret; only the server's responses
// decide whether a token is actually valid.
type jwtInspector struct{}

// NewTokenInspector is the constructor for jwtInspector.
func NewTokenInspector() service.TokenInspector {
	return &jwtInspector{}
}

// Expiry returns the token's exp claim. An opaque (non-JWT) token or one
// without an exp claim yields an error; callers use this for diagnostics
// only and must tolerate that.
func (i *jwtInspector) Expiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to parse token")
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("token has no expiration claim")
	}

	return exp.Time, nil
}
