// internal/pkg/auth/jwt.go
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the storefront can learn from a bearer token without
// the backend's signing key
type TokenInfo struct {
	IsJWT     bool
	Subject   string
	ExpiresAt *time.Time
}

// InspectToken decodes a bearer token without verifying its signature.
// Verification is the backend's job; the storefront only uses this to drop
// sessions that have visibly expired. Non-JWT tokens are reported as opaque.
func InspectToken(token string) TokenInfo {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{IsJWT: true}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	return info
}

// Expired reports whether the token carries an expiry that has passed
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// BearerHeader formats the Authorization header value for a token
func BearerHeader(token string) string {
	return "Bearer " + token
}

// ExtractTokenFromHeader extracts the token from an Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}
	return ""
}
