package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hvostov/inkline/config"
)

// Sessions are stateless bearer tokens: the signed claims carry everything
// the middleware needs to resolve the acting user, so feed and write
// handlers never touch the users table for authentication. Revocation before
// natural expiry goes through the token blacklist.

var (
	// ErrSessionExpired marks a token that was valid but outlived its TTL.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalid marks a token that never was valid.
	ErrSessionInvalid = errors.New("invalid session token")
)

// SessionClaims identifies the acting user for the lifetime of a session.
// Username is embedded so admin checks and logging work without a lookup.
type SessionClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionTTL returns the configured session lifetime.
func SessionTTL() time.Duration {
	return time.Duration(config.Get().SessionTTLHours) * time.Hour
}

// IssueSessionToken signs a session token for the user. The lifetime comes
// from configuration so register, login, and OAuth all issue the same kind
// of session.
func IssueSessionToken(userID uint, username string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Get().JWTSecret))
}

// ParseSessionToken validates a bearer token and returns the session claims.
// Expired sessions are reported as ErrSessionExpired so callers can tell a
// stale login from a forged token.
func ParseSessionToken(tokenStr string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionInvalid
		}
		return []byte(config.Get().JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.UserID == 0 {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}
