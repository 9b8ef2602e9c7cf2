// Package auth provides the session cookie and the middleware that guards
// the dashboard API.
//
// SESSION FLOW OVERVIEW:
//  1. Client posts credentials to /auth/login or /auth/signup
//  2. The session service validates them and stores the singleton Session
//  3. The handler signs a JWT whose subject is that Session's id and sets it
//     as an HttpOnly cookie
//  4. On every protected call, RequireSession validates the JWT, then asks
//     the session service whether the stored Session is still valid and is
//     the same one the cookie was issued for
//
// WHY CHECK BOTH?
// The JWT proves the cookie came from us. The stored Session is the source
// of truth for expiry and logout: a second login overwrites the Session, so
// cookies issued for the old one stop working even though their signature
// is still fine.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie lifetimes. A non-remembered session expires after SessionTTL; the
// cookie lasts exactly as long. Remembered sessions never expire on the
// server, so RequireSession re-issues their cookie with a fresh RememberTTL
// on every request: the cookie only lapses after RememberTTL without any
// use.
const (
	SessionTTL  = 24 * time.Hour
	RememberTTL = 30 * 24 * time.Hour

	issuer = "focusboard"
)

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. "sub" holds the Session id.
type claims struct {
	jwt.RegisteredClaims
}

// TTL returns the cookie lifetime for a session.
func TTL(remember bool) time.Duration {
	if remember {
		return RememberTTL
	}
	return SessionTTL
}

// Generate signs a token for sessionID that expires after d.
func (s *TokenService) Generate(sessionID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns the Session id it was
// issued for.
//
// WithValidMethods pins HS256 so a token claiming "alg: none" (or an
// asymmetric algorithm) is rejected before the key func runs.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
