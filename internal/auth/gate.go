// Package auth validates sync callers: a bearer token proves identity,
// an injected allow-list decides who may run admin syncs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var (
	// ErrMissingToken means no bearer token was presented.
	ErrMissingToken = errors.New("authentication required")
	// ErrInvalidToken means the token failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotAdmin means the caller is authenticated but not allow-listed.
	ErrNotAdmin = errors.New("admin required")
)

// RowCounter reports how many rows the bootstrap target table holds.
type RowCounter interface {
	Count(ctx context.Context) (int, error)
}

// Gate authorizes sync invocations. Admin e-mails are injected once at
// construction rather than hardcoded per endpoint, so every endpoint
// enforces the same list.
type Gate struct {
	secret      []byte
	adminEmails map[string]struct{}
	setupToken  string
	players     RowCounter
}

// NewGate creates a gate. setupToken may be empty, which disables the
// bootstrap path entirely.
func NewGate(secret string, adminEmails []string, setupToken string, players RowCounter) *Gate {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Gate{
		secret:      []byte(secret),
		adminEmails: admins,
		setupToken:  setupToken,
		players:     players,
	}
}

// Claims is the token payload the gate cares about.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify checks the bearer token and returns the caller's e-mail.
func (g *Gate) Verify(bearer string) (string, error) {
	if bearer == "" {
		return "", ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(bearer, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Email == "" {
		return "", ErrInvalidToken
	}
	return strings.ToLower(claims.Email), nil
}

// Authorize verifies the bearer token and enforces the admin allow-list.
//
// An empty players table alone never grants access: seeding a fresh
// deployment requires the one-time setup token on top of a valid login,
// and every use of that path is logged.
func (g *Gate) Authorize(ctx context.Context, bearer, setupToken string) error {
	email, err := g.Verify(bearer)
	if err != nil {
		return err
	}

	if _, ok := g.adminEmails[email]; ok {
		return nil
	}

	if g.setupToken != "" && setupToken == g.setupToken {
		count, err := g.players.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to check bootstrap state: %w", err)
		}
		if count == 0 {
			log.Warn().
				Str("email", email).
				Msg("Bootstrap exception used: non-admin permitted to seed empty database")
			return nil
		}
	}

	return ErrNotAdmin
}
