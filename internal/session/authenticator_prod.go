//go:build !dev

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lameridiana/gestionale/internal/shared"
)

// Authenticate verifies the session token signature and expiry, checks the
// revocation list and confirms a live profile document. Every failure maps
// to a sentinel error; callers redirect, they never see a panic.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*shared.Session, error) {
	claims, err := a.verify(raw)
	if err != nil {
		return nil, err
	}

	revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		a.logger.Error("session revocation check", slog.Any("error", err))
		return nil, fmt.Errorf("%w: revocation check failed", shared.ErrSessionInvalid)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", shared.ErrSessionInvalid)
	}

	profile, err := a.profiles.FindByUID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrProfileNotFound
		}
		a.logger.Error("session profile lookup", slog.Any("error", err))
		return nil, fmt.Errorf("%w: profile lookup failed", shared.ErrSessionInvalid)
	}
	if profile.Disabled {
		return nil, shared.ErrAccountDisabled
	}

	return a.sessionFromProfile(claims, profile), nil
}

func (a *Authenticator) verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, shared.ErrSessionInvalid
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, shared.ErrSessionInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, shared.ErrSessionInvalid
	}
	if claims.Issuer != tokenIssuer || strings.TrimSpace(claims.Subject) == "" || claims.ID == "" {
		return nil, shared.ErrSessionInvalid
	}
	return claims, nil
}
