//go:build !dev

package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/lameridiana/gestionale/internal/shared"
)

const testSecret = "sessione-di-prova"

type stubProfiles struct {
	profiles map[string]*Profile
	err      error
}

func (s *stubProfiles) FindByUID(ctx context.Context, uid string) (*Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[uid]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func newTestAuthenticator(t *testing.T, profiles *stubProfiles) (*Authenticator, *RevocationList) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	revocations := NewRevocationList(client)
	auth := NewAuthenticator(AuthenticatorConfig{
		Secret:      testSecret,
		Profiles:    profiles,
		Revocations: revocations,
		Logger:      slog.Default(),
	})
	return auth, revocations
}

func issueToken(t *testing.T, ttl time.Duration) (string, string) {
	t.Helper()
	token, jti, err := NewIssuer(testSecret, ttl).Issue("uid-1", "op@example.it", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token, jti
}

func TestAuthenticateValidToken(t *testing.T) {
	profiles := &stubProfiles{profiles: map[string]*Profile{
		"uid-1": {UID: "uid-1", Email: "op@example.it", Ruolo: []string{"admin"}},
	}}
	auth, _ := newTestAuthenticator(t, profiles)
	token, jti := issueToken(t, time.Hour)

	sess, err := auth.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if sess.UID != "uid-1" || sess.Email != "op@example.it" || sess.TokenID != jti {
		t.Errorf("unexpected session: %+v", sess)
	}
	if !sess.Roles.IsAdmin() {
		t.Error("profile roles must flow into the session")
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	auth, _ := newTestAuthenticator(t, &stubProfiles{})
	token, _ := issueToken(t, -time.Minute)

	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, shared.ErrSessionInvalid) {
		t.Errorf("expired token must be invalid, got %v", err)
	}
}

func TestAuthenticateBadSignature(t *testing.T) {
	auth, _ := newTestAuthenticator(t, &stubProfiles{})
	token, _, err := NewIssuer("altro-segreto", time.Hour).Issue("uid-1", "op@example.it", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, shared.ErrSessionInvalid) {
		t.Errorf("wrong signing key must be invalid, got %v", err)
	}
}

func TestAuthenticateRejectsUnsignedAlg(t *testing.T) {
	auth, _ := newTestAuthenticator(t, &stubProfiles{})
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "uid-1",
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, shared.ErrSessionInvalid) {
		t.Errorf("alg none must be rejected, got %v", err)
	}
}

func TestAuthenticateRevokedToken(t *testing.T) {
	profiles := &stubProfiles{profiles: map[string]*Profile{
		"uid-1": {UID: "uid-1", Ruolo: []string{"operatore"}},
	}}
	auth, revocations := newTestAuthenticator(t, profiles)
	token, jti := issueToken(t, time.Hour)

	if err := revocations.Revoke(context.Background(), jti, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, shared.ErrSessionInvalid) {
		t.Errorf("revoked token must be invalid, got %v", err)
	}
}

func TestAuthenticateMissingProfile(t *testing.T) {
	auth, _ := newTestAuthenticator(t, &stubProfiles{profiles: map[string]*Profile{}})
	token, _ := issueToken(t, time.Hour)

	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, shared.ErrProfileNotFound) {
		t.Errorf("identity without a profile row must fail, got %v", err)
	}
}

func TestAuthenticateDisabledProfile(t *testing.T) {
	profiles := &stubProfiles{profiles: map[string]*Profile{
		"uid-1": {UID: "uid-1", Disabled: true, Ruolo: []string{"admin"}},
	}}
	auth, _ := newTestAuthenticator(t, profiles)
	token, _ := issueToken(t, time.Hour)

	if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, shared.ErrAccountDisabled) {
		t.Errorf("disabled profile must fail, got %v", err)
	}
}

func TestAuthenticateEmptyToken(t *testing.T) {
	auth, _ := newTestAuthenticator(t, &stubProfiles{})
	if _, err := auth.Authenticate(context.Background(), "  "); !errors.Is(err, shared.ErrSessionInvalid) {
		t.Errorf("blank token must be invalid, got %v", err)
	}
}
