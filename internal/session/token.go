package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "gestionale"

// CookieName is the primary session cookie. CookieNameAlt is accepted for
// compatibility with hosting platforms that rewrite the cookie name.
const (
	CookieName    = "session"
	CookieNameAlt = "__session"
)

// Claims are the session token claims issued at login.
type Claims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer constructs an Issuer. ttl bounds the session cookie lifetime.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL exposes the configured session lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a session token for the given identity and returns the raw
// token together with its jti.
func (i *Issuer) Issue(uid, email string, emailVerified bool) (string, string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", "", errors.New("session: uid required")
	}
	now := time.Now().UTC()
	jti := uuid.NewString()
	claims := Claims{
		Email:         email,
		EmailVerified: emailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// SetCookie writes the session cookie. The cookie is httpOnly and lax so the
// token never leaks to scripts or cross-site POSTs.
func SetCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest extracts the raw session token from either cookie name.
func TokenFromRequest(r *http.Request) (string, bool) {
	for _, name := range []string{CookieName, CookieNameAlt} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value, true
		}
	}
	return "", false
}
