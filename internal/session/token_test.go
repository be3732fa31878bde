package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueCarriesClaims(t *testing.T) {
	issuer := NewIssuer("segreto", 120*time.Hour)
	token, jti, err := issuer.Issue("uid-1", "op@example.it", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if jti == "" {
		t.Fatal("jti must be registered on every token")
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Subject != "uid-1" || claims.Email != "op@example.it" || !claims.EmailVerified {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Issuer != tokenIssuer || claims.ID != jti {
		t.Errorf("issuer/jti not set: %+v", claims.RegisteredClaims)
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != 120*time.Hour {
		t.Errorf("token lifetime = %v, want 120h", lifetime)
	}
}

func TestIssueRequiresUID(t *testing.T) {
	if _, _, err := NewIssuer("segreto", time.Hour).Issue(" ", "", false); err == nil {
		t.Fatal("blank uid must fail")
	}
}

func TestSetCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, "valore", 120*time.Hour, true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != CookieName || cookie.Value != "valore" {
		t.Errorf("cookie = %+v", cookie)
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags = httpOnly=%v secure=%v samesite=%v", cookie.HttpOnly, cookie.Secure, cookie.SameSite)
	}
	if cookie.MaxAge != int(120*time.Hour/time.Second) {
		t.Errorf("max age = %d, want five days", cookie.MaxAge)
	}
}

func TestClearCookieExpires(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearCookie(rec, false)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("clear must expire the cookie: %+v", cookies)
	}
}
