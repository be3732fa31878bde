package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
)

type stubDenialMetrics struct {
	paths []string
}

func (s *stubDenialMetrics) IncAuthzDenied(path string) {
	s.paths = append(s.paths, path)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateRedirectsWithoutCookie(t *testing.T) {
	mw := Middleware{Authenticator: NewAuthenticator(AuthenticatorConfig{})}
	handler := mw.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != LoginPath {
		t.Errorf("redirect location = %q, want %q", loc, LoginPath)
	}
}

func TestAuthenticateSkipsPublicPaths(t *testing.T) {
	mw := Middleware{Authenticator: NewAuthenticator(AuthenticatorConfig{})}
	handler := mw.Authenticate(okHandler())

	for _, path := range []string{LoginPath, "/healthz", "/metrics", "/favicon.ico", "/static/css/app.css"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("public path %q got %d, want 200", path, rec.Code)
		}
	}
}

func TestAuthenticateAPIWithoutCookieAnswersProblemJSON(t *testing.T) {
	mw := Middleware{Authenticator: NewAuthenticator(AuthenticatorConfig{})}
	handler := mw.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/clienti", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("API request must not redirect, got Location %q", loc)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), `"status":401`) {
		t.Errorf("body = %q, want problem detail with status 401", rec.Body.String())
	}
}

func TestAuthenticateAPIRejectedTokenAnswersProblemJSON(t *testing.T) {
	auth := NewAuthenticator(AuthenticatorConfig{Secret: "segreto"})
	mw := Middleware{Authenticator: auth}
	handler := mw.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/clienti/1", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "manomesso"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("rejected session cookie must be cleared")
	}
}

func TestAuthenticateClearsRejectedCookie(t *testing.T) {
	auth := NewAuthenticator(AuthenticatorConfig{Secret: "segreto"})
	mw := Middleware{Authenticator: auth}
	handler := mw.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/clienti", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "manomesso"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want redirect", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("rejected session cookie must be cleared")
	}
}

func TestAuthenticateAcceptsAltCookieName(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/clienti", nil)
	req.AddCookie(&http.Cookie{Name: CookieNameAlt, Value: "qualcosa"})
	if raw, ok := TokenFromRequest(req); !ok || raw != "qualcosa" {
		t.Errorf("TokenFromRequest = (%q, %v)", raw, ok)
	}
}

func guardRequest(t *testing.T, mw Middleware, path string, roles rbac.RoleSet) *httptest.ResponseRecorder {
	t.Helper()
	handler := mw.Guard(okHandler())
	req := httptest.NewRequest(http.MethodGet, path, nil)
	sess := &shared.Session{UID: "uid-1", Roles: roles}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGuardAllowsByDefault(t *testing.T) {
	rec := guardRequest(t, Middleware{}, "/clienti", rbac.NoRoles())
	if rec.Code != http.StatusOK {
		t.Errorf("unprotected path got %d, want 200", rec.Code)
	}
}

func TestGuardDeniesOperatoreOnSettings(t *testing.T) {
	metrics := &stubDenialMetrics{}
	denied := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("accesso negato"))
	})
	mw := Middleware{Denied: denied, Metrics: metrics}

	rec := guardRequest(t, mw, "/configurazioni", rbac.SingleRole(rbac.RoleOperatore))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(metrics.paths) != 1 || metrics.paths[0] != "/configurazioni" {
		t.Errorf("denial metric = %v", metrics.paths)
	}
}

func TestGuardAllowsAdminOnUsers(t *testing.T) {
	rec := guardRequest(t, Middleware{}, "/users", rbac.SingleRole(rbac.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Errorf("admin on /users got %d, want 200", rec.Code)
	}
}

func TestGuardFallsBackWithoutDeniedHandler(t *testing.T) {
	rec := guardRequest(t, Middleware{}, "/users", rbac.SingleRole(rbac.RoleOperatore))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
