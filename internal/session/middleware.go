package session

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/lameridiana/gestionale/internal/platform/httpx"
	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// APIPrefix marks the JSON API namespace. API requests carry the same
// session token but failures answer with problem+json, never a redirect.
const APIPrefix = "/api/"

// assetPrefixes are served without authentication.
var assetPrefixes = []string{"/static/"}

// publicPaths never require a session.
var publicPaths = map[string]struct{}{
	LoginPath:      {},
	"/healthz":     {},
	"/metrics":     {},
	"/favicon.ico": {},
}

// DenialMetrics counts authorization denials.
type DenialMetrics interface {
	IncAuthzDenied(path string)
}

// Middleware authenticates requests and guards protected routes.
type Middleware struct {
	Authenticator *Authenticator
	Logger        *slog.Logger
	Secure        bool
	// Denied renders the access-denied page for authorization failures.
	Denied  http.Handler
	Metrics DenialMetrics
}

// IsPublic reports whether a path bypasses the session middleware.
func IsPublic(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	for _, prefix := range assetPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Authenticate establishes the request session or redirects to the login
// page. Verification failures never escape this middleware.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		isAPI := strings.HasPrefix(r.URL.Path, APIPrefix)
		raw, ok := TokenFromRequest(r)
		if !ok {
			m.rejectUnauthenticated(w, r, isAPI)
			return
		}
		sess, err := m.Authenticator.Authenticate(r.Context(), raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Info("session rejected",
					slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			ClearCookie(w, m.Secure)
			m.rejectUnauthenticated(w, r, isAPI)
			return
		}
		ctx := shared.ContextWithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, isAPI bool) {
	if isAPI {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sessione mancante o non valida")
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// Guard enforces the protected route table. Paths outside the table pass
// through; matched paths require the bound capability, and a shortfall
// renders the denial page instead of erroring.
func (m Middleware) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		sess := shared.SessionFromContext(r.Context())
		var roles rbac.RoleSet
		if sess != nil {
			roles = sess.Roles
		}
		if rbac.CanAccessRoute(roles, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if m.Metrics != nil {
			m.Metrics.IncAuthzDenied(r.URL.Path)
		}
		if m.Logger != nil {
			uid := ""
			if sess != nil {
				uid = sess.UID
			}
			m.Logger.Info("route denied",
				slog.String("path", r.URL.Path), slog.String("uid", uid))
		}
		if m.Denied != nil {
			m.Denied.ServeHTTP(w, r)
			return
		}
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	})
}
