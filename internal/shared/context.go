package shared

import (
	"context"

	"github.com/lameridiana/gestionale/internal/rbac"
)

// Session is the request-scoped authenticated actor. It is created by the
// session middleware after token verification and discarded at request end.
type Session struct {
	UID           string
	Email         string
	EmailVerified bool
	// TokenID is the jti of the session token backing this request.
	TokenID string
	Roles   rbac.RoleSet
}

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context, nil when absent.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
