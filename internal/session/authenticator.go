package session

import (
	"log/slog"

	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
)

// AuthenticatorConfig collects the dependencies for request authentication.
// DevRoleOverride is only consulted by dev builds.
type AuthenticatorConfig struct {
	Secret          string
	Profiles        ProfileSource
	Revocations     *RevocationList
	DevRoleOverride string
	Logger          *slog.Logger
}

// Authenticator turns a raw session token into a request-scoped Session.
// The concrete Authenticate implementation is selected at build time: the
// default build verifies tokens cryptographically, the dev build decodes
// them without verification (see authenticator_dev.go).
type Authenticator struct {
	secret      []byte
	profiles    ProfileSource
	revocations *RevocationList
	devRole     string
	logger      *slog.Logger
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(cfg AuthenticatorConfig) *Authenticator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		secret:      []byte(cfg.Secret),
		profiles:    cfg.Profiles,
		revocations: cfg.Revocations,
		devRole:     cfg.DevRoleOverride,
		logger:      logger,
	}
}

func (a *Authenticator) sessionFromProfile(claims *Claims, profile *Profile) *shared.Session {
	email := profile.Email
	if email == "" {
		email = claims.Email
	}
	return &shared.Session{
		UID:           claims.Subject,
		Email:         email,
		EmailVerified: claims.EmailVerified,
		TokenID:       claims.ID,
		Roles:         rbac.FromClaim(profile.Ruolo),
	}
}
