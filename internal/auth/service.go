package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lameridiana/gestionale/internal/shared"
	"github.com/lameridiana/gestionale/internal/users"
)

// CredentialSource looks up the account to verify credentials against.
type CredentialSource interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	accounts CredentialSource
}

// NewService constructs a new Service.
func NewService(accounts CredentialSource) *Service {
	return &Service{accounts: accounts}
}

// Authenticate validates email/password credentials. Lookup failures and
// password mismatches collapse into the same error so the response does not
// reveal which accounts exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Disabled {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
