package users

import (
	"context"

	"github.com/lameridiana/gestionale/internal/session"
)

// ProfileSource adapts the repository to the session verification contract.
type ProfileSource struct {
	repo RepositoryPort
}

// NewProfileSource builds the adapter.
func NewProfileSource(repo RepositoryPort) *ProfileSource {
	return &ProfileSource{repo: repo}
}

// FindByUID returns the profile slice the session middleware consumes.
func (p *ProfileSource) FindByUID(ctx context.Context, uid string) (*session.Profile, error) {
	user, err := p.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &session.Profile{
		UID:           user.UID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Ruolo:         user.Ruolo,
		Disabled:      user.Disabled,
	}, nil
}

var _ session.ProfileSource = (*ProfileSource)(nil)
