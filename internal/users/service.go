package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lameridiana/gestionale/internal/audit"
	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
)

// Collection is the entity type recorded in the audit trail.
const Collection = "users"

const sourceTag = "users-admin"

// ChangeRecorder publishes document-change events.
type ChangeRecorder interface {
	DocumentChanged(ctx context.Context, change audit.Change)
}

// Service handles user management business logic.
type Service struct {
	repo     RepositoryPort
	recorder ChangeRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, recorder ChangeRecorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

// CreateInput carries the fields for a new user.
type CreateInput struct {
	Email    string
	Password string
	Ruolo    []string
}

// UpdateInput carries the mutable profile fields.
type UpdateInput struct {
	Ruolo []string
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, uid string) (*User, error) {
	return s.repo.FindByUID(ctx, uid)
}

// Create inserts a user profile. Granting superuser requires the actor to
// hold canManageSuperusers.
func (s *Service) Create(ctx context.Context, actor *shared.Session, input CreateInput) (*User, error) {
	roles := normalizeRuolo(input.Ruolo)
	if err := s.authorizeRoleGrant(actor, nil, roles); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	now := time.Now().UTC()
	user := User{
		UID:          uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		Ruolo:        roles,
		Created:      now,
	}
	stampModified(&user, actor, now)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.record(ctx, actor, audit.ActionCreate, user.UID, nil, user.Snapshot())
	return &user, nil
}

// Update replaces the role assignment of a user.
func (s *Service) Update(ctx context.Context, actor *shared.Session, uid string, input UpdateInput) (*User, error) {
	before, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	roles := normalizeRuolo(input.Ruolo)
	if err := s.authorizeRoleGrant(actor, before, roles); err != nil {
		return nil, err
	}
	updated := *before
	updated.Ruolo = roles
	stampModified(&updated, actor, time.Now().UTC())
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.record(ctx, actor, audit.ActionUpdate, uid, before.Snapshot(), updated.Snapshot())
	return &updated, nil
}

// SetDisabled flags or unflags a profile. A disabled profile fails session
// verification on its next request.
func (s *Service) SetDisabled(ctx context.Context, actor *shared.Session, uid string, disabled bool) (*User, error) {
	before, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRoleGrant(actor, before, before.Ruolo); err != nil {
		return nil, err
	}
	updated := *before
	updated.Disabled = disabled
	stampModified(&updated, actor, time.Now().UTC())
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.record(ctx, actor, audit.ActionUpdate, uid, before.Snapshot(), updated.Snapshot())
	return &updated, nil
}

// authorizeRoleGrant enforces the superuser management rule: touching a
// superuser profile, or granting superuser, needs canManageSuperusers.
func (s *Service) authorizeRoleGrant(actor *shared.Session, target *User, newRoles []string) error {
	touchesSuperuser := rbac.FromClaim(newRoles).IsSuperuser()
	if target != nil && rbac.FromClaim(target.Ruolo).IsSuperuser() {
		touchesSuperuser = true
	}
	if !touchesSuperuser {
		return nil
	}
	if actor == nil || !rbac.HasPermission(actor.Roles, rbac.CanManageSuperusers) {
		return fmt.Errorf("%w: superuser management requires elevated permissions", shared.ErrForbidden)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor *shared.Session, action audit.Action, uid string, before, after map[string]any) {
	if s.recorder == nil {
		return
	}
	change := audit.Change{
		Collection: Collection,
		DocumentID: uid,
		Action:     action,
		Before:     before,
		After:      after,
		Source:     sourceTag,
	}
	if actor != nil {
		change.ActorUID = actor.UID
		change.ActorEmail = actor.Email
	}
	s.recorder.DocumentChanged(ctx, change)
}

func stampModified(u *User, actor *shared.Session, at time.Time) {
	u.Changed = at
	if actor != nil {
		u.LastModifiedBy = actor.UID
		u.LastModifiedByEmail = actor.Email
	}
}

func normalizeRuolo(raw []string) []string {
	return rbac.FromClaim(raw).Strings()
}
