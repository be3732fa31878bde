package users

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/lameridiana/gestionale/internal/audit"
	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
)

type stubRepo struct {
	users   map[string]*User
	created []User
	updated []User
}

func newStubRepo(users ...User) *stubRepo {
	repo := &stubRepo{users: map[string]*User{}}
	for i := range users {
		repo.users[users[i].UID] = &users[i]
	}
	return repo
}

func (s *stubRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubRepo) FindByUID(ctx context.Context, uid string) (*User, error) {
	u, ok := s.users[uid]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, user User) error {
	s.created = append(s.created, user)
	s.users[user.UID] = &user
	return nil
}

func (s *stubRepo) Update(ctx context.Context, user User) error {
	if _, ok := s.users[user.UID]; !ok {
		return shared.ErrNotFound
	}
	s.updated = append(s.updated, user)
	s.users[user.UID] = &user
	return nil
}

type stubRecorder struct {
	changes []audit.Change
}

func (s *stubRecorder) DocumentChanged(ctx context.Context, change audit.Change) {
	s.changes = append(s.changes, change)
}

func adminSession() *shared.Session {
	return &shared.Session{UID: "admin-1", Email: "admin@example.it", Roles: rbac.SingleRole(rbac.RoleAdmin)}
}

func superuserSession() *shared.Session {
	return &shared.Session{UID: "su-1", Email: "su@example.it", Roles: rbac.SingleRole(rbac.RoleSuperuser)}
}

func TestCreateHashesAndRecords(t *testing.T) {
	repo := newStubRepo()
	recorder := &stubRecorder{}
	svc := NewService(repo, recorder)

	user, err := svc.Create(context.Background(), adminSession(), CreateInput{
		Email:    " Mario.Rossi@Example.IT ",
		Password: "segretissimo",
		Ruolo:    []string{"OPERATORE", "ignota"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "mario.rossi@example.it" {
		t.Errorf("email = %q", user.Email)
	}
	if !reflect.DeepEqual(user.Ruolo, []string{"operatore"}) {
		t.Errorf("ruolo = %v, unknown roles must be dropped", user.Ruolo)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("segretissimo")); err != nil {
		t.Error("password must be stored as a bcrypt hash")
	}
	if user.LastModifiedBy != "admin-1" || user.LastModifiedByEmail != "admin@example.it" {
		t.Errorf("bookkeeping = %q %q", user.LastModifiedBy, user.LastModifiedByEmail)
	}

	if len(recorder.changes) != 1 {
		t.Fatalf("expected one change event, got %d", len(recorder.changes))
	}
	change := recorder.changes[0]
	if change.Action != audit.ActionCreate || change.Collection != Collection || change.DocumentID != user.UID {
		t.Errorf("change = %+v", change)
	}
	if change.Before != nil {
		t.Error("create has no before snapshot")
	}
	if change.After["email"] != "mario.rossi@example.it" {
		t.Errorf("after snapshot = %v", change.After)
	}
}

func TestCreateSuperuserRequiresManagePermission(t *testing.T) {
	svc := NewService(newStubRepo(), nil)

	_, err := svc.Create(context.Background(), adminSession(), CreateInput{
		Email: "x@example.it", Password: "pw", Ruolo: []string{"superuser"},
	})
	if !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("admin granting superuser must be forbidden, got %v", err)
	}

	if _, err := svc.Create(context.Background(), superuserSession(), CreateInput{
		Email: "x@example.it", Password: "pw", Ruolo: []string{"superuser"},
	}); err != nil {
		t.Errorf("superuser granting superuser must succeed, got %v", err)
	}
}

func TestUpdateTouchingSuperuserRequiresManagePermission(t *testing.T) {
	target := User{UID: "uid-9", Email: "capo@example.it", Ruolo: []string{"superuser"}}
	svc := NewService(newStubRepo(target), nil)

	_, err := svc.Update(context.Background(), adminSession(), "uid-9", UpdateInput{Ruolo: []string{"operatore"}})
	if !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("demoting a superuser as admin must be forbidden, got %v", err)
	}

	if _, err := svc.Update(context.Background(), superuserSession(), "uid-9", UpdateInput{Ruolo: []string{"operatore"}}); err != nil {
		t.Errorf("superuser demoting a superuser must succeed, got %v", err)
	}
}

func TestUpdateRecordsBeforeAndAfter(t *testing.T) {
	target := User{UID: "uid-9", Email: "op@example.it", Ruolo: []string{"operatore"}}
	repo := newStubRepo(target)
	recorder := &stubRecorder{}
	svc := NewService(repo, recorder)

	if _, err := svc.Update(context.Background(), adminSession(), "uid-9", UpdateInput{Ruolo: []string{"admin"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(recorder.changes) != 1 {
		t.Fatalf("expected one change, got %d", len(recorder.changes))
	}
	change := recorder.changes[0]
	if change.Action != audit.ActionUpdate {
		t.Errorf("action = %s", change.Action)
	}
	beforeRuolo := change.Before["ruolo"].([]any)
	afterRuolo := change.After["ruolo"].([]any)
	if beforeRuolo[0] != "operatore" || afterRuolo[0] != "admin" {
		t.Errorf("snapshots: before=%v after=%v", beforeRuolo, afterRuolo)
	}
}

func TestSetDisabled(t *testing.T) {
	target := User{UID: "uid-9", Email: "op@example.it", Ruolo: []string{"operatore"}}
	repo := newStubRepo(target)
	recorder := &stubRecorder{}
	svc := NewService(repo, recorder)

	updated, err := svc.SetDisabled(context.Background(), adminSession(), "uid-9", true)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if !updated.Disabled {
		t.Error("user must be disabled")
	}
	if len(recorder.changes) != 1 || recorder.changes[0].After["disabled"] != true {
		t.Errorf("changes = %+v", recorder.changes)
	}
}

func TestSetDisabledOnSuperuserForbiddenForAdmin(t *testing.T) {
	target := User{UID: "uid-9", Ruolo: []string{"superuser"}}
	svc := NewService(newStubRepo(target), nil)

	if _, err := svc.SetDisabled(context.Background(), adminSession(), "uid-9", true); !errors.Is(err, shared.ErrForbidden) {
		t.Errorf("disabling a superuser as admin must be forbidden, got %v", err)
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := NewService(newStubRepo(), nil)
	if _, err := svc.Update(context.Background(), adminSession(), "manca", UpdateInput{}); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}
