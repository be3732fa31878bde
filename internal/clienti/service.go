package clienti

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lameridiana/gestionale/internal/audit"
	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
)

// Collection is the entity type recorded in the audit trail.
const Collection = "clienti"

const sourceTag = "clienti-admin"

// ChangeRecorder publishes document-change events.
type ChangeRecorder interface {
	DocumentChanged(ctx context.Context, change audit.Change)
}

// Service wraps registry business rules.
type Service struct {
	repo     Repository
	recorder ChangeRecorder
	collator *collate.Collator
}

// NewService constructs a Service.
func NewService(repo Repository, recorder ChangeRecorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		collator: collate.New(language.Italian, collate.IgnoreCase),
	}
}

// Input carries the editable registry fields.
type Input struct {
	RagioneSociale string
	PartitaIVA     string
	CodiceFiscale  string
	Email          string
	Telefono       string
	Indirizzo      string
	Citta          string
	CAP            string
	Provincia      string
	Note           string
}

// ListRequest narrows and pages the registry listing.
type ListRequest struct {
	Search  string
	Page    int
	PerPage int
}

// List returns one page of clients matching the request.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Cliente, shared.Pagination, error) {
	perPage := req.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	list, total, err := s.repo.List(ctx, strings.TrimSpace(req.Search), perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Get fetches one client.
func (s *Service) Get(ctx context.Context, id int64) (*Cliente, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a client and records the mutation.
func (s *Service) Create(ctx context.Context, actor *shared.Session, input Input) (*Cliente, error) {
	now := time.Now().UTC()
	c := fromInput(input)
	c.Created = now
	stampModified(&c, actor, now)
	id, err := s.repo.Create(ctx, c, s.sortKey(c.RagioneSociale))
	if err != nil {
		return nil, err
	}
	c.ID = id
	s.record(ctx, actor, audit.ActionCreate, id, nil, c.Snapshot())
	return &c, nil
}

// Update rewrites a client and records the mutation.
func (s *Service) Update(ctx context.Context, actor *shared.Session, id int64, input Input) (*Cliente, error) {
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := fromInput(input)
	updated.ID = id
	updated.Created = before.Created
	stampModified(&updated, actor, time.Now().UTC())
	if err := s.repo.Update(ctx, updated, s.sortKey(updated.RagioneSociale)); err != nil {
		return nil, err
	}
	s.record(ctx, actor, audit.ActionUpdate, id, before.Snapshot(), updated.Snapshot())
	return &updated, nil
}

// Delete removes a client. Deletion is gated on canDeleteClienti, which the
// route table alone does not cover.
func (s *Service) Delete(ctx context.Context, actor *shared.Session, id int64) error {
	if actor == nil || !rbac.HasPermission(actor.Roles, rbac.CanDeleteClienti) {
		return fmt.Errorf("%w: deletion requires elevated permissions", shared.ErrForbidden)
	}
	before, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, audit.ActionDelete, id, before.Snapshot(), nil)
	return nil
}

// sortKey derives the Italian collation key ordering the registry listing.
func (s *Service) sortKey(ragioneSociale string) []byte {
	var buf collate.Buffer
	key := s.collator.KeyFromString(&buf, strings.TrimSpace(ragioneSociale))
	out := make([]byte, len(key))
	copy(out, key)
	return out
}

func (s *Service) record(ctx context.Context, actor *shared.Session, action audit.Action, id int64, before, after map[string]any) {
	if s.recorder == nil {
		return
	}
	change := audit.Change{
		Collection: Collection,
		DocumentID: strconv.FormatInt(id, 10),
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

func fromInput(input Input) Cliente {
	return Cliente{
		RagioneSociale: strings.TrimSpace(input.RagioneSociale),
		PartitaIVA:     strings.TrimSpace(input.PartitaIVA),
		CodiceFiscale:  strings.ToUpper(strings.TrimSpace(input.CodiceFiscale)),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Telefono:       strings.TrimSpace(input.Telefono),
		Indirizzo:      strings.TrimSpace(input.Indirizzo),
		Citta:          strings.TrimSpace(input.Citta),
		CAP:            strings.TrimSpace(input.CAP),
		Provincia:      strings.ToUpper(strings.TrimSpace(input.Provincia)),
		Note:           strings.TrimSpace(input.Note),
	}
}

func stampModified(c *Cliente, actor *shared.Session, at time.Time) {
	c.Changed = at
	if actor != nil {
		c.LastModifiedBy = actor.UID
		c.LastModifiedByEmail = actor.Email
	}
}
