package configurazioni

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lameridiana/gestionale/internal/audit"
	"github.com/lameridiana/gestionale/internal/platform/cache"
	"github.com/lameridiana/gestionale/internal/rbac"
	"github.com/lameridiana/gestionale/internal/shared"
)

// Collection is the entity type recorded in the audit trail.
const Collection = "configurazioni"

const sourceTag = "configurazioni-admin"

// cacheKeyAll caches the full settings list, which is small and read on
// nearly every settings page hit.
const cacheKeyAll = "configurazioni:all"

// ChangeRecorder publishes document-change events.
type ChangeRecorder interface {
	DocumentChanged(ctx context.Context, change audit.Change)
}

// Service wraps settings business rules behind the read-through cache.
type Service struct {
	repo     Repository
	cache    *cache.Cache
	recorder ChangeRecorder
}

// NewService constructs a Service.
func NewService(repo Repository, c *cache.Cache, recorder ChangeRecorder) *Service {
	return &Service{repo: repo, cache: c, recorder: recorder}
}

// List returns all settings, served from cache within the TTL window.
func (s *Service) List(ctx context.Context) ([]Setting, error) {
	var out []Setting
	err := s.cache.FetchJSON(ctx, cacheKeyAll, &out, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx)
	})
	return out, err
}

// Get fetches a single setting, bypassing the cache so edits read fresh.
func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	return s.repo.Get(ctx, key)
}

// Set writes a setting value, invalidates the cache and records the
// mutation. Editing requires canEditSettings.
func (s *Service) Set(ctx context.Context, actor *shared.Session, key, value string) (*Setting, error) {
	if actor == nil || !rbac.HasPermission(actor.Roles, rbac.CanEditSettings) {
		return nil, fmt.Errorf("%w: editing settings requires elevated permissions", shared.ErrForbidden)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("configurazioni: empty key: %w", shared.ErrNotFound)
	}

	now := time.Now().UTC()
	var beforeSnapshot map[string]any
	updated := Setting{Key: key, Created: now}
	before, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		beforeSnapshot = before.Snapshot()
		updated.Created = before.Created
		updated.Description = before.Description
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	updated.Value = strings.TrimSpace(value)
	updated.Changed = now
	updated.LastModifiedBy = actor.UID
	updated.LastModifiedByEmail = actor.Email

	if err := s.repo.Upsert(ctx, updated); err != nil {
		return nil, err
	}
	// Stale list reads are bounded by the TTL even if this invalidation
	// fails, so the error is not fatal.
	_ = s.cache.Invalidate(ctx, cacheKeyAll)

	action := audit.ActionUpdate
	if beforeSnapshot == nil {
		action = audit.ActionCreate
	}
	s.record(ctx, actor, action, key, beforeSnapshot, updated.Snapshot())
	return &updated, nil
}

func (s *Service) record(ctx context.Context, actor *shared.Session, action audit.Action, key string, before, after map[string]any) {
	if s.recorder == nil {
		return
	}
	change := audit.Change{
		Collection: Collection,
		DocumentID: key,
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
