package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Logger writes entries into audit_logs.
type Logger struct {
	pool *pgxpool.Pool
}

// NewLogger returns a new audit Logger.
func NewLogger(pool *pgxpool.Pool) *Logger {
	return &Logger{pool: pool}
}

// Record persists the entry. Whether an UPDATE represents a real change is
// the caller's contract (the hook runs Changed first); Record itself writes
// unconditionally.
func (l *Logger) Record(ctx context.Context, entry Entry) error {
	if l == nil || l.pool == nil {
		return errors.New("audit: logger not initialised")
	}
	if entry.EntityType == "" || entry.EntityID == "" || entry.Action == "" {
		return errors.New("audit: entry requires entity type, entity id and action")
	}
	oldJSON, err := marshalSnapshot(entry.OldData)
	if err != nil {
		return err
	}
	newJSON, err := marshalSnapshot(entry.NewData)
	if err != nil {
		return err
	}
	var actorUID, actorEmail *string
	if entry.Actor != nil {
		actorUID, actorEmail = &entry.Actor.UID, &entry.Actor.Email
	}
	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO audit_logs (entity_type, entity_id, action, actor_uid, actor_email, old_data, new_data, source, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.EntityType, entry.EntityID, string(entry.Action),
		actorUID, actorEmail, oldJSON, newJSON, entry.Source, occurredAt)
	return err
}

func marshalSnapshot(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}
