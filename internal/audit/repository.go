package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads the audit trail from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Timeline returns entries newest first plus the unpaged total.
func (r *PGRepository) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filters.Actor != "" {
		where += " AND (actor_uid = " + arg(filters.Actor) + " OR actor_email = " + arg(filters.Actor) + ")"
	}
	if filters.Entity != "" {
		where += " AND entity_type = " + arg(filters.Entity)
	}
	if filters.Action != "" {
		where += " AND action = " + arg(filters.Action)
	}
	if !filters.From.IsZero() {
		where += " AND occurred_at >= " + arg(filters.From)
	}
	if !filters.To.IsZero() {
		where += " AND occurred_at < " + arg(filters.To)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, entity_type, entity_id, action, actor_uid, actor_email, old_data, new_data, source, occurred_at
		FROM audit_logs ` + where +
		" ORDER BY occurred_at DESC, id DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var action string
		var actorUID, actorEmail, source pgtype.Text
		var oldData, newData []byte
		var occurredAt pgtype.Timestamptz
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &action,
			&actorUID, &actorEmail, &oldData, &newData, &source, &occurredAt); err != nil {
			return nil, 0, err
		}
		e.Action = Action(action)
		if actorUID.Valid || actorEmail.Valid {
			e.Actor = &Actor{UID: actorUID.String, Email: actorEmail.String}
		}
		if len(oldData) > 0 {
			if err := json.Unmarshal(oldData, &e.OldData); err != nil {
				return nil, 0, err
			}
		}
		if len(newData) > 0 {
			if err := json.Unmarshal(newData, &e.NewData); err != nil {
				return nil, 0, err
			}
		}
		if source.Valid {
			e.Source = source.String
		}
		if occurredAt.Valid {
			e.OccurredAt = occurredAt.Time
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
