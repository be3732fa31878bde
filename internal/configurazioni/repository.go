package configurazioni

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lameridiana/gestionale/internal/shared"
)

// Repository defines persistence operations for settings.
type Repository interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, s Setting) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const settingColumns = `key, value, description, created, changed, last_modified_by, last_modified_by_email`

// List returns all settings ordered by key.
func (r *PGRepository) List(ctx context.Context) ([]Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+settingColumns+` FROM configurazioni ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description,
			&s.Created, &s.Changed, &s.LastModifiedBy, &s.LastModifiedByEmail); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get fetches a single setting.
func (r *PGRepository) Get(ctx context.Context, key string) (*Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+settingColumns+` FROM configurazioni WHERE key = $1`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, shared.ErrNotFound
	}
	var s Setting
	if err := rows.Scan(&s.Key, &s.Value, &s.Description,
		&s.Created, &s.Changed, &s.LastModifiedBy, &s.LastModifiedByEmail); err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert writes a setting, creating the row on first use of the key.
func (r *PGRepository) Upsert(ctx context.Context, s Setting) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO configurazioni (`+settingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = EXCLUDED.description,
			changed = EXCLUDED.changed,
			last_modified_by = EXCLUDED.last_modified_by,
			last_modified_by_email = EXCLUDED.last_modified_by_email`,
		s.Key, s.Value, s.Description, s.Created, s.Changed,
		s.LastModifiedBy, s.LastModifiedByEmail)
	return err
}

var _ Repository = (*PGRepository)(nil)
