package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lameridiana/gestionale/internal/shared"
)

// RepositoryPort defines data access methods for user profiles.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	FindByUID(ctx context.Context, uid string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, user User) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `uid, email, email_verified, password_hash, ruolo, disabled, created, changed, last_modified_by, last_modified_by_email`

// List returns all users ordered by email.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// FindByUID fetches a user by identifier.
func (r *Repository) FindByUID(ctx context.Context, uid string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
}

// FindByEmail fetches a user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Create inserts a new profile row.
func (r *Repository) Create(ctx context.Context, user User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.UID, user.Email, user.EmailVerified, user.PasswordHash, user.Ruolo,
		user.Disabled, user.Created, user.Changed, user.LastModifiedBy, user.LastModifiedByEmail)
	if isUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	return err
}

// Update rewrites the mutable profile fields.
func (r *Repository) Update(ctx context.Context, user User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET ruolo = $2, disabled = $3, changed = $4,
			last_modified_by = $5, last_modified_by_email = $6
		WHERE uid = $1`,
		user.UID, user.Ruolo, user.Disabled, user.Changed,
		user.LastModifiedBy, user.LastModifiedByEmail)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
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
	user, err := scanUser(rows)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var created, changed time.Time
	if err := row.Scan(&u.UID, &u.Email, &u.EmailVerified, &u.PasswordHash, &u.Ruolo,
		&u.Disabled, &created, &changed, &u.LastModifiedBy, &u.LastModifiedByEmail); err != nil {
		return User{}, err
	}
	u.Created = created
	u.Changed = changed
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ RepositoryPort = (*Repository)(nil)
