package clienti

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lameridiana/gestionale/internal/shared"
)

// Repository defines persistence operations for the registry.
type Repository interface {
	List(ctx context.Context, search string, limit, offset int) ([]Cliente, int, error)
	Get(ctx context.Context, id int64) (*Cliente, error)
	Create(ctx context.Context, c Cliente, sortKey []byte) (int64, error)
	Update(ctx context.Context, c Cliente, sortKey []byte) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const clienteColumns = `id, ragione_sociale, partita_iva, codice_fiscale, email, telefono,
	indirizzo, citta, cap, provincia, note, created, changed, last_modified_by, last_modified_by_email`

// List returns one page of the registry plus the unpaged total. Ordering
// follows the precomputed Italian collation key.
func (r *PGRepository) List(ctx context.Context, search string, limit, offset int) ([]Cliente, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = "WHERE ragione_sociale ILIKE $1 OR partita_iva ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM clienti "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	n := len(args)
	query := "SELECT " + clienteColumns + " FROM clienti " + where +
		" ORDER BY sort_key LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Cliente
	for rows.Next() {
		c, err := scanCliente(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Get fetches one registry entry.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Cliente, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+clienteColumns+" FROM clienti WHERE id = $1", id)
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
	c, err := scanCliente(rows)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new entry and returns its id.
func (r *PGRepository) Create(ctx context.Context, c Cliente, sortKey []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clienti (ragione_sociale, partita_iva, codice_fiscale, email, telefono,
			indirizzo, citta, cap, provincia, note, sort_key,
			created, changed, last_modified_by, last_modified_by_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		c.RagioneSociale, c.PartitaIVA, c.CodiceFiscale, c.Email, c.Telefono,
		c.Indirizzo, c.Citta, c.CAP, c.Provincia, c.Note, sortKey,
		c.Created, c.Changed, c.LastModifiedBy, c.LastModifiedByEmail).Scan(&id)
	if isUniqueViolation(err) {
		return 0, shared.ErrDuplicate
	}
	return id, err
}

// Update rewrites an entry.
func (r *PGRepository) Update(ctx context.Context, c Cliente, sortKey []byte) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clienti SET ragione_sociale = $2, partita_iva = $3, codice_fiscale = $4,
			email = $5, telefono = $6, indirizzo = $7, citta = $8, cap = $9,
			provincia = $10, note = $11, sort_key = $12,
			changed = $13, last_modified_by = $14, last_modified_by_email = $15
		WHERE id = $1`,
		c.ID, c.RagioneSociale, c.PartitaIVA, c.CodiceFiscale,
		c.Email, c.Telefono, c.Indirizzo, c.Citta, c.CAP,
		c.Provincia, c.Note, sortKey,
		c.Changed, c.LastModifiedBy, c.LastModifiedByEmail)
	if isUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an entry.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clienti WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCliente(row pgx.Row) (Cliente, error) {
	var c Cliente
	if err := row.Scan(&c.ID, &c.RagioneSociale, &c.PartitaIVA, &c.CodiceFiscale,
		&c.Email, &c.Telefono, &c.Indirizzo, &c.Citta, &c.CAP, &c.Provincia, &c.Note,
		&c.Created, &c.Changed, &c.LastModifiedBy, &c.LastModifiedByEmail); err != nil {
		return Cliente{}, err
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
