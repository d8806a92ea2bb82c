package repository

import (
	"context"
	"errors"
	"fmt"

	"byabshik_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	moderatorNotFoundMessage = "moderator not found"
	pgUniqueViolation        = "23505"
)

const moderatorColumns = `id, name, email, role, is_active, created_at`

// Repo implements Repository on postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new moderators repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanModerator(row pgx.Row) (Moderator, error) {
	var m Moderator
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.Active, &m.CreatedAt)
	return m, err
}

// List returns all accounts, oldest first.
func (r *Repo) List(ctx context.Context) ([]Moderator, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+moderatorColumns+` FROM moderators ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list moderators: %w", err)
	}
	defer rows.Close()

	out := make([]Moderator, 0)
	for rows.Next() {
		m, err := scanModerator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan moderator: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID retrieves an account.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Moderator, error) {
	m, err := scanModerator(r.pool.QueryRow(ctx, `SELECT `+moderatorColumns+` FROM moderators WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Moderator{}, apperr.NotFound(moderatorNotFoundMessage)
	}
	if err != nil {
		return Moderator{}, fmt.Errorf("get moderator: %w", err)
	}
	return m, nil
}

// Create inserts an account.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Moderator, error) {
	query := `
		INSERT INTO moderators (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + moderatorColumns

	m, err := scanModerator(r.pool.QueryRow(ctx, query, params.Name, params.Email, params.PasswordHash, params.Role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Moderator{}, apperr.Conflict("email already in use")
		}
		return Moderator{}, fmt.Errorf("create moderator: %w", err)
	}
	return m, nil
}

// SetActive enables or disables login for an account.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, active bool) (Moderator, error) {
	query := `UPDATE moderators SET is_active = $2 WHERE id = $1 RETURNING ` + moderatorColumns
	m, err := scanModerator(r.pool.QueryRow(ctx, query, id, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return Moderator{}, apperr.NotFound(moderatorNotFoundMessage)
	}
	if err != nil {
		return Moderator{}, fmt.Errorf("set moderator active: %w", err)
	}
	return m, nil
}

// Delete removes an account. Leads and orders keep their rows with the
// moderator cleared by the foreign keys.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM moderators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete moderator: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(moderatorNotFoundMessage)
	}
	return nil
}

// CountAdmins counts admin accounts.
func (r *Repo) CountAdmins(ctx context.Context, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM moderators WHERE role = 'admin' AND (NOT $1 OR is_active)`
	var n int
	if err := r.pool.QueryRow(ctx, query, activeOnly).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
