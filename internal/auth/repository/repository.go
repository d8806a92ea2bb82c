package repository

import (
	"context"
	"errors"
	"fmt"

	"byabshik_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountNotFoundMessage = "account not found"

// Account is a moderator row with its credentials.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
}

// Repository reads accounts for login.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
}

// Repo implements Repository on the moderators table.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const accountColumns = `id, name, email, password_hash, role, is_active`

const getAccountByEmailQuery = `SELECT ` + accountColumns + ` FROM moderators WHERE lower(email) = lower($1)`

const getAccountByIDQuery = `SELECT ` + accountColumns + ` FROM moderators WHERE id = $1`

func (r *Repo) GetByEmail(ctx context.Context, email string) (Account, error) {
	return r.get(ctx, getAccountByEmailQuery, email)
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return r.get(ctx, getAccountByIDQuery, id)
}

func (r *Repo) get(ctx context.Context, query string, arg any) (Account, error) {
	var a Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, apperr.NotFound(accountNotFoundMessage)
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}
