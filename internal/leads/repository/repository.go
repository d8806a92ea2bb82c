package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"byabshik_backend/internal/leads/domain"
	"byabshik_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

const leadColumns = `id, phone_number, COALESCE(customer_name, ''), COALESCE(address, ''),
	moderator_id, status, assigned_date, created_at, updated_at`

// Repo implements Repository on postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		l      domain.Lead
		status string
	)
	if err := row.Scan(
		&l.ID, &l.Phone, &l.CustomerName, &l.Address,
		&l.ModeratorID, &status, &l.AssignedDate, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return domain.Lead{}, err
	}
	l.Status = domain.Status(status)
	return l, nil
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()
	out := make([]domain.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListAll returns every lead, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, fmt.Errorf("scan leads: %w", err)
	}
	return leads, nil
}

// GetByID retrieves a lead.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	l, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

// LatestByPhone returns the newest lead stored under phone.
func (r *Repo) LatestByPhone(ctx context.Context, phone string) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE phone_number = $1 ORDER BY created_at DESC LIMIT 1`
	l, err := scanLead(r.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest lead by phone: %w", err)
	}
	return &l, nil
}

// ListForModerator returns leads assigned to a moderator.
func (r *Repo) ListForModerator(ctx context.Context, moderatorID uuid.UUID, day *time.Time) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE moderator_id = $1 AND ($2::date IS NULL OR assigned_date = $2::date)
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, moderatorID, day)
	if err != nil {
		return nil, fmt.Errorf("list moderator leads: %w", err)
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, fmt.Errorf("scan moderator leads: %w", err)
	}
	return leads, nil
}

// ReassignMany updates all ids in one statement.
func (r *Repo) ReassignMany(ctx context.Context, ids []uuid.UUID, moderatorID uuid.UUID, assignedDate time.Time) (int64, error) {
	query := `
		UPDATE leads
		SET moderator_id = $2, assigned_date = $3::date, status = 'pending', updated_at = now()
		WHERE id = ANY($1::uuid[])`
	tag, err := r.pool.Exec(ctx, query, ids, moderatorID, assignedDate)
	if err != nil {
		return 0, fmt.Errorf("reassign leads: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertMany copies leads into the table in one round trip.
func (r *Repo) InsertMany(ctx context.Context, leads []domain.Lead) (int64, error) {
	columns := []string{
		"id", "phone_number", "customer_name", "address",
		"moderator_id", "status", "assigned_date", "created_at", "updated_at",
	}
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"leads"}, columns, pgx.CopyFromSlice(len(leads), func(i int) ([]any, error) {
		l := leads[i]
		return []any{
			l.ID, l.Phone, l.CustomerName, l.Address,
			l.ModeratorID, string(l.Status), l.AssignedDate, l.CreatedAt, l.UpdatedAt,
		}, nil
	}))
	if err != nil {
		return 0, fmt.Errorf("insert leads: %w", err)
	}
	return n, nil
}

// UpdateStatus records a call outcome. The last write wins.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Lead, error) {
	query := `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1 RETURNING ` + leadColumns
	l, err := scanLead(r.pool.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return domain.Lead{}, fmt.Errorf("update lead status: %w", err)
	}
	return l, nil
}

// Delete removes a lead.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}
