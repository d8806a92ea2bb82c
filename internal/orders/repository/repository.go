package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"byabshik_backend/internal/orders/domain"
	"byabshik_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	orderNotFoundMessage = "order not found"
	pgUniqueViolation    = "23505"
	orderPrimaryKey      = "orders_pkey"
)

const orderColumns = `o.id, o.moderator_id, o.customer_name, o.customer_phone, o.customer_address,
	o.delivery_region, o.items, o.total_amount, o.delivery_charge, o.discount, o.advance_amount,
	o.grand_total, o.status, o.notes, o.steadfast_id, o.courier_status, o.dispatch_simulated,
	o.success_rate, o.created_at, o.updated_at`

// Repo implements Repository on postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new orders repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o      domain.Order
		region string
		status string
		items  []byte
	)
	if err := row.Scan(
		&o.ID, &o.ModeratorID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress,
		&region, &items, &o.TotalAmount, &o.DeliveryCharge, &o.Discount, &o.AdvanceAmount,
		&o.GrandTotal, &status, &o.Notes, &o.SteadfastID, &o.CourierStatus, &o.DispatchSimulated,
		&o.SuccessRate, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items of %s: %w", o.ID, err)
	}
	o.Region = domain.Region(region)
	o.Status = domain.Status(status)
	return o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	out := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Create places an order and moves stock in one transaction.
func (r *Repo) Create(ctx context.Context, productIDs []uuid.UUID, build BuildFunc) (order domain.Order, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin create order: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT id, sku, name, price, stock
		FROM products
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE`, productIDs)
	if err != nil {
		return domain.Order{}, fmt.Errorf("lock products: %w", err)
	}
	products := make(map[uuid.UUID]ProductSnapshot, len(productIDs))
	for rows.Next() {
		var p ProductSnapshot
		if err = rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock); err != nil {
			rows.Close()
			return domain.Order{}, fmt.Errorf("scan product: %w", err)
		}
		products[p.ID] = p
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("lock products: %w", err)
	}

	order, err = build(products)
	if err != nil {
		return domain.Order{}, err
	}

	for _, it := range order.Items {
		if _, err = tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			it.ProductID, it.Quantity,
		); err != nil {
			return domain.Order{}, fmt.Errorf("decrement stock: %w", err)
		}
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("encode items: %w", err)
	}
	order, err = scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders AS o (
			id, moderator_id, customer_name, customer_phone, customer_address, delivery_region,
			items, total_amount, delivery_charge, discount, advance_amount, grand_total,
			status, notes, success_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+orderColumns,
		order.ID, order.ModeratorID, order.CustomerName, order.CustomerPhone, order.CustomerAddress,
		string(order.Region), items, order.TotalAmount, order.DeliveryCharge, order.Discount,
		order.AdvanceAmount, order.GrandTotal, string(order.Status), order.Notes, order.SuccessRate,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == orderPrimaryKey {
			return domain.Order{}, ErrDuplicateOrderID
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit create order: %w", err)
	}
	return order, nil
}

// GetByID retrieves an order.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, apperr.NotFound(orderNotFoundMessage)
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns orders newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]domain.Order, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if s := strings.TrimSpace(params.Search); s != "" {
		add("(o.id ILIKE $%[1]d OR o.customer_name ILIKE $%[1]d OR o.customer_phone ILIKE $%[1]d)", "%"+s+"%")
	}
	if params.Status != nil {
		add("o.status = $%d", string(*params.Status))
	}
	if params.Region != nil {
		add("o.delivery_region = $%d", string(*params.Region))
	}
	if params.ModeratorID != nil {
		add("o.moderator_id = $%d", *params.ModeratorID)
	}

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE ` + strings.Join(where, " AND ") + ` ORDER BY o.created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return orders, nil
}

// ListByPhone returns a customer's orders newest first.
func (r *Repo) ListByPhone(ctx context.Context, phone string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.customer_phone = $1 ORDER BY o.created_at DESC`, phone)
	if err != nil {
		return nil, fmt.Errorf("list orders by phone: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("scan orders by phone: %w", err)
	}
	return orders, nil
}

// ListContactRows returns phone, name, address and date of every order.
func (r *Repo) ListContactRows(ctx context.Context) ([]ContactRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT customer_phone, customer_name, customer_address, created_at FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list order contacts: %w", err)
	}
	defer rows.Close()

	out := make([]ContactRow, 0)
	for rows.Next() {
		var c ContactRow
		if err := rows.Scan(&c.Phone, &c.CustomerName, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateStatus sets an order's status and reports the previous one.
func (r *Repo) UpdateStatus(ctx context.Context, id string, status domain.Status) (StatusChange, error) {
	changes, err := r.UpdateStatusMany(ctx, []string{id}, status)
	if err != nil {
		return StatusChange{}, err
	}
	if len(changes) == 0 {
		return StatusChange{}, apperr.NotFound(orderNotFoundMessage)
	}
	return changes[0], nil
}

// UpdateStatusMany sets the status of every listed order in one statement.
func (r *Repo) UpdateStatusMany(ctx context.Context, ids []string, status domain.Status) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		WITH prev AS (
			SELECT id, status FROM orders WHERE id = ANY($1::text[]) FOR UPDATE
		)
		UPDATE orders o
		SET status = $2, updated_at = now()
		FROM prev
		WHERE o.id = prev.id
		RETURNING o.id, prev.status`, ids, string(status))
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	defer rows.Close()

	out := make([]StatusChange, 0, len(ids))
	for rows.Next() {
		var (
			id  string
			old string
		)
		if err := rows.Scan(&id, &old); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		out = append(out, StatusChange{OrderID: id, Old: domain.Status(old), New: status})
	}
	return out, rows.Err()
}

// RecordDispatch writes the consignment and confirms the order unless a
// consignment is already stored.
func (r *Repo) RecordDispatch(ctx context.Context, id, consignmentID, courierStatus string, simulated bool) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET steadfast_id = $2, courier_status = $3, dispatch_simulated = $4,
			status = 'confirmed', updated_at = now()
		WHERE id = $1 AND steadfast_id IS NULL`,
		id, consignmentID, courierStatus, simulated)
	if err != nil {
		return false, fmt.Errorf("record dispatch: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordCourierStatus stores the raw courier status and the mapped order
// status.
func (r *Repo) RecordCourierStatus(ctx context.Context, id, courierStatus string, status domain.Status) (StatusChange, error) {
	var old string
	err := r.pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT id, status FROM orders WHERE id = $1 FOR UPDATE
		)
		UPDATE orders o
		SET courier_status = $2, status = $3, updated_at = now()
		FROM prev
		WHERE o.id = prev.id
		RETURNING prev.status`, id, courierStatus, string(status)).Scan(&old)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StatusChange{}, apperr.NotFound(orderNotFoundMessage)
		}
		return StatusChange{}, fmt.Errorf("record courier status: %w", err)
	}
	return StatusChange{OrderID: id, Old: domain.Status(old), New: status}, nil
}

// FindByConsignment looks an order up by courier consignment id.
func (r *Repo) FindByConsignment(ctx context.Context, consignmentID string) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.steadfast_id = $1`, consignmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, apperr.NotFound(orderNotFoundMessage)
		}
		return domain.Order{}, fmt.Errorf("find order by consignment: %w", err)
	}
	return o, nil
}

// ListInFlight returns dispatched orders the courier may still move.
func (r *Repo) ListInFlight(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.steadfast_id IS NOT NULL
		  AND o.dispatch_simulated = FALSE
		  AND o.status NOT IN ('delivered', 'cancelled', 'returned')
		ORDER BY o.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list in-flight orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("scan in-flight orders: %w", err)
	}
	return orders, nil
}
