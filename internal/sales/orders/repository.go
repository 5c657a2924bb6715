package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onlinestore/onlinestore/internal/shared"
)

// ErrNotFound is returned when no order has the requested id.
var ErrNotFound = fmt.Errorf("sales order %w", shared.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, id int64) (*SalesOrderWithDetails, error)
	List(ctx context.Context, req ListSalesOrdersRequest) ([]SalesOrderWithDetails, int, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const orderSelect = `
	SELECT so.id, so.doc_number, so.customer_id, so.order_date, so.status, so.currency,
	       so.total_amount, so.notes, so.created_at, so.updated_at, c.name
	FROM orders so
	JOIN customers c ON c.id = so.customer_id`

func (r *repository) Get(ctx context.Context, id int64) (*SalesOrderWithDetails, error) {
	so, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE so.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	return &so, nil
}

func (r *repository) List(ctx context.Context, req ListSalesOrdersRequest) ([]SalesOrderWithDetails, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("so.customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("so.status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders so"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales orders: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY so.order_date DESC, so.id DESC LIMIT $%d OFFSET $%d",
		orderSelect, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()

	orders := make([]SalesOrderWithDetails, 0, req.Limit)
	for rows.Next() {
		so, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sales order: %w", err)
		}
		orders = append(orders, so)
	}
	return orders, total, rows.Err()
}

func scanOrder(row pgx.Row) (SalesOrderWithDetails, error) {
	var so SalesOrderWithDetails
	var total pgtype.Numeric
	var notes pgtype.Text
	var status string
	err := row.Scan(
		&so.ID, &so.DocNumber, &so.CustomerID, &so.OrderDate, &status, &so.Currency,
		&total, &notes, &so.CreatedAt, &so.UpdatedAt, &so.CustomerName,
	)
	if err != nil {
		return SalesOrderWithDetails{}, err
	}
	so.Status = SalesOrderStatus(status)
	if total.Valid {
		f, _ := total.Float64Value()
		so.TotalAmount = f.Float64
	}
	if notes.Valid {
		n := notes.String
		so.Notes = &n
	}
	return so, nil
}
