package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/bookmind/book-store-backend/internal/store"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, status, total_amount, shipping_address)
		VALUES ($1, $2, $3, $4)
		RETURNING order_id, created_at, updated_at
	`
	insertOrderLinesQuery = `
		INSERT INTO order_lines (order_id, book_id, title, quantity, price)
		SELECT $1, unnest($2::int[]), unnest($3::text[]), unnest($4::int[]), unnest($5::numeric[])
	`
	getOrderByUserAndIDQuery = `
		SELECT order_id, user_id, status, total_amount, shipping_address, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND order_id = $2
	`
	getOrderByIDQuery = `
		SELECT order_id, user_id, status, total_amount, shipping_address, created_at, updated_at
		FROM orders
		WHERE order_id = $1
	`
	listOrdersByUserQuery = `
		SELECT order_id, user_id, status, total_amount, shipping_address, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY order_id DESC
	`
	getOrderLinesQuery = `
		SELECT book_id, title, quantity, price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY book_id
	`
	updateOrderStatusQuery = `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE order_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	run := store.Runner(ctx, r.db)

	if o.Status == "" {
		o.Status = StatusPending
	}

	err := run.QueryRowContext(ctx, insertOrderQuery, o.UserID, o.Status, o.TotalAmount, o.ShippingAddress).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	if len(o.Lines) > 0 {
		bookIDs := make([]int64, 0, len(o.Lines))
		titles := make([]string, 0, len(o.Lines))
		quantities := make([]int64, 0, len(o.Lines))
		prices := make([]string, 0, len(o.Lines))
		for _, l := range o.Lines {
			bookIDs = append(bookIDs, int64(l.BookID))
			titles = append(titles, l.Title)
			quantities = append(quantities, int64(l.Quantity))
			prices = append(prices, l.Price.String())
		}
		_, err = run.ExecContext(ctx, insertOrderLinesQuery,
			o.ID, pq.Array(bookIDs), pq.Array(titles), pq.Array(quantities), pq.Array(prices))
		if err != nil {
			return Order{}, err
		}
	}

	return o, nil
}

func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, orderID int) (Order, error) {
	run := store.Runner(ctx, r.db)
	return r.scanOrder(ctx, run.QueryRowContext(ctx, getOrderByUserAndIDQuery, userID, orderID))
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID int) (Order, error) {
	run := store.Runner(ctx, r.db)
	return r.scanOrder(ctx, run.QueryRowContext(ctx, getOrderByIDQuery, orderID))
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int, status *Status) ([]Order, error) {
	run := store.Runner(ctx, r.db)

	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}

	rows, err := run.QueryContext(ctx, listOrdersByUserQuery, userID, statusArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount,
			&o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int, status Status) error {
	run := store.Runner(ctx, r.db)

	res, err := run.ExecContext(ctx, updateOrderStatusQuery, orderID, status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOrder(ctx context.Context, row *sql.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount,
		&o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}

	o.Lines, err = r.loadLines(ctx, o.ID)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, orderID int) ([]Line, error) {
	run := store.Runner(ctx, r.db)

	rows, err := run.QueryContext(ctx, getOrderLinesQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.BookID, &l.Title, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
