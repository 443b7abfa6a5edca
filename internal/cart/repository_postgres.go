package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bookmind/book-store-backend/internal/store"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartByUserQuery = `
		SELECT cart_id, user_id, checked_out, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`
	getCartLinesQuery = `
		SELECT l.book_id, b.title, l.quantity, l.price
		FROM cart_lines l
		JOIN books b ON b.book_id = l.book_id
		WHERE l.cart_id = $1
		ORDER BY l.book_id
	`
	insertCartQuery = `
		INSERT INTO carts (user_id)
		VALUES ($1)
		RETURNING cart_id, user_id, checked_out, created_at, updated_at
	`
	insertLineQuery = `
		INSERT INTO cart_lines (cart_id, book_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`
	incrementLineQuantityQuery = `
		UPDATE cart_lines
		SET quantity = quantity + $3
		WHERE cart_id = $1 AND book_id = $2
	`
	updateLineQuantityQuery = `
		UPDATE cart_lines
		SET quantity = $3
		WHERE cart_id = $1 AND book_id = $2
	`
	deleteLineQuery = `
		DELETE FROM cart_lines
		WHERE cart_id = $1 AND book_id = $2
	`
	clearLinesQuery = `
		DELETE FROM cart_lines
		WHERE cart_id = $1
	`
	setCheckedOutQuery = `
		UPDATE carts
		SET checked_out = $2, updated_at = now()
		WHERE cart_id = $1
	`
	touchCartQuery = `
		UPDATE carts SET updated_at = now() WHERE cart_id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID int) (Cart, error) {
	run := store.Runner(ctx, r.db)

	var c Cart
	err := run.QueryRowContext(ctx, getCartByUserQuery, userID).
		Scan(&c.ID, &c.UserID, &c.CheckedOut, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrCartNotFound
		}
		return Cart{}, err
	}

	rows, err := run.QueryContext(ctx, getCartLinesQuery, c.ID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()

	c.Lines = make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.BookID, &l.Title, &l.Quantity, &l.Price); err != nil {
			return Cart{}, err
		}
		c.Lines = append(c.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Cart{}, err
	}

	c.Recalculate()
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID int) (Cart, error) {
	run := store.Runner(ctx, r.db)

	var c Cart
	err := run.QueryRowContext(ctx, insertCartQuery, userID).
		Scan(&c.ID, &c.UserID, &c.CheckedOut, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		// a concurrent first-add may have created the row already
		if store.IsUniqueViolation(err) {
			return r.GetByUserID(ctx, userID)
		}
		return Cart{}, err
	}

	c.Lines = []Line{}
	return c, nil
}

func (r *PostgresRepository) InsertLine(ctx context.Context, cartID int, l Line) error {
	run := store.Runner(ctx, r.db)

	if _, err := run.ExecContext(ctx, insertLineQuery, cartID, l.BookID, l.Quantity, l.Price); err != nil {
		return err
	}
	_, err := run.ExecContext(ctx, touchCartQuery, cartID)
	return err
}

func (r *PostgresRepository) IncrementLineQuantity(ctx context.Context, cartID, bookID, delta int) error {
	run := store.Runner(ctx, r.db)

	res, err := run.ExecContext(ctx, incrementLineQuantityQuery, cartID, bookID, delta)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotInCart
	}
	_, err = run.ExecContext(ctx, touchCartQuery, cartID)
	return err
}

func (r *PostgresRepository) UpdateLineQuantity(ctx context.Context, cartID, bookID, quantity int) error {
	run := store.Runner(ctx, r.db)

	res, err := run.ExecContext(ctx, updateLineQuantityQuery, cartID, bookID, quantity)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotInCart
	}
	_, err = run.ExecContext(ctx, touchCartQuery, cartID)
	return err
}

func (r *PostgresRepository) DeleteLine(ctx context.Context, cartID, bookID int) error {
	run := store.Runner(ctx, r.db)

	res, err := run.ExecContext(ctx, deleteLineQuery, cartID, bookID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotInCart
	}
	_, err = run.ExecContext(ctx, touchCartQuery, cartID)
	return err
}

func (r *PostgresRepository) ClearLines(ctx context.Context, cartID int) error {
	run := store.Runner(ctx, r.db)

	if _, err := run.ExecContext(ctx, clearLinesQuery, cartID); err != nil {
		return err
	}
	_, err := run.ExecContext(ctx, touchCartQuery, cartID)
	return err
}

func (r *PostgresRepository) SetCheckedOut(ctx context.Context, cartID int, checkedOut bool) error {
	run := store.Runner(ctx, r.db)

	res, err := run.ExecContext(ctx, setCheckedOutQuery, cartID, checkedOut)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCartNotFound
	}
	return nil
}
