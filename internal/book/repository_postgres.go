package book

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
	listBooksQuery = `
		SELECT book_id, title, author, price, available
		FROM books
		ORDER BY book_id
	`
	getBookByIDQuery = `
		SELECT book_id, title, author, price, available
		FROM books
		WHERE book_id = $1
	`
	insertBookQuery = `
		INSERT INTO books (title, author, price, available)
		VALUES ($1, $2, $3, $4)
		RETURNING book_id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Book, error) {
	run := store.Runner(ctx, r.db)

	var b Book
	err := run.QueryRowContext(ctx, getBookByIDQuery, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}

	return b, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Book, error) {
	run := store.Runner(ctx, r.db)

	rows, err := run.QueryContext(ctx, listBooksQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]Book, 0)
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Available); err != nil {
			return nil, err
		}
		books = append(books, b)
	}

	return books, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, b Book) (Book, error) {
	run := store.Runner(ctx, r.db)

	err := run.QueryRowContext(ctx, insertBookQuery, b.Title, b.Author, b.Price, b.Available).
		Scan(&b.ID)
	if err != nil {
		return Book{}, err
	}

	return b, nil
}
