package collection

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
	getCollectionQuery = `
		SELECT collection_id, user_id, name, created_at, updated_at
		FROM collections
		WHERE user_id = $1 AND collection_id = $2
	`
	listCollectionsQuery = `
		SELECT collection_id, user_id, name, created_at, updated_at
		FROM collections
		WHERE user_id = $1
		ORDER BY collection_id
	`
	getMembersQuery = `
		SELECT book_id
		FROM collection_books
		WHERE collection_id = $1
		ORDER BY added_at, book_id
	`
	insertCollectionQuery = `
		INSERT INTO collections (user_id, name)
		VALUES ($1, $2)
		RETURNING collection_id, user_id, name, created_at, updated_at
	`
	renameCollectionQuery = `
		UPDATE collections
		SET name = $2, updated_at = now()
		WHERE collection_id = $1
	`
	deleteCollectionQuery = `
		DELETE FROM collections
		WHERE collection_id = $1
	`
	addMembersQuery = `
		INSERT INTO collection_books (collection_id, book_id)
		SELECT $1, unnest($2::int[])
		ON CONFLICT DO NOTHING
	`
	removeMembersQuery = `
		DELETE FROM collection_books
		WHERE collection_id = $1 AND book_id = ANY($2::int[])
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, collectionID int) (Collection, error) {
	run := store.Runner(ctx, r.db)

	var c Collection
	err := run.QueryRowContext(ctx, getCollectionQuery, userID, collectionID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Collection{}, ErrNotFound
		}
		return Collection{}, err
	}

	c.BookIDs, err = r.loadMembers(ctx, c.ID)
	if err != nil {
		return Collection{}, err
	}
	return c, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Collection, error) {
	run := store.Runner(ctx, r.db)

	rows, err := run.QueryContext(ctx, listCollectionsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Collection, 0)
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].BookIDs, err = r.loadMembers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID int, name string) (Collection, error) {
	run := store.Runner(ctx, r.db)

	var c Collection
	err := run.QueryRowContext(ctx, insertCollectionQuery, userID, name).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return Collection{}, ErrAlreadyExists
		}
		return Collection{}, err
	}

	c.BookIDs = []int{}
	return c, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, collectionID int, name string) error {
	run := store.Runner(ctx, r.db)

	res, err := run.ExecContext(ctx, renameCollectionQuery, collectionID, name)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, collectionID int) error {
	run := store.Runner(ctx, r.db)

	res, err := run.ExecContext(ctx, deleteCollectionQuery, collectionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) AddBooks(ctx context.Context, collectionID int, bookIDs []int) error {
	if len(bookIDs) == 0 {
		return nil
	}
	run := store.Runner(ctx, r.db)
	_, err := run.ExecContext(ctx, addMembersQuery, collectionID, pq.Array(bookIDs))
	return err
}

func (r *PostgresRepository) RemoveBooks(ctx context.Context, collectionID int, bookIDs []int) error {
	if len(bookIDs) == 0 {
		return nil
	}
	run := store.Runner(ctx, r.db)
	_, err := run.ExecContext(ctx, removeMembersQuery, collectionID, pq.Array(bookIDs))
	return err
}

func (r *PostgresRepository) loadMembers(ctx context.Context, collectionID int) ([]int, error) {
	run := store.Runner(ctx, r.db)

	rows, err := run.QueryContext(ctx, getMembersQuery, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
