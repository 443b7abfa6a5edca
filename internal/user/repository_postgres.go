package user

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
	getUserByIDQuery = `
		SELECT user_id, email, password, first_name, last_name, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT user_id, email, password, first_name, last_name, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`
	insertUserQuery = `
		INSERT INTO users (email, password, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, email, password, first_name, last_name, created_at, updated_at
	`
	updateUserQuery = `
		UPDATE users
		SET email = $2, password = $3, first_name = $4, last_name = $5, updated_at = now()
		WHERE user_id = $1
		RETURNING user_id, email, password, first_name, last_name, created_at, updated_at
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	run := store.Runner(ctx, r.db)
	return scanUser(run.QueryRowContext(ctx, getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	run := store.Runner(ctx, r.db)
	return scanUser(run.QueryRowContext(ctx, getUserByEmailQuery, email))
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	run := store.Runner(ctx, r.db)

	created, err := scanUser(run.QueryRowContext(ctx, insertUserQuery,
		u.Email, u.Password, u.FirstName, u.LastName))
	if err != nil && store.IsUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	return created, err
}

func (r *PostgresRepository) Update(ctx context.Context, id int, u User) (User, error) {
	run := store.Runner(ctx, r.db)

	password := u.Password
	if password == "" {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return User{}, err
		}
		password = current.Password
	}

	updated, err := scanUser(run.QueryRowContext(ctx, updateUserQuery,
		id, u.Email, password, u.FirstName, u.LastName))
	if err != nil && store.IsUniqueViolation(err) {
		return User{}, ErrEmailExists
	}
	return updated, err
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}
