package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

// Schema (created out of band):
//
//	users(id BIGSERIAL PRIMARY KEY,
//	      first_name TEXT NOT NULL,
//	      email TEXT NOT NULL UNIQUE,
//	      password_hash TEXT NOT NULL,
//	      created_at TIMESTAMPTZ NOT NULL DEFAULT now())
type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

// Create inserts a user row. The unique email index is the only guard against
// concurrent duplicate signups; a 23505 violation surfaces as ErrEmailTaken.
func (r *UsersRepo) Create(ctx context.Context, firstName, email, passwordHash string) (user.User, error) {
	u := user.User{
		FirstName:    firstName,
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := r.prom.ObserveDB("users.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (first_name, email, password_hash)
             VALUES ($1, $2, $3)
             RETURNING id, created_at`,
			firstName, email, passwordHash,
		).Scan(&u.ID, &u.CreatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, email, password_hash, created_at
             FROM users
             WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.FirstName,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, email, password_hash, created_at
             FROM users
             WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.FirstName,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
