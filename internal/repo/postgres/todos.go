package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/todo"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTodoNotFound = errors.New("todo not found")

// Schema (created out of band):
//
//	todos(id BIGSERIAL PRIMARY KEY,
//	      user_id BIGINT NOT NULL REFERENCES users(id),
//	      content TEXT NOT NULL,
//	      created_at TIMESTAMPTZ NOT NULL DEFAULT now())
//
// Every query here is filtered by user_id from the authenticated request; the
// repo has no unscoped read or delete path.
type TodosRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTodosRepo(pool *pgxpool.Pool, prom *observability.Prom) *TodosRepo {
	return &TodosRepo{pool: pool, prom: prom}
}

// ListByUser returns the user's todos newest first. No todos is an empty
// slice, not an error.
func (r *TodosRepo) ListByUser(ctx context.Context, userID int64) ([]todo.Todo, error) {
	var out []todo.Todo

	err := r.prom.ObserveDB("todos.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, user_id, content, created_at
             FROM todos
             WHERE user_id = $1
             ORDER BY created_at DESC, id DESC`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]todo.Todo, 0, 8)

		for rows.Next() {
			var t todo.Todo

			if err := rows.Scan(&t.ID, &t.UserID, &t.Content, &t.CreatedAt); err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Create inserts a todo for the user and re-reads the row, so the returned id
// and timestamp are exactly what the store assigned.
func (r *TodosRepo) Create(ctx context.Context, userID int64, content string) (todo.Todo, error) {
	var id int64

	err := r.prom.ObserveDB("todos.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO todos (user_id, content)
             VALUES ($1, $2)
             RETURNING id`,
			userID, content,
		).Scan(&id)
	})

	if err != nil {
		return todo.Todo{}, err
	}

	return r.getByID(ctx, userID, id)
}

// Delete removes the todo only when both id and owner match. Zero rows
// affected means "absent or someone else's" and the caller cannot tell which.
func (r *TodosRepo) Delete(ctx context.Context, userID, todoID int64) error {
	return r.prom.ObserveDB("todos.delete", func() error {
		tag, err := r.pool.Exec(
			ctx,
			`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
			todoID, userID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return ErrTodoNotFound
		}

		return nil
	})
}

func (r *TodosRepo) getByID(ctx context.Context, userID, todoID int64) (todo.Todo, error) {
	var t todo.Todo

	err := r.prom.ObserveDB("todos.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, user_id, content, created_at
             FROM todos
             WHERE id = $1 AND user_id = $2`,
			todoID, userID,
		).Scan(&t.ID, &t.UserID, &t.Content, &t.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, ErrTodoNotFound
		}

		return todo.Todo{}, err
	}

	return t, nil
}
